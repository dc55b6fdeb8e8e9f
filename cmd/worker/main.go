package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obralink/compliance-engine/internal/bootstrap"
	"github.com/obralink/compliance-engine/internal/config"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
	"github.com/obralink/compliance-engine/internal/core/usecase"
	"github.com/obralink/compliance-engine/internal/infrastructure/notifier/logmail"
	"github.com/obralink/compliance-engine/internal/infrastructure/scheduler/cron"
	"github.com/obralink/compliance-engine/internal/observability/logging"
	"github.com/obralink/compliance-engine/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("compliance-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("compliance-worker")
	notifyUC := usecase.NewNotifyUseCase(logmail.New(logger), cfg.ReviewerPool, logger)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	scanner := meteredScanner{inner: app.ExpiryUC, metrics: workerMetrics}
	scheduler := cron.New(scanner, time.Duration(cfg.ExpiryWindowDays)*24*time.Hour, logger)
	go func() {
		if err := scheduler.Start(ctx, cfg.ExpiryCronSpec); err != nil {
			logger.Error("scheduler_error", "error", err)
		}
	}()

	logger.Info("worker_subscribed", "subject_prefix", cfg.NATSSubjectPrefix)
	err = app.Queue.Subscribe(ctx, func(handlerCtx context.Context, event domain.Event) error {
		workerMetrics.StartEvent()
		start := time.Now()

		handleCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
		defer cancel()
		handleErr := notifyUC.HandleEvent(handleCtx, event)

		workerMetrics.FinishEvent("compliance-worker", string(event.Kind), time.Since(start), handleErr)
		return handleErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

type meteredScanner struct {
	inner   ports.ExpiryScanner
	metrics *metrics.WorkerMetrics
}

func (s meteredScanner) ScanExpiring(ctx context.Context, within time.Duration) (int, error) {
	emitted, err := s.inner.ScanExpiring(ctx, within)
	s.metrics.AddExpiryEvents(emitted)
	return emitted, err
}
