package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/obralink/compliance-engine/internal/config"
	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/ports"
	"github.com/obralink/compliance-engine/internal/core/usecase"
	"github.com/obralink/compliance-engine/internal/infrastructure/queue/nats"
	"github.com/obralink/compliance-engine/internal/infrastructure/repository/postgres"
	"github.com/obralink/compliance-engine/internal/infrastructure/resilience"
	"github.com/obralink/compliance-engine/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Catalog *catalog.Catalog

	Store ports.FolderStore
	Queue *nats.Queue

	UploadUC *usecase.UploadDocumentUseCase
	SubmitUC *usecase.SubmitFolderUseCase
	ReviewUC *usecase.ReviewDocumentUseCase
	ViewUC   *usecase.FolderViewUseCase
	ExpiryUC *usecase.ExpiryScanUseCase

	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics("compliance-api")

	uploadUC := usecase.NewUploadDocumentUseCase(store, cat)
	submitUC := usecase.NewSubmitFolderUseCase(store, cat, queue, logger, httpMetrics)
	reviewUC := usecase.NewReviewDocumentUseCase(store, cat, queue, logger, httpMetrics)
	viewUC := usecase.NewFolderViewUseCase(store, cat)
	expiryUC := usecase.NewExpiryScanUseCase(store, queue, logger)

	return &App{
		Config:  cfg,
		Catalog: cat,
		Store:   store,
		Queue:   queue,

		UploadUC: uploadUC,
		SubmitUC: submitUC,
		ReviewUC: reviewUC,
		ViewUC:   viewUC,
		ExpiryUC: expiryUC,

		HTTPMetrics: httpMetrics,

		closeFn: func() {
			queue.Close()
			closeStore()
		},
	}, nil
}

func openStore(ctx context.Context, cfg config.Config) (ports.FolderStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return postgres.NewMemoryStore(), func() {}, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store := postgres.NewStore(db, resilience.NewExecutor(resilience.PersistenceRetryConfig()))
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
