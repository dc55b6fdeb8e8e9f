// Package cron runs the worker's periodic jobs, currently the daily scan for
// documents approaching their expiration date.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/obralink/compliance-engine/internal/core/ports"
)

type Scheduler struct {
	cron    *cron.Cron
	scanner ports.ExpiryScanner
	window  time.Duration
	logger  *slog.Logger
}

func New(scanner ports.ExpiryScanner, window time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		scanner: scanner,
		window:  window,
		logger:  logger,
	}
}

// Start registers the daily scan and runs it until ctx is done. Blocks.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		scanCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		emitted, err := s.scanner.ScanExpiring(scanCtx, s.window)
		if err != nil {
			s.logger.Error("expiry_scan_failed", "error", err)
			return
		}
		s.logger.Info("expiry_scan_complete", "events_emitted", emitted)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}
