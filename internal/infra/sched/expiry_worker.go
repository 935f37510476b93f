package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-access-platform/internal/usecase"
)

// ExpiryWorker periodically deactivates activation codes whose expiry
// date has passed.
type ExpiryWorker struct {
	interval time.Duration
	accessUC usecase.AccessUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, accessUC usecase.AccessUseCase, logger *zerolog.Logger) *ExpiryWorker {
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		accessUC: accessUC,
		log:      &compLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting code expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping code expiry worker")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.accessUC.ExpireCodes(ctx); err != nil {
				w.log.Error().Err(err).Msg("code expiry sweep failed")
			}
		}
	}
}
