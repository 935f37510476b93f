package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ai-access-platform/internal/infra/redis"
	"ai-access-platform/internal/usecase"
)

const statsFlushLockKey = "lock:model_stats_flush"

// StatsFlushWorker writes the router's in-memory performance counters to
// Postgres on a schedule. A Redis lock keeps replicas from flushing at
// the same time.
type StatsFlushWorker struct {
	interval time.Duration
	routerUC usecase.RouterUseCase
	locker   redis.Locker
	log      *zerolog.Logger
}

func NewStatsFlushWorker(interval time.Duration, routerUC usecase.RouterUseCase, locker redis.Locker, logger *zerolog.Logger) *StatsFlushWorker {
	compLog := logger.With().Str("component", "StatsFlushWorker").Logger()
	return &StatsFlushWorker{
		interval: interval,
		routerUC: routerUC,
		locker:   locker,
		log:      &compLog,
	}
}

func (w *StatsFlushWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats flush worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush so counters from the last window are not lost.
			w.flush(context.Background())
			w.log.Info().Msg("Stopping stats flush worker")
			return ctx.Err()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *StatsFlushWorker) flush(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, statsFlushLockKey, w.interval)
		if err != nil {
			if !errors.Is(err, redis.ErrLockHeld) {
				w.log.Warn().Err(err).Msg("stats flush lock error")
			}
			return
		}
		defer func() {
			if err := w.locker.Unlock(ctx, statsFlushLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("stats flush unlock failed")
			}
		}()
	}
	if err := w.routerUC.FlushStats(ctx); err != nil {
		w.log.Error().Err(err).Msg("stats flush failed")
	}
}
