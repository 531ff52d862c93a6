package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"localserv/internal/adapter/repo"
	"localserv/internal/infra"
)

type subscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type highlightClearer interface {
	ClearExpiredHighlights(ctx context.Context, now time.Time) (int64, error)
}

// sweeper keeps stored subscription and highlight state in line with the clock.
// Reads re-check expiry on their own, so a missed pass only delays the cleanup.
type sweeper struct {
	ctx        context.Context
	subs       subscriptionExpirer
	highlights highlightClearer
	logger     infra.Logger
	interval   time.Duration
	now        func() time.Time
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, infra.Component(logger, "sql"))

	w := &sweeper{
		ctx:        ctx,
		subs:       repo.NewSubscriptionRepository(runner),
		highlights: repo.NewListingRepository(runner),
		logger:     infra.Component(logger, "worker"),
		interval:   cfg.SweepInterval,
		now:        time.Now,
	}
	if err := w.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *sweeper) Run() error {
	interval := w.interval
	if interval <= 0 {
		interval = time.Minute
	}
	w.logger.Info().Dur("interval", interval).Msg("worker: started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		w.sweepOnce()
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
	}
}

// sweepOnce runs both cleanups. A failure of one does not skip the other.
func (w *sweeper) sweepOnce() error {
	now := w.now()
	var errs []error

	expired, err := w.subs.ExpireSubscriptions(w.ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("worker: expire subscriptions failed")
		errs = append(errs, err)
	} else if expired > 0 {
		w.logger.Info().Int64("count", expired).Msg("worker: subscriptions expired")
	}

	cleared, err := w.highlights.ClearExpiredHighlights(w.ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("worker: clear highlights failed")
		errs = append(errs, err)
	} else if cleared > 0 {
		w.logger.Info().Int64("count", cleared).Msg("worker: highlights cleared")
	}
	return errors.Join(errs...)
}
