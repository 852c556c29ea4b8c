package worker

import (
	"context"
	"log/slog"
	"pollbot/internal/lib/logger/sl"
	"time"
)

// runEvery calls fn on every tick until ctx is cancelled. With immediate
// set the first call happens before the first tick. A failed call is
// logged and the loop keeps going.
func runEvery(ctx context.Context, log *slog.Logger, interval time.Duration, immediate bool, fn func(context.Context) error) {
	if interval <= 0 {
		log.Warn("interval is not positive, loop disabled")
		return
	}

	run := func() {
		start := time.Now()
		if err := fn(ctx); err != nil {
			log.Error("run failed", sl.Err(err))
			return
		}
		log.Debug("run finished", slog.Duration("took", time.Since(start)))
	}

	log.Info("starting loop")

	if immediate {
		run()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping loop")
			return
		case <-ticker.C:
			run()
		}
	}
}
