package worker

import (
	"context"
	"log/slog"
	"time"
)

type Ingester interface {
	Scrape(ctx context.Context) error
}

// Scraper pulls GitHub activity on a fixed interval, starting right away so
// anything missed while the bot was down is caught up on boot.
type Scraper struct {
	log      *slog.Logger
	ingester Ingester
	interval time.Duration
}

func NewScraper(log *slog.Logger, ingester Ingester, interval time.Duration) *Scraper {
	return &Scraper{
		log:      log,
		ingester: ingester,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scraper) Run(ctx context.Context) {
	const op = "worker.Scraper.Run"

	log := s.log.With(slog.String("op", op), slog.Duration("interval", s.interval))

	runEvery(ctx, log, s.interval, true, s.ingester.Scrape)
}
