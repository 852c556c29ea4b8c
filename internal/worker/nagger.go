package worker

import (
	"context"
	"log/slog"
	"time"
)

type Evaluator interface {
	EvaluatePolls(ctx context.Context) error
}

// Nagger re-evaluates open polls on a fixed interval.
type Nagger struct {
	log       *slog.Logger
	evaluator Evaluator
	interval  time.Duration
}

func NewNagger(log *slog.Logger, evaluator Evaluator, interval time.Duration) *Nagger {
	return &Nagger{
		log:       log,
		evaluator: evaluator,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled.
func (n *Nagger) Run(ctx context.Context) {
	const op = "worker.Nagger.Run"

	log := n.log.With(slog.String("op", op), slog.Duration("interval", n.interval))

	runEvery(ctx, log, n.interval, false, n.evaluator.EvaluatePolls)
}
