package poller

import (
	"context"
	"log/slog"
	"time"
)

// Worker runs one account's poll loop. Polls execute synchronously inside
// the loop, so two polls for the same account can never overlap; ticks that
// fire while a poll is still running are coalesced by the ticker.
type Worker struct {
	pipeline Pipeline
	interval time.Duration
}

// NewWorker creates a Worker.
func NewWorker(pipeline Pipeline, interval time.Duration) *Worker {
	return &Worker{pipeline: pipeline, interval: interval}
}

// Run starts the poll loop. It blocks until the context is cancelled. A
// failed poll is logged and the loop keeps going; the next tick retries
// naturally.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("poller: starting", "account", w.pipeline.Account(), "interval", w.interval)

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller: shutting down", "account", w.pipeline.Account())
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	start := time.Now()
	if err := w.pipeline.Poll(ctx, start); err != nil {
		slog.Error("poller: poll failed", "account", w.pipeline.Account(), "error", err)
		return
	}
	slog.Info("poller: poll completed", "account", w.pipeline.Account(), "took", time.Since(start))
}
