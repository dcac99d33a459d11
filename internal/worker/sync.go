// Package worker runs the reconciliation pipeline on a fixed interval.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/portwatch/reconciler/internal/pipeline"
)

// Runner executes one reconciliation pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// SyncWorker periodically runs the pipeline against the source directory.
type SyncWorker struct {
	runner   Runner
	interval time.Duration
}

// NewSyncWorker creates a new SyncWorker.
func NewSyncWorker(runner Runner, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		runner:   runner,
		interval: interval,
	}
}

// Run starts the sync loop. It blocks until the context is cancelled.
func (w *SyncWorker) Run(ctx context.Context) {
	slog.Info("SyncWorker: starting", "interval", w.interval)

	// Run immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("SyncWorker: shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	summary, err := w.runner.Run(ctx)
	if err != nil {
		slog.Error("SyncWorker: run failed", "error", err)
		return
	}
	if summary.Skipped {
		slog.Info("SyncWorker: run skipped, sources unchanged")
		return
	}
	slog.Info("SyncWorker: run completed",
		"inserted", summary.Inserted, "updated", summary.Updated,
		"deleted", summary.Deleted, "holdings", summary.Holdings)
}
