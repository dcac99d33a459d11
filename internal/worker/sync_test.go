package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portwatch/reconciler/internal/pipeline"
)

type mockRunner struct {
	callCount atomic.Int32
	err       error
}

func (m *mockRunner) Run(_ context.Context) (pipeline.Summary, error) {
	m.callCount.Add(1)
	return pipeline.Summary{}, m.err
}

func TestSyncWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRunner{}
	w := NewSyncWorker(mock, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial pass + some ticks
	if got := mock.callCount.Load(); got < 1 {
		t.Errorf("call count = %d, want >= 1", got)
	}
}

func TestSyncWorkerKeepsRunningAfterFailure(t *testing.T) {
	mock := &mockRunner{err: errors.New("source dir unreadable")}
	w := NewSyncWorker(mock, 30*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2 despite failures", got)
	}
}
