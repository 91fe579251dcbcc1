package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openfoodfacts/open-prices/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) (*models.TotalStats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &models.TotalStats{}, nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ========================================
// New Worker Tests
// ========================================

func TestNew_Defaults(t *testing.T) {
	w := New(nil, Config{}, nil)

	if w == nil {
		t.Fatal("expected worker, got nil")
	}
	if w.timeout != time.Minute {
		t.Errorf("timeout = %v, want 1m (default)", w.timeout)
	}
	if w.logger == nil {
		t.Error("logger should be set to default")
	}
}

// ========================================
// Lifecycle Tests
// ========================================

func TestWorker_Disabled(t *testing.T) {
	r := &countingRefresher{}
	w := New(r, Config{}, testLogger())

	w.Start(context.Background())
	w.Stop()

	if got := r.calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestWorker_RefreshesPeriodically(t *testing.T) {
	r := &countingRefresher{}
	w := New(r, Config{Interval: 10 * time.Millisecond}, testLogger())

	w.Start(context.Background())
	waitFor(t, func() bool { return r.calls.Load() >= 3 })
	w.Stop()

	after := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := r.calls.Load(); got != after {
		t.Errorf("refreshed after Stop: %d -> %d", after, got)
	}
}

func TestWorker_KeepsRunningAfterErrors(t *testing.T) {
	r := &countingRefresher{err: errors.New("database is locked")}
	w := New(r, Config{Interval: 10 * time.Millisecond}, testLogger())

	w.Start(context.Background())
	defer w.Stop()

	waitFor(t, func() bool { return r.calls.Load() >= 2 })
}

func TestWorker_StopsWithContext(t *testing.T) {
	r := &countingRefresher{}
	w := New(r, Config{Interval: time.Hour}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	waitFor(t, func() bool { return r.calls.Load() == 1 })

	cancel()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancel")
	}
}

func TestWorker_StopTwice(t *testing.T) {
	w := New(&countingRefresher{}, Config{Interval: time.Hour}, testLogger())
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
