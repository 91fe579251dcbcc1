// Package worker runs periodic background tasks for the server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openfoodfacts/open-prices/internal/models"
)

// StatsRefresher recomputes the site-wide counters.
type StatsRefresher interface {
	Refresh(ctx context.Context) (*models.TotalStats, error)
}

// Config holds worker configuration.
type Config struct {
	// Interval between refreshes. Zero disables the worker.
	Interval time.Duration
	// Timeout bounds one refresh. Defaults to a minute.
	Timeout time.Duration
}

// Worker refreshes the TotalStats row on a fixed interval.
type Worker struct {
	stats    StatsRefresher
	interval time.Duration
	timeout  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// New creates a new worker.
func New(stats StatsRefresher, cfg Config, logger *slog.Logger) *Worker {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		stats:    stats,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		stop:     make(chan struct{}),
		logger:   logger.With("component", "worker"),
	}
}

// Start refreshes once immediately and then on every tick, until ctx is done
// or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Debug("stats refresh disabled")
		return
	}
	w.logger.Info("starting", "interval", w.interval)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop waits for a running refresh to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
		}
	}
}

// refresh logs failures; the next tick retries.
func (w *Worker) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.stats.Refresh(ctx); err != nil {
		w.logger.Error("stats refresh failed", "error", err)
	}
}
