// Package shutdown stops an idle server so platforms that scale to zero can
// park the machine.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// IdleConfig holds configuration for the idle monitor.
type IdleConfig struct {
	// Timeout is how long the server may go without requests. Zero disables
	// the monitor.
	Timeout time.Duration
	// ExcludePrefixes are paths that do not count as activity, such as probes
	// and metric scrapes.
	ExcludePrefixes []string
	// CheckInterval defaults to a sixth of Timeout, clamped to 5s..30s.
	CheckInterval time.Duration
	Logger        *slog.Logger
}

// IdleMonitor closes Done once no request has been seen for the timeout.
type IdleMonitor struct {
	cfg      IdleConfig
	active   atomic.Int64
	lastSeen atomic.Int64 // unix nanoseconds
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewIdleMonitor creates an idle monitor. Call Start to begin watching.
func NewIdleMonitor(cfg IdleConfig) *IdleMonitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = min(max(cfg.Timeout/6, 5*time.Second), 30*time.Second)
	}
	m := &IdleMonitor{
		cfg:  cfg,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	m.touch()
	return m
}

// Enabled reports whether a timeout is configured.
func (m *IdleMonitor) Enabled() bool {
	return m.cfg.Timeout > 0
}

// Start begins monitoring in the background.
func (m *IdleMonitor) Start() {
	if !m.Enabled() {
		return
	}
	m.cfg.Logger.Info("idle monitoring started", "timeout", m.cfg.Timeout)
	go m.run()
}

// Stop ends monitoring without closing Done.
func (m *IdleMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Done is closed when the idle timeout is reached. It never closes when the
// monitor is disabled.
func (m *IdleMonitor) Done() <-chan struct{} {
	return m.done
}

// Middleware counts in-flight requests outside the excluded prefixes.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range m.cfg.ExcludePrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		m.active.Add(1)
		m.touch()
		defer func() {
			m.active.Add(-1)
			m.touch()
		}()
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) touch() {
	m.lastSeen.Store(time.Now().UnixNano())
}

func (m *IdleMonitor) idleFor() time.Duration {
	return time.Since(time.Unix(0, m.lastSeen.Load()))
}

func (m *IdleMonitor) run() {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if m.active.Load() > 0 {
				m.touch()
				continue
			}
			if idle := m.idleFor(); idle >= m.cfg.Timeout {
				m.cfg.Logger.Info("idle timeout reached, shutting down", "idle_time", idle, "timeout", m.cfg.Timeout)
				close(m.done)
				return
			}
		}
	}
}
