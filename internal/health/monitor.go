package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
)

// Pinger is anything whose reachability can be checked, typically a storage backend
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the result of the most recent store check
type Status struct {
	StoreConnected bool
	CheckedAt      time.Time
	Err            error
}

// Config holds health check settings
type Config struct {
	// Interval between background checks
	Interval time.Duration

	// Timeout bounds a single ping
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for health checks
func DefaultConfig() Config {
	return Config{
		Interval: 15 * time.Second,
		Timeout:  3 * time.Second,
	}
}

// Monitor periodically pings the store and holds the last result.
// Until the first check completes the store is reported as disconnected.
type Monitor struct {
	pinger Pinger
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config

	mu        sync.RWMutex
	status    Status
	observers []func(Status)
}

// NewMonitor creates a new Monitor
func NewMonitor(pinger Pinger, clock clock.Clock, logger *slog.Logger, cfg Config) *Monitor {
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &Monitor{
		pinger: pinger,
		clock:  clock,
		logger: logger.With(slog.String("component", "health")),
		cfg:    cfg,
	}
}

// OnChange registers fn to be called with every new status.
// Must be called before Run.
func (m *Monitor) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Status returns the last recorded status
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// StoreConnected reports whether the last check succeeded
func (m *Monitor) StoreConnected() bool {
	return m.Status().StoreConnected
}

// Check pings the store once and records the result
func (m *Monitor) Check(ctx context.Context) Status {
	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	err := m.pinger.Ping(pingCtx)
	status := Status{
		StoreConnected: err == nil,
		CheckedAt:      m.clock.Now(),
		Err:            err,
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	observers := m.observers
	m.mu.Unlock()

	switch {
	case status.StoreConnected && !previous.StoreConnected:
		m.logger.Info("store connected")
	case !status.StoreConnected && (previous.StoreConnected || previous.CheckedAt.IsZero()):
		m.logger.Warn("store unavailable", slog.String("error", err.Error()))
	}

	for _, fn := range observers {
		fn(status)
	}
	return status
}

// Run checks the store on every interval until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
