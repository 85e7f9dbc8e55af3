package utils

import (
	"context"
	"sync"
	"time"

	"biometric-insights/src/logger"
)

// RefreshScheduler regenerates the report on a fixed interval until its
// context is cancelled. A tick that arrives while a refresh is still running
// is skipped.
type RefreshScheduler struct {
	Interval time.Duration
	Refresh  func(ctx context.Context) error
	Logger   *logger.Logger

	mu      sync.RWMutex
	running bool
	lastRun time.Time
	lastErr error
	runs    int
}

// -----------------------------------------------------------------------------

func NewRefreshScheduler(intervalMinutes int, refresh func(ctx context.Context) error, l *logger.Logger) *RefreshScheduler {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RefreshScheduler{
		Interval: time.Duration(intervalMinutes) * time.Minute,
		Refresh:  refresh,
		Logger:   l,
	}
}

// Enabled is false when the interval is zero.
func (rs *RefreshScheduler) Enabled() bool {
	return rs.Interval > 0 && rs.Refresh != nil
}

// -----------------------------------------------------------------------------

// Run blocks until ctx is done.
func (rs *RefreshScheduler) Run(ctx context.Context) {
	if !rs.Enabled() {
		rs.Logger.Info("RefreshScheduler: periodic refresh disabled.")
		return
	}

	ticker := time.NewTicker(rs.Interval)
	defer ticker.Stop()
	rs.Logger.Info("RefreshScheduler: refreshing every %s.", rs.Interval)

	for {
		select {
		case <-ctx.Done():
			rs.Logger.Info("RefreshScheduler: stopped after %d runs.", rs.Runs())
			return
		case <-ticker.C:
			rs.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single refresh unless one is already in flight.
// It reports whether a refresh was attempted.
func (rs *RefreshScheduler) RunOnce(ctx context.Context) bool {
	rs.mu.Lock()
	if rs.running {
		rs.mu.Unlock()
		rs.Logger.Warning("RefreshScheduler: previous refresh still running, skipping tick.")
		return false
	}
	rs.running = true
	rs.mu.Unlock()

	start := time.Now()
	err := rs.Refresh(ctx)

	rs.mu.Lock()
	rs.running = false
	rs.lastRun = start
	rs.lastErr = err
	rs.runs++
	rs.mu.Unlock()

	if err != nil {
		rs.Logger.Error("RefreshScheduler: refresh failed: %v", err)
	} else {
		rs.Logger.Debug("RefreshScheduler: refresh took %s", time.Since(start))
	}
	return true
}

// -----------------------------------------------------------------------------

func (rs *RefreshScheduler) LastRun() (time.Time, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.lastRun, rs.lastErr
}

func (rs *RefreshScheduler) Runs() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.runs
}
