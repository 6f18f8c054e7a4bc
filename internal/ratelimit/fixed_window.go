// Package ratelimit implements a per-client fixed-window request limiter.
//
// [FixedWindow] satisfies echo's middleware.RateLimiterStore, so it plugs
// directly into middleware.RateLimiterWithConfig.
package ratelimit

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultLimit is the number of requests allowed per window.
	DefaultLimit = 100

	// DefaultWindow is the length of one window.
	DefaultWindow = 15 * time.Minute
)

type counter struct {
	start time.Time
	count int
}

// FixedWindow counts requests per identifier in fixed windows.
//
// A client's window opens with its first request and lasts Window; the
// request that pushes the count past Limit and every later one in the same
// window are denied. The next request after the window elapses opens a new
// window. Expired windows are swept lazily, at most once per window.
type FixedWindow struct {
	limit  int
	window time.Duration
	clock  clockwork.Clock

	mu        sync.Mutex
	counters  map[string]*counter
	lastSweep time.Time
}

// NewFixedWindow creates a limiter allowing limit requests per window.
func NewFixedWindow(limit int, window time.Duration, clock clockwork.Clock) (*FixedWindow, error) {
	if limit <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if window <= 0 {
		return nil, errors.New("rate limit window must be positive")
	}
	return &FixedWindow{
		limit:     limit,
		window:    window,
		clock:     clock,
		counters:  make(map[string]*counter),
		lastSweep: clock.Now(),
	}, nil
}

// Allow records one request for identifier and reports whether it is
// within the limit. The error is always nil; it exists to satisfy echo's
// RateLimiterStore.
func (f *FixedWindow) Allow(identifier string) (bool, error) {
	now := f.clock.Now()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sweep(now)

	c := f.counters[identifier]
	if c == nil || !now.Before(c.start.Add(f.window)) {
		c = &counter{start: now}
		f.counters[identifier] = c
	}
	c.count++
	return c.count <= f.limit, nil
}

// Quota reports the requests left for identifier in its current window and
// when that window resets. An identifier without an open window has the
// full limit and resets one window from now.
func (f *FixedWindow) Quota(identifier string) (remaining int, reset time.Time) {
	now := f.clock.Now()

	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.counters[identifier]
	if c == nil || !now.Before(c.start.Add(f.window)) {
		return f.limit, now.Add(f.window)
	}
	return max(f.limit-c.count, 0), c.start.Add(f.window)
}

// Limit returns the number of requests allowed per window.
func (f *FixedWindow) Limit() int {
	return f.limit
}

// Window returns the window length.
func (f *FixedWindow) Window() time.Duration {
	return f.window
}

// sweep drops expired windows. Caller holds f.mu.
func (f *FixedWindow) sweep(now time.Time) {
	if now.Sub(f.lastSweep) < f.window {
		return
	}
	for id, c := range f.counters {
		if !now.Before(c.start.Add(f.window)) {
			delete(f.counters, id)
		}
	}
	f.lastSweep = now
}

// tracked returns the number of identifiers with a stored window.
func (f *FixedWindow) tracked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.counters)
}
