package pulpo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/shared"
)

// CallLimiter enforces the WMS quota of MaxCalls per TimeWindow on the
// client side with a sliding window of send timestamps. A timestamp is
// recorded only after a successful send, so a retried request occupies one
// slot, not one per attempt.
type CallLimiter struct {
	maxCalls int
	window   time.Duration
	clock    shared.Clock
	logger   *zap.Logger

	mu         sync.Mutex
	timestamps []time.Time
}

// NewCallLimiter creates a limiter. If clock is nil, RealClock is used.
func NewCallLimiter(maxCalls int, window time.Duration, clock shared.Clock, logger *zap.Logger) *CallLimiter {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallLimiter{
		maxCalls: maxCalls,
		window:   window,
		clock:    clock,
		logger:   logger,
	}
}

// Wait blocks, via the injected clock, until a call slot is free. It returns
// early when the context is cancelled.
func (l *CallLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.clock.Now()
	l.prune(now)

	var wait time.Duration
	if len(l.timestamps) >= l.maxCalls {
		// The slot frees when the oldest timestamp leaves the window
		wait = l.window - now.Sub(l.timestamps[0])
	}
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Warn("api rate limit reached, waiting",
		zap.Duration("wait", wait))
	l.clock.Sleep(wait)
	return ctx.Err()
}

// Record registers a successful send at the current instant
func (l *CallLimiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = append(l.timestamps, l.clock.Now())
}

// Pending returns how many sends currently occupy the window
func (l *CallLimiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.timestamps)
}

// prune drops timestamps that have left the window. Caller holds the lock.
func (l *CallLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.timestamps[:0]
	for _, t := range l.timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.timestamps = kept
}
