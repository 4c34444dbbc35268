// Package ratelimit provides the fixed-interval pacing used between
// consecutive external search bursts.
package ratelimit

import (
	"context"
	"time"
)

// Limiter enforces a fixed pause between calls to Wait. It replaces an
// inline sleep so the pacing policy is testable on its own.
type Limiter struct {
	Interval time.Duration
}

func New(interval time.Duration) *Limiter {
	return &Limiter{Interval: interval}
}

// Wait blocks for the configured interval or until the context is done,
// returning the context error in that case. A zero or negative interval
// returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.Interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
