// Package ratelimit gates outbound request rate per upstream provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces calls so that two Wait calls on the same instance
// never fire closer together than the configured interval. Callers are
// served in FIFO-ish order; there is no fairness guarantee beyond that.
//
// The clock and sleep hooks exist for tests; production code uses the
// defaults from New.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New builds a limiter allowing reqPerSec calls per second.
func New(reqPerSec float64) *Limiter {
	if reqPerSec <= 0 {
		reqPerSec = 1
	}
	return &Limiter{
		interval: time.Duration(float64(time.Second) / reqPerSec),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// NewWithClock is New with an injected clock and sleep, for tests.
func NewWithClock(reqPerSec float64, now func() time.Time, sleep func(context.Context, time.Duration) error) *Limiter {
	l := New(reqPerSec)
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until the caller may proceed. The slot is reserved under
// the lock, so concurrent callers still come out properly spaced.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	if l.next.Before(now) {
		l.next = now
	}
	wait := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return l.sleep(ctx, wait)
}

// Interval reports the minimum spacing between calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
