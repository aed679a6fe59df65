package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the limiter sleeps.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func TestWaitSpacesCalls(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewWithClock(3, clock.now, clock.sleep)

	require.NoError(t, l.Wait(context.Background()))
	assert.Empty(t, clock.sleeps, "first call should not wait")

	require.NoError(t, l.Wait(context.Background()))
	require.Len(t, clock.sleeps, 1)
	// 3/sec limiter => at least ~333ms between consecutive calls
	assert.InDelta(t, float64(time.Second/3), float64(clock.sleeps[0]), float64(time.Millisecond))
}

func TestWaitAfterIdlePeriodDoesNotBlock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewWithClock(3, clock.now, clock.sleep)

	require.NoError(t, l.Wait(context.Background()))
	clock.t = clock.t.Add(5 * time.Second)
	require.NoError(t, l.Wait(context.Background()))
	assert.Empty(t, clock.sleeps)
}

func TestWaitHonoursCancel(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestWallClockSpacing(t *testing.T) {
	l := New(10) // 100ms spacing keeps the test quick

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	require.NoError(t, l.Wait(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}
