package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBucket(rate float64, burst int) (*TokenBucket, *fakeClock, *[]time.Duration) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	var slept []time.Duration
	b := NewTokenBucket(rate, burst)
	b.now = clock.Now
	b.lastUpdate = clock.now
	b.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.Advance(d)
		return nil
	}
	return b, clock, &slept
}

func TestAcquireBurstThenWait(t *testing.T) {
	b, _, slept := newTestBucket(1, 2)
	ctx := context.Background()

	// Burst tokens are consumed without waiting.
	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))
	assert.Empty(t, *slept)

	// Third acquisition has zero tokens and must wait a full refill.
	require.NoError(t, b.Acquire(ctx))
	require.Len(t, *slept, 1)
	assert.Equal(t, time.Second, (*slept)[0])
}

func TestAcquireNeverGoesNegative(t *testing.T) {
	b, _, _ := newTestBucket(2, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Acquire(ctx))
		assert.GreaterOrEqual(t, b.tokens, 0.0)
	}
}

func TestRefillCapsAtBurst(t *testing.T) {
	b, clock, _ := newTestBucket(10, 3)

	// A long idle period must not accumulate beyond burst.
	clock.Advance(time.Hour)
	assert.Equal(t, 3.0, b.Tokens())
}

func TestPartialRefillShortensWait(t *testing.T) {
	b, clock, slept := newTestBucket(1, 1)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx)) // drains the single token
	clock.Advance(500 * time.Millisecond)

	require.NoError(t, b.Acquire(ctx))
	require.Len(t, *slept, 1)
	assert.Equal(t, 500*time.Millisecond, (*slept)[0])
}

func TestAcquireRespectsContext(t *testing.T) {
	b := NewTokenBucket(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, b.Acquire(ctx)) // burst token
	cancel()
	assert.ErrorIs(t, b.Acquire(ctx), context.Canceled)
}

func TestRegistrySharesBucketPerSource(t *testing.T) {
	r := NewRegistry()

	a := r.For("Amazon")
	b := r.For("Amazon")
	c := r.For("eBay")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
