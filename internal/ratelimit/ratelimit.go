// Package ratelimit implements the per-source token bucket that
// throttles outbound scraping.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"pricefinder/internal/marketplace"
)

// TokenBucket refills continuously at rate tokens/second up to burst.
// Acquire never fails: a caller short on tokens sleeps until one has
// accumulated. The zero value is not usable; use NewTokenBucket.
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64
	burst      float64
	tokens     float64
	lastUpdate time.Time
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewTokenBucket(requestsPerSecond float64, burst int) *TokenBucket {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		rate:       requestsPerSecond,
		burst:      float64(burst),
		tokens:     float64(burst),
		lastUpdate: time.Now(),
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Acquire consumes one token, suspending the calling goroutine until
// enough has refilled. It returns early only when ctx is cancelled.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	b.mu.Lock()
	now := b.now()
	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		b.mu.Unlock()
		return nil
	}

	wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	b.tokens = 0
	b.mu.Unlock()

	return b.sleep(ctx, wait)
}

// Tokens reports the current token count after a lazy refill. Used by
// tests and debug endpoints.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	elapsed := b.now().Sub(b.lastUpdate).Seconds()
	return min(b.burst, b.tokens+elapsed*b.rate)
}

// Registry hands out one limiter per source name, created on first use
// from the marketplace rate table.
type Registry struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string]*TokenBucket)}
}

// For returns the limiter for a source name, creating it if needed. All
// goroutines scraping the same source share one bucket.
func (r *Registry) For(source string) *TokenBucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buckets[source]; ok {
		return b
	}
	rl := marketplace.LimitFor(source)
	b := NewTokenBucket(rl.RequestsPerSecond, rl.Burst)
	r.buckets[source] = b
	return b
}
