// Package fetcher retrieves raw HTML pages. Every failure mode (bad
// status, timeout, network error, sliding-window overrun) degrades to
// "no data for this URL"; callers never see an error.
package fetcher

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricefinder/internal/marketplace"
)

const (
	windowSize      = 60 * time.Second
	windowMax       = 10
	jitterMin       = 500 * time.Millisecond
	jitterMax       = 2 * time.Second
	backoffCooldown = 5 * time.Second
)

// Fetcher is the page-retrieval dependency of the aggregator. The
// concrete implementation below talks HTTP; tests substitute stubs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, bool)
}

// HTTPFetcher fetches pages with rotating user agents, a pre-request
// jitter, and a secondary per-domain sliding-window limiter on top of
// the caller's token bucket.
type HTTPFetcher struct {
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	history map[string][]time.Time

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter bool
}

func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  logger,
		timeout: timeout,
		history: make(map[string][]time.Time),
		now:     time.Now,
		sleep:   sleepCtx,
		jitter:  true,
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

// Close releases pooled connections.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
}

// Fetch returns the page body and true on HTTP 200. Any other outcome
// returns ("", false).
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		f.logger.Debug("unparseable url", zap.String("url", rawURL))
		return "", false
	}

	if !f.admit(u.Host) {
		f.logger.Warn("domain request window exceeded, skipping",
			zap.String("domain", u.Host))
		return "", false
	}

	if f.jitter {
		d := jitterMin + time.Duration(rand.Int63n(int64(jitterMax-jitterMin)))
		if err := f.sleep(ctx, d); err != nil {
			return "", false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Debug("building request failed", zap.String("url", rawURL), zap.Error(err))
		return "", false
	}
	setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			f.logger.Warn("reading body failed", zap.String("url", rawURL), zap.Error(err))
			return "", false
		}
		return string(body), true
	case resp.StatusCode == http.StatusTooManyRequests:
		f.logger.Warn("rate limited by remote, cooling down",
			zap.String("domain", u.Host))
		_ = f.sleep(ctx, backoffCooldown)
		return "", false
	default:
		f.logger.Warn("unexpected status",
			zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return "", false
	}
}

// admit applies the trailing-window limiter: at most windowMax requests
// per domain per windowSize. A rejected request is not recorded.
func (f *HTTPFetcher) admit(domain string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	cutoff := now.Add(-windowSize)
	recent := f.history[domain][:0]
	for _, t := range f.history[domain] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= windowMax {
		f.history[domain] = recent
		return false
	}
	f.history[domain] = append(recent, now)
	return true
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", marketplace.UserAgents[rand.Intn(len(marketplace.UserAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
}
