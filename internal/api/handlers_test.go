package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricefinder/internal/aggregator"
	"pricefinder/internal/cache"
	"pricefinder/internal/config"
	"pricefinder/internal/extractor"
	"pricefinder/internal/monitoring"
)

var testMetrics = monitoring.NewMetrics()

// deadFetcher fails every fetch, so searches complete quickly with
// empty results.
type deadFetcher struct{}

func (deadFetcher) Fetch(ctx context.Context, rawURL string) (string, bool) { return "", false }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	agg := aggregator.New(deadFetcher{}, extractor.New(logger),
		cache.NewMemory(100, time.Hour), testMetrics, logger,
		aggregator.Options{SearchTimeout: 5 * time.Second})
	cfg := &config.Config{
		ServerPort:     "8080",
		AllowedOrigins: []string{"*"},
		ClientRPS:      1000,
		SearchTimeout:  5 * time.Second,
	}
	return NewServer(cfg, agg, nil, nil, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing query", map[string]interface{}{"country": "US"}},
		{"query too short", map[string]interface{}{"query": "a", "country": "US"}},
		{"query too long", map[string]interface{}{"query": strings.Repeat("a", 101), "country": "US"}},
		{"unknown country", map[string]interface{}{"query": "iphone", "country": "ZZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSearchReturnsEmptyResults(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search",
		map[string]interface{}{"query": "iphone 15", "country": "US"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results    []interface{} `json:"results"`
		TotalCount int           `json:"total_count"`
		Country    string        `json:"country"`
		Query      string        `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalCount)
	assert.NotNil(t, resp.Results)
	assert.Equal(t, "US", resp.Country)
	assert.Equal(t, "iphone 15", resp.Query)
}

func TestSearchDefaultsCountryToUS(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search",
		map[string]interface{}{"query": "iphone 15"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Country string `json:"country"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "US", resp.Country)
}

func TestSearchMultiValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no countries", map[string]interface{}{"query": "iphone"}},
		{"too many countries", map[string]interface{}{
			"query": "iphone", "countries": []string{"US", "CA", "UK", "DE", "FR", "IN"},
		}},
		{"unknown country", map[string]interface{}{
			"query": "iphone", "countries": []string{"US", "ZZ"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search-multi", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSearchMultiReturnsEntryPerCountry(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search-multi",
		map[string]interface{}{"query": "iphone 15", "countries": []string{"US", "uk"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results   map[string][]interface{} `json:"results"`
		Countries []string                 `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"US", "UK"}, resp.Countries)
	assert.Contains(t, resp.Results, "US")
	assert.Contains(t, resp.Results, "UK")
}

func TestCountriesEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/countries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]struct {
		Marketplaces []string `json:"marketplaces"`
		Currency     string   `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "US")
	assert.Equal(t, "USD", resp["US"].Currency)
	assert.Contains(t, resp["US"].Marketplaces, "Amazon")
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Contains(t, resp, "cache_stats")
	assert.Contains(t, resp, "supported_countries")
}

func TestCacheClearEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/cache/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cache cleared")
}

func TestClientRateLimit(t *testing.T) {
	logger := zap.NewNop()
	agg := aggregator.New(deadFetcher{}, extractor.New(logger),
		cache.NewMemory(100, time.Hour), testMetrics, logger, aggregator.Options{})
	cfg := &config.Config{
		ServerPort:     "8080",
		AllowedOrigins: []string{"*"},
		ClientRPS:      1,
	}
	s := NewServer(cfg, agg, nil, nil, logger)

	// Burst is 2x the rate; the third rapid request from one client
	// must be rejected.
	var last int
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/api/search",
			map[string]interface{}{"query": "x"})
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
