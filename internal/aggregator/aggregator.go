// Package aggregator orchestrates a search: fan out one scrape task
// per configured source, gather under a global deadline, deduplicate,
// sort by price and cache the result.
package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricefinder/internal/cache"
	"pricefinder/internal/dedup"
	"pricefinder/internal/domain"
	"pricefinder/internal/extractor"
	"pricefinder/internal/fetcher"
	"pricefinder/internal/marketplace"
	"pricefinder/internal/monitoring"
	"pricefinder/internal/ranker"
	"pricefinder/internal/ratelimit"
	"pricefinder/internal/storage"
)

// Options tune the orchestration. Zero fields fall back to the
// defaults the original deployment used.
type Options struct {
	// SearchTimeout bounds the whole fan-out for one country.
	SearchTimeout time.Duration
	// MaxLinksPerSource caps how many product pages one source crawl
	// visits.
	MaxLinksPerSource int
	// MaxCountryConcurrency bounds simultaneous country searches in
	// the multi-country path.
	MaxCountryConcurrency int
	DedupPolicy           dedup.Policy
}

func (o *Options) withDefaults() {
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 45 * time.Second
	}
	if o.MaxLinksPerSource <= 0 {
		o.MaxLinksPerSource = 10
	}
	if o.MaxCountryConcurrency <= 0 {
		o.MaxCountryConcurrency = 3
	}
	if o.DedupPolicy == "" {
		o.DedupPolicy = dedup.PolicySimilarity
	}
}

// HistoryStore is the optional persistence hook for completed
// searches. *storage.PostgresStore satisfies it.
type HistoryStore interface {
	SaveSearch(ctx context.Context, log storage.SearchLog) error
}

// Aggregator owns the fetcher, limiter registry, extractor and cache.
// One instance per process.
type Aggregator struct {
	fetcher   fetcher.Fetcher
	extractor *extractor.Extractor
	limiters  *ratelimit.Registry
	cache     cache.Store
	history   HistoryStore
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	opts      Options
}

func New(f fetcher.Fetcher, ex *extractor.Extractor, cs cache.Store, m *monitoring.Metrics, logger *zap.Logger, opts Options) *Aggregator {
	opts.withDefaults()
	return &Aggregator{
		fetcher:   f,
		extractor: ex,
		limiters:  ratelimit.NewRegistry(),
		cache:     cs,
		metrics:   m,
		logger:    logger,
		opts:      opts,
	}
}

// WithHistory attaches the optional search-history store.
func (a *Aggregator) WithHistory(h HistoryStore) *Aggregator {
	a.history = h
	return a
}

// GetAllPrices aggregates prices for one query in one country. Partial
// failures degrade to fewer results; the returned slice is sorted by
// ascending price and never nil.
func (a *Aggregator) GetAllPrices(ctx context.Context, query, country string) []domain.Product {
	start := time.Now()
	key := cache.Key(query, country)

	if records, ok := a.cache.Get(key); ok {
		a.logger.Info("cache hit",
			zap.String("query", query), zap.String("country", country))
		a.metrics.CacheHits.Inc()
		a.saveHistory(query, country, len(records), true, time.Since(start))
		return records
	}
	a.metrics.CacheMisses.Inc()
	a.metrics.SearchesTotal.WithLabelValues(country).Inc()

	sources := marketplace.SourcesFor(country)
	if len(sources) == 0 {
		a.logger.Warn("no sources configured", zap.String("country", country))
		return []domain.Product{}
	}

	deadline, cancel := context.WithTimeout(ctx, a.opts.SearchTimeout)
	defer cancel()

	results := make(chan []domain.Product, len(sources))
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src marketplace.Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("scrape task panicked",
						zap.String("source", src.Name), zap.Any("panic", r))
					a.metrics.ScrapeErrors.WithLabelValues(src.Name).Inc()
				}
			}()
			results <- a.scrapeSource(deadline, query, src)
		}(src)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []domain.Product
gather:
	for {
		select {
		case batch, ok := <-results:
			if !ok {
				break gather
			}
			all = append(all, batch...)
		case <-deadline.Done():
			a.logger.Error("aggregation deadline exceeded, returning partial results",
				zap.String("query", query), zap.String("country", country),
				zap.Int("collected", len(all)))
			break gather
		}
	}

	unique := dedup.Dedupe(all, a.opts.DedupPolicy)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Price < unique[j].Price
	})
	if unique == nil {
		unique = []domain.Product{}
	}

	a.cache.Set(key, unique)
	took := time.Since(start)
	a.metrics.SearchDuration.Observe(took.Seconds())
	a.saveHistory(query, country, len(unique), false, took)

	a.logger.Info("aggregation complete",
		zap.String("query", query), zap.String("country", country),
		zap.Int("results", len(unique)), zap.Duration("took", took))
	return unique
}

// GetPricesForCountries runs the single-country path for each country
// with bounded concurrency. A failing country yields an empty list,
// never an error for the batch.
func (a *Aggregator) GetPricesForCountries(ctx context.Context, query string, countries []string) map[string][]domain.Product {
	sem := make(chan struct{}, a.opts.MaxCountryConcurrency)
	out := make(map[string][]domain.Product, len(countries))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, country := range countries {
		wg.Add(1)
		go func(country string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records := a.GetAllPrices(ctx, query, country)
			mu.Lock()
			out[country] = records
			mu.Unlock()
		}(country)
	}
	wg.Wait()
	return out
}

// RankProducts runs the optional relevance path on already-aggregated
// records: score against the query, drop weak matches, order by score.
func (a *Aggregator) RankProducts(records []domain.Product, query string) []domain.Product {
	ranked := ranker.FilterAndSort(records, query, ranker.DefaultThreshold)
	if ranked == nil {
		ranked = []domain.Product{}
	}
	return ranked
}

// scrapeSource crawls one marketplace: search page, then the top
// product pages. Every failure contributes an empty slice.
func (a *Aggregator) scrapeSource(ctx context.Context, query string, src marketplace.Source) []domain.Product {
	limiter := a.limiters.For(src.Name)
	if err := limiter.Acquire(ctx); err != nil {
		a.logger.Warn("rate-limit wait aborted",
			zap.String("source", src.Name), zap.Error(err))
		return nil
	}

	searchURL := src.SearchURL(query)
	html, ok := a.fetcher.Fetch(ctx, searchURL)
	if !ok {
		a.metrics.ScrapeErrors.WithLabelValues(src.Name).Inc()
		return nil
	}

	links := a.extractor.ListingLinks(html, searchURL)
	if len(links) > a.opts.MaxLinksPerSource {
		links = links[:a.opts.MaxLinksPerSource]
	}
	if len(links) == 0 {
		a.logger.Debug("no listing links found",
			zap.String("source", src.Name), zap.String("query", query))
		return nil
	}

	var records []domain.Product
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		page, ok := a.fetcher.Fetch(ctx, link)
		if !ok {
			continue
		}
		if p, ok := a.extractor.Product(page, link, src.Currency); ok {
			records = append(records, p)
			a.metrics.ProductsScraped.WithLabelValues(src.Name).Inc()
		}
	}
	return records
}

// CacheStats exposes the result-cache state for health and responses.
func (a *Aggregator) CacheStats() domain.CacheStats {
	return a.cache.Stats()
}

// ClearCache drops every cached result.
func (a *Aggregator) ClearCache() {
	a.cache.Clear()
	a.logger.Info("cache cleared")
}

func (a *Aggregator) saveHistory(query, country string, count int, hit bool, took time.Duration) {
	if a.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := a.history.SaveSearch(ctx, storage.SearchLog{
		Query:       query,
		Country:     country,
		ResultCount: count,
		CacheHit:    hit,
		Duration:    took,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		a.logger.Warn("saving search history failed", zap.Error(err))
	}
}
