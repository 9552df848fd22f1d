package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	SearchesTotal   *prometheus.CounterVec
	ScrapeErrors    *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	ProductsScraped *prometheus.CounterVec
	SearchDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricefinder_searches_total",
			Help: "The total number of aggregation searches",
		}, []string{"country"}),
		ScrapeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricefinder_scrape_errors_total",
			Help: "The total number of per-source scrape failures",
		}, []string{"source"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pricefinder_cache_hits_total",
			Help: "The total number of result-cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pricefinder_cache_misses_total",
			Help: "The total number of result-cache misses",
		}),
		ProductsScraped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricefinder_products_scraped_total",
			Help: "The total number of product records extracted",
		}, []string{"source"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricefinder_search_duration_seconds",
			Help:    "Wall-clock duration of a single-country aggregation",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}
}
