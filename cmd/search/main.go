// Command search runs a one-off aggregation from the terminal, useful
// for poking at marketplaces without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"pricefinder/internal/aggregator"
	"pricefinder/internal/cache"
	"pricefinder/internal/config"
	"pricefinder/internal/dedup"
	"pricefinder/internal/extractor"
	"pricefinder/internal/fetcher"
	"pricefinder/internal/marketplace"
	"pricefinder/internal/monitoring"
)

func main() {
	var (
		query     = flag.String("query", "", "product to search for")
		countries = flag.String("countries", "US", "comma-separated country codes")
		rank      = flag.Bool("rank", false, "filter and order results by query relevance")
	)
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		fmt.Fprintln(os.Stderr, "usage: search -query \"iphone 15\" [-countries US,UK] [-rank]")
		os.Exit(2)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	pageFetcher := fetcher.NewHTTPFetcher(cfg.FetchTimeout, logger)
	defer pageFetcher.Close()

	agg := aggregator.New(
		pageFetcher,
		extractor.New(logger),
		cache.NewMemory(cfg.CacheMaxSize, cfg.CacheTTL),
		monitoring.NewMetrics(),
		logger,
		aggregator.Options{
			SearchTimeout:     cfg.SearchTimeout,
			MaxLinksPerSource: cfg.MaxLinksPerSource,
			DedupPolicy:       dedup.ParsePolicy(cfg.DedupPolicy),
		},
	)

	var codes []string
	for _, c := range strings.Split(*countries, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !marketplace.IsSupported(c) {
			fmt.Fprintf(os.Stderr, "unsupported country %q (supported: %s)\n",
				c, strings.Join(marketplace.Countries(), ", "))
			os.Exit(2)
		}
		codes = append(codes, c)
	}

	results := agg.GetPricesForCountries(context.Background(), *query, codes)
	for _, country := range codes {
		records := results[country]
		if *rank {
			records = agg.RankProducts(records, *query)
		}
		fmt.Printf("\n%s: %d results\n", country, len(records))
		for i, p := range records {
			fmt.Printf("%2d. %s %.2f  %-10s %s\n     %s\n",
				i+1, p.Currency, p.Price, p.Source, p.Title, p.URL)
		}
	}
}
