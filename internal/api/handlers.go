package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricefinder/internal/domain"
	"pricefinder/internal/marketplace"
)

const (
	minQueryLen  = 2
	maxQueryLen  = 100
	maxCountries = 5
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "US"
	}
	if msg, ok := validateQuery(query); !ok {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	if !marketplace.IsSupported(country) {
		s.respondWithError(w, http.StatusBadRequest, "Unsupported country: "+country)
		return
	}

	s.logger.Info("search",
		zap.String("query", query), zap.String("country", country),
		zap.Bool("rank", req.Rank))

	results := s.aggregator.GetAllPrices(r.Context(), query, country)
	if req.Rank {
		results = s.aggregator.RankProducts(results, query)
	}

	s.respondWithJSON(w, http.StatusOK, domain.SearchResponse{
		Results:    results,
		TotalCount: len(results),
		Country:    country,
		Query:      query,
		Timestamp:  time.Now().Unix(),
		CacheStats: s.aggregator.CacheStats(),
	})
}

func (s *Server) handleSearchMulti(w http.ResponseWriter, r *http.Request) {
	var req domain.MultiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if msg, ok := validateQuery(query); !ok {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.Countries) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "At least one country is required")
		return
	}
	if len(req.Countries) > maxCountries {
		s.respondWithError(w, http.StatusBadRequest, "Maximum 5 countries allowed")
		return
	}
	countries := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if !marketplace.IsSupported(c) {
			s.respondWithError(w, http.StatusBadRequest, "Unsupported country: "+c)
			return
		}
		countries = append(countries, c)
	}

	s.logger.Info("multi-country search",
		zap.String("query", query), zap.Strings("countries", countries))

	results := s.aggregator.GetPricesForCountries(r.Context(), query, countries)

	s.respondWithJSON(w, http.StatusOK, domain.MultiSearchResponse{
		Results:    results,
		Countries:  countries,
		Query:      query,
		Timestamp:  time.Now().Unix(),
		CacheStats: s.aggregator.CacheStats(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status":              "healthy",
		"timestamp":           time.Now().Unix(),
		"cache_stats":         s.aggregator.CacheStats(),
		"supported_countries": marketplace.Countries(),
	}

	healthy := true
	if s.pgStore != nil {
		if err := s.pgStore.Ping(ctx); err != nil {
			s.logger.Error("health check failed for postgres", zap.Error(err))
			status["postgres"] = "unhealthy"
			healthy = false
		} else {
			status["postgres"] = "healthy"
		}
	}
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Error("health check failed for redis", zap.Error(err))
			status["redis"] = "unhealthy"
			healthy = false
		} else {
			status["redis"] = "healthy"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		s.respondWithJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	s.respondWithJSON(w, http.StatusOK, status)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	type countryInfo struct {
		Marketplaces []string `json:"marketplaces"`
		Currency     string   `json:"currency"`
	}
	out := make(map[string]countryInfo)
	for _, c := range marketplace.Countries() {
		sources := marketplace.SourcesFor(c)
		names := make([]string, 0, len(sources))
		for _, src := range sources {
			names = append(names, src.Name)
		}
		out[c] = countryInfo{Marketplaces: names, Currency: marketplace.CurrencyFor(c)}
	}
	s.respondWithJSON(w, http.StatusOK, out)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.aggregator.ClearCache()
	s.logger.Info("cache cleared via API")
	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}

func validateQuery(query string) (string, bool) {
	switch {
	case query == "":
		return "Query is required", false
	case len(query) < minQueryLen:
		return "Query must be at least 2 characters", false
	case len(query) > maxQueryLen:
		return "Query too long (max 100 characters)", false
	}
	return "", true
}

// --- Helper functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
