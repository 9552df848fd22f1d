// Package storage persists a history of completed searches. The store
// is optional: when no Postgres URL is configured the aggregator runs
// without it, and write failures never surface to callers.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLog is one completed aggregation.
type SearchLog struct {
	Query       string
	Country     string
	ResultCount int
	CacheHit    bool
	Duration    time.Duration
	CreatedAt   time.Time
}

// PostgresStore writes search history through a pgx pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// SaveSearch records one completed search.
func (s *PostgresStore) SaveSearch(ctx context.Context, log SearchLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO search_history (query, country, result_count, cache_hit, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.Query, log.Country, log.ResultCount, log.CacheHit,
		log.Duration.Milliseconds(), log.CreatedAt,
	)
	return err
}

// RecentSearches returns the latest n history rows, newest first.
func (s *PostgresStore) RecentSearches(ctx context.Context, n int) ([]SearchLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT query, country, result_count, cache_hit, duration_ms, created_at
		 FROM search_history ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchLog
	for rows.Next() {
		var l SearchLog
		var ms int64
		if err := rows.Scan(&l.Query, &l.Country, &l.ResultCount, &l.CacheHit, &ms, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, l)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}
