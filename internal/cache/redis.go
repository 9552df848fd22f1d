package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pricefinder/internal/domain"
)

const redisKeyPrefix = "prices:"

// Redis is a Store backed by a shared Redis instance. Records are
// stored as JSON with the TTL applied on write; all Redis errors
// degrade to cache misses or dropped writes.
type Redis struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
	logger  *zap.Logger
}

func NewRedis(addr string, maxSize int, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		ttl:     ttl,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(key string) ([]domain.Product, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed, treating as miss", zap.Error(err))
		}
		return nil, false
	}
	var records []domain.Product
	if err := json.Unmarshal(raw, &records); err != nil {
		r.logger.Warn("corrupt cache entry, treating as miss", zap.Error(err))
		return nil, false
	}
	return records, true
}

func (r *Redis) Set(key string, records []domain.Product) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(records)
	if err != nil {
		r.logger.Warn("marshalling cache entry failed, dropping write", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed, dropping write", zap.Error(err))
	}
}

func (r *Redis) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("redis del failed", zap.Error(err))
		}
	}
}

func (r *Redis) Stats() domain.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size := 0
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		size++
	}
	return domain.CacheStats{
		Size:       size,
		MaxSize:    r.maxSize,
		TTLSeconds: int(r.ttl.Seconds()),
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
