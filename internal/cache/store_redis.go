package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"authgate/pkg/platform/sentinel"
)

var storeOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "authgate_cache_op_duration_ms",
	Help:    "Latency of cache store operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
}, []string{"op"})

// RedisStore is the production Store backed by a shared Redis instance.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore wraps a go-redis client. The client lifecycle is managed by the caller.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	defer observe("get", time.Now())

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: redis get: %w", sentinel.ErrUnavailable, err)
	}
	return val, nil
}

// Set uses SET with EX so value and expiry are written atomically. Redis
// rejects a zero expiry, so a non-positive ttl deletes the key instead.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	defer observe("set", time.Now())

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	defer observe("delete", time.Now())

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	storeOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
