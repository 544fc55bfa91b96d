// Package redis builds the shared go-redis client every process instance uses
// as its authoritative key-value store.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"authgate/internal/platform/config"
)

// Client embeds the go-redis client so it can be handed to cache.NewRedisStore
// directly, and doubles as the /healthz checker.
type Client struct {
	*redis.Client
}

// Options turns configuration into go-redis options. Failed commands are
// retried up to MaxRetries times with backoff between MinRetryBackoff and
// MaxRetryBackoff.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.MinRetryBackoff
	opts.MaxRetryBackoff = cfg.MaxRetryBackoff
	return opts, nil
}

// New connects and pings once. A process that cannot reach Redis at startup
// refuses to start rather than serving every request with 500s.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(ctx context.Context, _ *redis.Conn) error {
		logger.DebugContext(ctx, "redis connection established", "addr", opts.Addr)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.InfoContext(ctx, "redis connected",
		"addr", opts.Addr,
		"db", opts.DB,
		"max_retries", opts.MaxRetries,
	)
	return &Client{Client: client}, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
