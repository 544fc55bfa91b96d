package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/platform/config"
)

func TestOptions(t *testing.T) {
	cfg := config.RedisConfig{
		URL:             "redis://:secret@cache.internal:6380/2",
		PoolSize:        20,
		MinIdleConns:    4,
		DialTimeout:     time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      10,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	}

	opts, err := Options(cfg)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, 10, opts.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, opts.MinRetryBackoff)
	assert.Equal(t, 500*time.Millisecond, opts.MaxRetryBackoff)
}

func TestOptions_RejectsBadURL(t *testing.T) {
	_, err := Options(config.RedisConfig{URL: "http://cache.internal"})
	require.Error(t, err)
}

func TestNew_FailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, config.RedisConfig{
		URL:         "redis://127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
