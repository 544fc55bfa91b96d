//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"authgate/internal/cache"
	"authgate/pkg/platform/sentinel"
	"authgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cache.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestTTLIsApplied() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "refresh:u1", "token", 30*time.Second))

	ttl, err := s.redis.Client.TTL(ctx, "refresh:u1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 25*time.Second)
	s.LessOrEqual(ttl, 30*time.Second)
}

func (s *RedisStoreSuite) TestExpiredKeyIsNotFound() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "csrf:u1", "tok", 100*time.Millisecond))

	require.Eventually(s.T(), func() bool {
		_, err := s.store.Get(ctx, "csrf:u1")
		return err == sentinel.ErrNotFound
	}, 3*time.Second, 50*time.Millisecond)
}

func (s *RedisStoreSuite) TestZeroTTLCreatesNothing() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "idtoken:j1", "1", 0))

	n, err := s.redis.Client.Exists(ctx, "idtoken:j1").Result()
	s.Require().NoError(err)
	s.Zero(n)
}
