package cache

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"authgate/pkg/platform/sentinel"
)

// storeContract exercises the behaviour every Store implementation shares.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("absent key is not found", func(t *testing.T) {
		_, err := store.Get(ctx, "refresh:absent")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("set overwrites unconditionally", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "refresh:u1", "first", time.Minute))
		require.NoError(t, store.Set(ctx, "refresh:u1", "second", time.Minute))

		got, err := store.Get(ctx, "refresh:u1")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "csrf:u1", "tok", time.Minute))
		require.NoError(t, store.Delete(ctx, "csrf:u1"))
		require.NoError(t, store.Delete(ctx, "csrf:u1"))

		_, err := store.Get(ctx, "csrf:u1")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("zero ttl leaves no key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "idtoken:j1", "1", 0))

		_, err := store.Get(ctx, "idtoken:j1")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("zero ttl replaces an existing key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "idtoken:j2", "1", time.Minute))
		require.NoError(t, store.Set(ctx, "idtoken:j2", "1", 0))

		_, err := store.Get(ctx, "idtoken:j2")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore(WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) TestContract() {
	storeContract(s.T(), s.store)
}

func (s *InMemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "csrf:u1", "tok", 6*time.Hour))

	s.now = s.now.Add(6*time.Hour - time.Second)
	got, err := s.store.Get(ctx, "csrf:u1")
	s.Require().NoError(err)
	s.Equal("tok", got)
	s.Equal(1, s.store.Len())

	s.now = s.now.Add(time.Second)
	_, err = s.store.Get(ctx, "csrf:u1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(0, s.store.Len())
}

func TestRedisStore_UnreachableIsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "refresh:u1")
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.NotErrorIs(t, err, sentinel.ErrNotFound)

	require.ErrorIs(t, store.Set(ctx, "refresh:u1", "v", time.Minute), sentinel.ErrUnavailable)
	require.ErrorIs(t, store.Delete(ctx, "refresh:u1"), sentinel.ErrUnavailable)
}
