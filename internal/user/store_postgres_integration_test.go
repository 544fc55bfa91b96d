//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"authgate/internal/user"
	id "authgate/pkg/domain"
	"authgate/pkg/platform/sentinel"
	"authgate/pkg/testutil/containers"

	"github.com/stretchr/testify/suite"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = user.NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "users"))
}

func (s *PostgresStoreSuite) newUser(email string) *user.User {
	return &user.User{
		ID:         id.NewUserID(),
		Email:      email,
		GivenName:  "Jane",
		FamilyName: "Doe",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	u := s.newUser("Round@Example.com")
	u.PasswordHash = "hash"
	s.Require().NoError(s.store.Create(ctx, u))

	found, err := s.store.FindByEmail(ctx, "round@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal("hash", found.PasswordHash)
	s.Empty(found.ExternalID)
	s.True(u.CreatedAt.Equal(found.CreatedAt))
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("dup@example.com")))
	s.ErrorIs(s.store.Create(ctx, s.newUser("dup@example.com")), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestLinkAndFindByExternalID() {
	ctx := context.Background()
	u := s.newUser("link@example.com")
	s.Require().NoError(s.store.Create(ctx, u))
	s.Require().NoError(s.store.LinkExternalID(ctx, u.ID, "google-1"))

	found, err := s.store.FindByExternalID(ctx, "google-1")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	s.ErrorIs(s.store.LinkExternalID(ctx, id.NewUserID(), "google-2"), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMissingUser() {
	_, err := s.store.FindByID(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
