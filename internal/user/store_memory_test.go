package user

import (
	"context"
	"testing"
	"time"

	id "authgate/pkg/domain"
	"authgate/pkg/platform/sentinel"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newUser(email string) *User {
	return &User{
		ID:         id.NewUserID(),
		Email:      email,
		GivenName:  "Jane",
		FamilyName: "Doe",
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryStoreSuite) TestLookup() {
	u := s.newUser("Jane.Doe@Example.com")
	u.ExternalID = "google-123"
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("jane.doe@example.com", found.Email)
	})

	s.Run("by email is case-insensitive", func() {
		found, err := s.store.FindByEmail(s.ctx, "JANE.DOE@example.com ")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("by external id", func() {
		found, err := s.store.FindByExternalID(s.ctx, "google-123")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("missing user is ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByExternalID(s.ctx, "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("dup@example.com")))

	err := s.store.Create(s.ctx, s.newUser("DUP@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestReturnedUsersAreCopies() {
	u := s.newUser("copy@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	found.GivenName = "Mutated"

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Jane", again.GivenName)
}

func (s *InMemoryStoreSuite) TestLinkExternalID() {
	u := s.newUser("link@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Require().NoError(s.store.LinkExternalID(s.ctx, u.ID, "google-9"))
	found, err := s.store.FindByExternalID(s.ctx, "google-9")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	s.ErrorIs(s.store.LinkExternalID(s.ctx, id.NewUserID(), "google-10"), sentinel.ErrNotFound)

	other := s.newUser("other@example.com")
	s.Require().NoError(s.store.Create(s.ctx, other))
	s.ErrorIs(s.store.LinkExternalID(s.ctx, other.ID, "google-9"), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestUpdateName() {
	u := s.newUser("rename@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Require().NoError(s.store.UpdateName(s.ctx, u.ID, "Janet", "Roe"))
	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Janet Roe", found.FullName())

	s.ErrorIs(s.store.UpdateName(s.ctx, id.NewUserID(), "a", "b"), sentinel.ErrNotFound)
}
