package user

import (
	"context"
	"sync"

	id "authgate/pkg/domain"
	"authgate/pkg/platform/sentinel"
)

// InMemoryStore is a Repository for development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*User
}

func New() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*User)}
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return clone(u), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByExternalID(_ context.Context, externalID string) (*User, error) {
	if externalID == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ExternalID == externalID {
			return clone(u), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = NormalizeEmail(u.Email)
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return sentinel.ErrConflict
		}
		if u.ExternalID != "" && existing.ExternalID == u.ExternalID {
			return sentinel.ErrConflict
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return sentinel.ErrConflict
	}
	s.users[u.ID] = clone(u)
	return nil
}

func (s *InMemoryStore) LinkExternalID(_ context.Context, userID id.UserID, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for uid, other := range s.users {
		if uid != userID && other.ExternalID == externalID {
			return sentinel.ErrConflict
		}
	}
	u.ExternalID = externalID
	return nil
}

func (s *InMemoryStore) UpdateName(_ context.Context, userID id.UserID, givenName, familyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.GivenName = givenName
	u.FamilyName = familyName
	return nil
}

func clone(u *User) *User {
	c := *u
	return &c
}
