package user

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Repository

import (
	"context"

	id "authgate/pkg/domain"
)

// Repository persists users. Lookups return sentinel.ErrNotFound when no user
// matches; Create returns sentinel.ErrConflict for a taken email or external id.
type Repository interface {
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	Create(ctx context.Context, u *User) error
	LinkExternalID(ctx context.Context, userID id.UserID, externalID string) error
	UpdateName(ctx context.Context, userID id.UserID, givenName, familyName string) error
}
