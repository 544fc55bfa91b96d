package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks TokenSigner RefreshManager CSRFIssuer IdentityReconciler PasswordHasher

import (
	"context"
	"time"

	"authgate/internal/auth/identity"
	"authgate/internal/auth/refresh"
	"authgate/internal/user"
)

// TokenSigner signs access tokens and reads the subject of refresh tokens.
type TokenSigner interface {
	SignAccess(subjectID, email, name string, ttl time.Duration) (string, error)
	DecodeRefreshUnverified(token string) (string, bool)
}

type RefreshManager interface {
	Issue(ctx context.Context, subjectID string) (string, error)
	Verify(ctx context.Context, token string) (refresh.Result, error)
	Revoke(ctx context.Context, subjectID string) error
	TTL() time.Duration
}

type CSRFIssuer interface {
	Issue(ctx context.Context, subjectID string) (string, error)
}

type IdentityReconciler interface {
	Reconcile(ctx context.Context, a identity.Assertion) (*user.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}
