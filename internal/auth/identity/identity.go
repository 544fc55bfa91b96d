// Package identity reconciles third-party identity assertions with local
// users. Every assertion is accepted at most once; only this package writes
// keys under the "idtoken:" prefix.
package identity

//go:generate mockgen -source=identity.go -destination=mocks/mocks.go -package=mocks Verifier CodeExchanger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authgate/pkg/platform/sentinel"
)

var (
	// ErrInvalidAssertion: the provider rejected the assertion, or it lacks
	// the claims needed to identify a user.
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	// ErrAssertionReplayed: the assertion was already used to sign in.
	ErrAssertionReplayed = fmt.Errorf("identity assertion replayed: %w", sentinel.ErrAlreadyUsed)
)

// Assertion is what the client presents: either a raw ID token, or an
// authorization code with the PKCE verifier and redirect URI it was issued for.
type Assertion struct {
	IDToken      string
	Code         string
	CodeVerifier string
	RedirectURI  string
}

// VerifiedAssertion holds the claims of a provider-verified ID token.
// UniqueID is the token's jti and may be empty.
type VerifiedAssertion struct {
	Email      string
	GivenName  string
	FamilyName string
	ExternalID string
	UniqueID   string
	Expiry     time.Time
}

// Verifier checks an ID token with the identity provider. Rejections wrap
// ErrInvalidAssertion; failures to reach the provider wrap sentinel.ErrUnavailable.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*VerifiedAssertion, error)
}

// CodeExchanger redeems an authorization code for an ID token.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (string, error)
}
