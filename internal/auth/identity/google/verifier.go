// Package google verifies Google ID tokens and redeems Google authorization
// codes.
package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"authgate/internal/auth/identity"
)

const (
	// Issuer is Google's OpenID Connect issuer.
	Issuer = "https://accounts.google.com"
	// JWKSURL serves Google's ID token signing keys.
	JWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

type claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	JTI           string `json:"jti"`
}

// Verifier checks ID token signature, issuer, audience and expiry against
// Google's published keys.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier verifies against Google's published signing keys. Keys are
// fetched lazily and cached; ctx bounds the lifetime of key refreshes.
func NewVerifier(ctx context.Context, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("google verifier: client id is required")
	}
	keySet := oidc.NewRemoteKeySet(ctx, JWKSURL)
	return NewVerifierWithKeySet(keySet, clientID, nil), nil
}

// NewVerifierWithKeySet builds a verifier over a fixed key set.
func NewVerifierWithKeySet(keySet oidc.KeySet, clientID string, now func() time.Time) *Verifier {
	return &Verifier{verifier: oidc.NewVerifier(Issuer, keySet, &oidc.Config{
		ClientID: clientID,
		Now:      now,
	})}
}

func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*identity.VerifiedAssertion, error) {
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identity.ErrInvalidAssertion, err)
	}

	var c claims
	if err := token.Claims(&c); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %w", identity.ErrInvalidAssertion, err)
	}
	if !c.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", identity.ErrInvalidAssertion)
	}

	return &identity.VerifiedAssertion{
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		ExternalID: token.Subject,
		UniqueID:   c.JTI,
		Expiry:     token.Expiry,
	}, nil
}

var _ identity.Verifier = (*Verifier)(nil)
