package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"authgate/internal/auth/identity"
	"authgate/pkg/platform/sentinel"
)

// Endpoint is Google's OAuth 2.0 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Exchanger redeems authorization codes obtained with PKCE.
type Exchanger struct {
	config oauth2.Config
}

func NewExchanger(clientID, clientSecret string, endpoint oauth2.Endpoint) *Exchanger {
	return &Exchanger{config: oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

// Exchange returns the ID token issued alongside the access token.
func (e *Exchanger) Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (string, error) {
	cfg := e.config
	cfg.RedirectURL = redirectURI

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	token, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: code rejected: %w", identity.ErrInvalidAssertion, err)
		}
		return "", unavailable("exchange authorization code", err)
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: token response has no id_token", identity.ErrInvalidAssertion)
	}
	return raw, nil
}

var _ identity.CodeExchanger = (*Exchanger)(nil)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
