package models

import (
	"time"

	"authgate/internal/user"
)

// Machine-readable reasons carried by auth errors. Clients branch on them:
// refresh_* reasons mean "sign in again", store_unavailable means "retry".
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonRefreshMissing     = "refresh_missing"
	ReasonRefreshExpired     = "refresh_expired"
	ReasonRefreshLoggedOut   = "refresh_logged_out"
	ReasonRefreshInvalid     = "refresh_invalid"
	ReasonRefreshReuse       = "refresh_reuse_detected"
	ReasonInvalidAssertion   = "invalid_assertion"
	ReasonAssertionReplayed  = "assertion_replayed"
	ReasonEmailTaken         = "email_taken"
	ReasonStoreUnavailable   = "store_unavailable"
)

// DetailRefreshToken names the error detail carrying the replacement refresh
// token after reuse detection. The transport sets it as the cookie and
// leaves it in the error body.
const DetailRefreshToken = "refreshToken"

// LoginResult is returned by both login flows. RefreshToken travels in a
// cookie, never in the body.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
	CSRFToken    string
	User         *user.User
}

type RefreshResult struct {
	AccessToken string
	SubjectID   string
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries either an ID token or an authorization code
// with its PKCE verifier.
type GoogleLoginRequest struct {
	IDToken      string `json:"idToken" validate:"required_without=Code"`
	Code         string `json:"code" validate:"required_without=IDToken"`
	CodeVerifier string `json:"codeVerifier" validate:"required_with=Code"`
	RedirectURI  string `json:"redirectUri" validate:"required_with=Code"`
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,max=72"`
	GivenName  string `json:"givenName" validate:"required,max=100"`
	FamilyName string `json:"familyName" validate:"required,max=100"`
}

type UpdateProfileRequest struct {
	GivenName  string `json:"givenName" validate:"required,max=100"`
	FamilyName string `json:"familyName" validate:"required,max=100"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	CSRFToken   string       `json:"csrfToken"`
	User        user.Summary `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
