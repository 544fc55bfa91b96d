package client

import (
	"context"
	"net/http"
	"time"
)

// User is the public profile the server returns.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	Name       string    `json:"name"`
	Linked     bool      `json:"linked"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Registration is the payload of Register.
type Registration struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// GoogleLogin carries either a raw ID token or an authorization code with
// its PKCE verifier and redirect URI.
type GoogleLogin struct {
	IDToken      string `json:"idToken,omitempty"`
	Code         string `json:"code,omitempty"`
	CodeVerifier string `json:"codeVerifier,omitempty"`
	RedirectURI  string `json:"redirectUri,omitempty"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	CSRFToken   string `json:"csrfToken"`
	User        User   `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, r Registration) (*User, error) {
	var u User
	if err := s.do(ctx, call{method: http.MethodPost, path: "/api/users/register", body: r}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	return s.login(ctx, "/api/auth/login", body)
}

// LoginWithGoogle signs in with a Google assertion.
func (s *Session) LoginWithGoogle(ctx context.Context, g GoogleLogin) (*User, error) {
	return s.login(ctx, "/api/auth/google/login", g)
}

func (s *Session) login(ctx context.Context, path string, body any) (*User, error) {
	var resp loginResponse
	if err := s.do(ctx, call{method: http.MethodPost, path: path, body: body}, &resp); err != nil {
		return nil, err
	}
	s.setTokens(resp.AccessToken, resp.CSRFToken)
	return &resp.User, nil
}

// Refresh exchanges the refresh cookie for a new access token. On failure the
// access token is dropped; a refresh_reuse_detected answer has already put a
// rotated cookie in the jar, so calling Refresh again can succeed.
func (s *Session) Refresh(ctx context.Context) error {
	var resp refreshResponse
	err := s.send(ctx, call{method: http.MethodPost, path: "/api/auth/refresh"}, &resp)
	if err != nil {
		s.setAccessToken("")
		return err
	}
	s.setAccessToken(resp.AccessToken)
	return nil
}

func (s *Session) refreshShared(ctx context.Context) error {
	_, err, _ := s.refreshes.Do("refresh", func() (any, error) {
		return nil, s.Refresh(ctx)
	})
	return err
}

// Logout ends the session on the server and forgets local tokens. Local state
// is cleared even when the request fails.
func (s *Session) Logout(ctx context.Context) error {
	c := call{method: http.MethodPost, path: "/api/auth/logout", authed: s.AccessToken() != ""}
	err := s.send(ctx, c, nil)
	s.clear()
	return err
}

// Me returns the signed-in user's profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.do(ctx, call{method: http.MethodGet, path: "/api/users/me", authed: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the signed-in user's name.
func (s *Session) UpdateProfile(ctx context.Context, givenName, familyName string) (*User, error) {
	body := map[string]string{"givenName": givenName, "familyName": familyName}
	var u User
	if err := s.do(ctx, call{method: http.MethodPatch, path: "/api/users/me", body: body, authed: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
