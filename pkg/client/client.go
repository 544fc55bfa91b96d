// Package client is a Go client for the authgate HTTP API.
//
// A Session holds one caller's tokens: the access token and anti-forgery
// token in memory, the refresh cookie in a cookie jar. It heals itself the way
// a browser client is expected to: a 403 that carries a reissued CSRF token is
// retried once with it, and a 401 on an authenticated call triggers one
// refresh and a retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"authgate/pkg/platform/httputil"
)

const (
	csrfHeader      = "X-CSRF-Token"
	csrfDetailToken = "csrfToken"
	maxBodyBytes    = 1 << 20
)

// Session is safe for concurrent use. Concurrent calls that all hit an
// expired access token share a single refresh request.
type Session struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu          sync.RWMutex
	accessToken string
	csrfToken   string

	refreshes singleflight.Group
}

type Option func(*Session)

// WithHTTPClient sets the transport. A cookie jar is attached when the client
// has none, since the refresh token only ever lives in a cookie.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		if c != nil {
			s.http = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session against baseURL, e.g. "https://auth.example.com".
func New(baseURL string, opts ...Option) (*Session, error) {
	if baseURL == "" {
		return nil, errors.New("client: base url is required")
	}
	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		clone := *s.http
		clone.Jar = jar
		s.http = &clone
	}
	return s, nil
}

// AccessToken returns the current access token, or "" before login.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// CSRFToken returns the current anti-forgery token, or "" before login.
func (s *Session) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csrfToken
}

func (s *Session) setTokens(access, csrf string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	if csrf != "" {
		s.csrfToken = csrf
	}
}

func (s *Session) setAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
}

func (s *Session) setCSRFToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrfToken = token
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.csrfToken = ""
}

type call struct {
	method string
	path   string
	body   any
	authed bool
}

// do sends c and decodes a 2xx body into out. Authenticated calls are retried
// at most once per recovery kind.
func (s *Session) do(ctx context.Context, c call, out any) error {
	if c.authed && s.AccessToken() == "" {
		return ErrNotLoggedIn
	}

	err := s.send(ctx, c, out)
	if !c.authed {
		return err
	}

	if StatusOf(err) == http.StatusUnauthorized {
		s.logger.DebugContext(ctx, "access token rejected, refreshing", "path", c.path)
		if rerr := s.refreshShared(ctx); rerr != nil {
			return rerr
		}
		err = s.send(ctx, c, out)
	}

	if token, ok := reissuedCSRF(err); ok {
		s.logger.DebugContext(ctx, "csrf token reissued, retrying", "path", c.path, "reason", ReasonOf(err))
		s.setCSRFToken(token)
		err = s.send(ctx, c, out)
	}
	return err
}

func reissuedCSRF(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		return "", false
	}
	token, ok := apiErr.Details[csrfDetailToken]
	return token, ok && token != ""
}

func (s *Session) send(ctx context.Context, c call, out any) error {
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("client: encode %s body: %w", c.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, s.baseURL+c.path, body)
	if err != nil {
		return fmt.Errorf("client: build %s request: %w", c.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authed {
		s.mu.RLock()
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
		if s.csrfToken != "" {
			req.Header.Set(csrfHeader, s.csrfToken)
		}
		s.mu.RUnlock()
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", c.method, c.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("client: read %s response: %w", c.path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s response: %w", c.path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) *APIError {
	var envelope httputil.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == "" {
		return &APIError{Status: status, Code: http.StatusText(status)}
	}
	return &APIError{
		Status:      status,
		Code:        envelope.Error,
		Description: envelope.Description,
		Reason:      envelope.Reason,
		Details:     envelope.Details,
	}
}
