// Package csrf implements the synchronizer token pattern: one random token per
// subject, stored server side and echoed by the client in X-CSRF-Token on
// state-changing requests. Only this package writes keys under "csrf:".
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"authgate/internal/cache"
	"authgate/internal/platform/metrics"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

const (
	keyPrefix  = "csrf:"
	tokenBytes = 32

	// DefaultTTL is the anti-forgery token lifetime.
	DefaultTTL = 6 * time.Hour
)

// Key returns the store key holding a subject's anti-forgery token.
func Key(subjectID string) string {
	return keyPrefix + subjectID
}

type Status int

const (
	StatusOK Status = iota
	// StatusMissing: no token was presented. Nothing is reissued.
	StatusMissing
	// StatusExpired: no token is stored for the subject (never issued or
	// expired). A fresh one was issued.
	StatusExpired
	// StatusInvalid: the presented token differs from the stored one. The
	// stored token was replaced.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Result is the outcome of Guard.Verify. NewToken is set for StatusExpired
// and StatusInvalid.
type Result struct {
	Status   Status
	NewToken string
}

// Guard issues and verifies anti-forgery tokens.
type Guard struct {
	store   cache.Store
	ttl     time.Duration
	random  io.Reader
	logger  *slog.Logger
	auditor audit.SecurityAuditor
	metrics *metrics.Metrics
}

// Option configures a Guard.
type Option func(*Guard)

func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithAuditor(auditor audit.SecurityAuditor) Option {
	return func(g *Guard) {
		if auditor != nil {
			g.auditor = auditor
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithRandom replaces the entropy source. Tests only.
func WithRandom(r io.Reader) Option {
	return func(g *Guard) {
		if r != nil {
			g.random = r
		}
	}
}

func NewGuard(store cache.Store, opts ...Option) *Guard {
	g := &Guard{
		store:   store,
		ttl:     DefaultTTL,
		random:  rand.Reader,
		logger:  slog.Default(),
		auditor: audit.NopAuditor{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Issue generates a 256-bit token, stores it for the subject (replacing any
// previous one) and returns it hex-encoded.
func (g *Guard) Issue(ctx context.Context, subjectID string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := g.store.Set(ctx, Key(subjectID), token, g.ttl); err != nil {
		return "", unavailable("store csrf token", err)
	}
	return token, nil
}

// Verify checks presented against the subject's stored token. Store failures
// are returned as errors wrapping sentinel.ErrUnavailable, never as a status.
func (g *Guard) Verify(ctx context.Context, subjectID, presented string) (Result, error) {
	result, err := g.verify(ctx, subjectID, presented)
	if err == nil {
		g.metrics.IncrementCSRFVerification(result.Status.String())
	}
	return result, err
}

func (g *Guard) verify(ctx context.Context, subjectID, presented string) (Result, error) {
	if presented == "" {
		return Result{Status: StatusMissing}, nil
	}

	stored, err := g.store.Get(ctx, Key(subjectID))
	if errors.Is(err, sentinel.ErrNotFound) {
		g.logger.InfoContext(ctx, "csrf token expired or not issued, reissuing",
			"user_id", subjectID,
		)
		token, err := g.Issue(ctx, subjectID)
		if err != nil {
			return Result{}, err
		}
		return Result{Status: StatusExpired, NewToken: token}, nil
	}
	if err != nil {
		return Result{}, unavailable("load csrf token", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1 {
		return Result{Status: StatusOK}, nil
	}

	if err := g.store.Delete(ctx, Key(subjectID)); err != nil {
		return Result{}, unavailable("delete csrf token", err)
	}
	token, err := g.Issue(ctx, subjectID)
	if err != nil {
		return Result{}, err
	}
	g.logger.WarnContext(ctx, "invalid csrf token detected, possible tampering",
		"user_id", subjectID,
	)
	g.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventCSRFInvalid, subjectID, "presented csrf token does not match"))
	return Result{Status: StatusInvalid, NewToken: token}, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
