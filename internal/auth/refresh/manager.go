// Package refresh owns the server-side refresh token record. Only this
// package writes keys under the "refresh:" prefix.
package refresh

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authgate/internal/cache"
	jwttoken "authgate/internal/jwt_token"
	"authgate/internal/platform/metrics"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

const keyPrefix = "refresh:"

// Key returns the store key holding a subject's current refresh token.
func Key(subjectID string) string {
	return keyPrefix + subjectID
}

// Signer is the subset of the credential signer the manager needs.
type Signer interface {
	SignRefresh(subjectID string, ttl time.Duration) (string, error)
	VerifyRefresh(token string) (*jwttoken.RefreshClaims, error)
	DecodeRefreshUnverified(token string) (string, bool)
}

// Manager issues, verifies and revokes refresh tokens. At most one refresh
// token per subject is valid at any time: the one stored at Key(subject).
//
// Verification never rotates a valid token. A superseded token triggers
// rotation because the legitimate holder and an attacker cannot both be
// holding the current one.
type Manager struct {
	store   cache.Store
	signer  Signer
	ttl     time.Duration
	logger  *slog.Logger
	auditor audit.SecurityAuditor
	metrics *metrics.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithAuditor(auditor audit.SecurityAuditor) Option {
	return func(m *Manager) {
		if auditor != nil {
			m.auditor = auditor
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

func NewManager(store cache.Store, signer Signer, ttl time.Duration, opts ...Option) (*Manager, error) {
	if store == nil || signer == nil {
		return nil, errors.New("refresh manager: store and signer are required")
	}
	if ttl <= 0 {
		return nil, errors.New("refresh manager: ttl must be positive")
	}
	m := &Manager{
		store:   store,
		signer:  signer,
		ttl:     ttl,
		logger:  slog.Default(),
		auditor: audit.NopAuditor{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// TTL returns the refresh token lifetime, which is also the cookie lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a refresh token for subject and makes it the subject's only
// valid one, overwriting any previous record.
func (m *Manager) Issue(ctx context.Context, subjectID string) (string, error) {
	token, err := m.signer.SignRefresh(subjectID, m.ttl)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	if err := m.store.Set(ctx, Key(subjectID), token, m.ttl); err != nil {
		return "", unavailable("store refresh token", err)
	}
	return token, nil
}

// Verify classifies a presented refresh token. See Status for the outcomes.
// An error is returned only when the store could not be consulted or updated;
// such errors wrap sentinel.ErrUnavailable.
func (m *Manager) Verify(ctx context.Context, token string) (Result, error) {
	result, err := m.verify(ctx, token)
	if err == nil {
		m.metrics.IncrementRefreshVerification(result.Status.String())
	}
	return result, err
}

func (m *Manager) verify(ctx context.Context, token string) (Result, error) {
	claims, err := m.signer.VerifyRefresh(token)
	if err != nil {
		if !errors.Is(err, jwttoken.ErrExpired) {
			return Result{Status: StatusInvalid}, nil
		}
		return m.expire(ctx, token)
	}

	subjectID := claims.Subject
	stored, err := m.store.Get(ctx, Key(subjectID))
	if errors.Is(err, sentinel.ErrNotFound) {
		return Result{Status: StatusLoggedOut, SubjectID: subjectID}, nil
	}
	if err != nil {
		return Result{}, unavailable("load refresh token", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return m.rotateSuspect(ctx, subjectID)
	}
	return Result{Status: StatusOK, SubjectID: subjectID}, nil
}

// expire removes the record of the subject named by an expired token so the
// session cannot outlive it.
func (m *Manager) expire(ctx context.Context, token string) (Result, error) {
	subjectID, ok := m.signer.DecodeRefreshUnverified(token)
	if !ok {
		return Result{Status: StatusExpired}, nil
	}
	if err := m.store.Delete(ctx, Key(subjectID)); err != nil {
		return Result{}, unavailable("delete expired refresh token", err)
	}
	m.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventRefreshExpired, subjectID, "refresh token expired"))
	return Result{Status: StatusExpired, SubjectID: subjectID}, nil
}

// rotateSuspect handles an authentic but superseded token: the stored record
// is discarded and a fresh token issued. The read-compare-rotate sequence is
// not atomic; two concurrent callers may both rotate and the later write wins.
func (m *Manager) rotateSuspect(ctx context.Context, subjectID string) (Result, error) {
	m.logger.WarnContext(ctx, "refresh token reuse detected",
		"user_id", subjectID,
	)
	m.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventRefreshReuseDetected, subjectID, "presented refresh token is not the current one"))

	if err := m.store.Delete(ctx, Key(subjectID)); err != nil {
		return Result{}, unavailable("delete superseded refresh token", err)
	}
	newToken, err := m.Issue(ctx, subjectID)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: StatusTamperSuspected, SubjectID: subjectID, NewToken: newToken}, nil
}

// Revoke removes the subject's record. Revoking an absent record succeeds.
func (m *Manager) Revoke(ctx context.Context, subjectID string) error {
	if err := m.store.Delete(ctx, Key(subjectID)); err != nil {
		return unavailable("revoke refresh token", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
