package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authgate/internal/cache"
	"authgate/internal/platform/metrics"
	"authgate/internal/user"
	id "authgate/pkg/domain"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

const (
	keyPrefix = "idtoken:"

	// defaultMarkerTTL applies when an assertion carries no expiry.
	defaultMarkerTTL = time.Hour
)

// Key returns the one-time marker key for an assertion identifier.
func Key(uniqueID string) string {
	return keyPrefix + uniqueID
}

// Service turns verified assertions into local users.
type Service struct {
	store     cache.Store
	users     user.Repository
	verifier  Verifier
	exchanger CodeExchanger
	now       func() time.Time
	logger    *slog.Logger
	auditor   audit.SecurityAuditor
	metrics   *metrics.Metrics
}

type Option func(*Service)

// WithCodeExchanger enables authorization-code assertions.
func WithCodeExchanger(e CodeExchanger) Option {
	return func(s *Service) {
		s.exchanger = e
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditor(auditor audit.SecurityAuditor) Option {
	return func(s *Service) {
		if auditor != nil {
			s.auditor = auditor
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store cache.Store, users user.Repository, verifier Verifier, opts ...Option) (*Service, error) {
	if store == nil || users == nil || verifier == nil {
		return nil, errors.New("identity service: store, users and verifier are required")
	}
	s := &Service{
		store:    store,
		users:    users,
		verifier: verifier,
		now:      time.Now,
		logger:   slog.Default(),
		auditor:  audit.NopAuditor{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Reconcile verifies the assertion, consumes it and returns the matching
// local user, linking or creating one as needed.
func (s *Service) Reconcile(ctx context.Context, a Assertion) (*user.User, error) {
	raw, err := s.rawIDToken(ctx, a)
	if err != nil {
		s.metrics.IncrementAssertionOutcome("invalid")
		return nil, err
	}

	verified, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, err
		}
		s.metrics.IncrementAssertionOutcome("invalid")
		return nil, invalid(err)
	}
	if verified.Email == "" || verified.ExternalID == "" {
		s.metrics.IncrementAssertionOutcome("invalid")
		return nil, fmt.Errorf("%w: missing email or subject", ErrInvalidAssertion)
	}

	uniqueID := verified.UniqueID
	if uniqueID == "" {
		uniqueID = raw
	}
	if err := s.consume(ctx, uniqueID, verified); err != nil {
		return nil, err
	}

	u, err := s.findOrCreate(ctx, verified)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementAssertionOutcome("accepted")
	return u, nil
}

func (s *Service) rawIDToken(ctx context.Context, a Assertion) (string, error) {
	if a.IDToken != "" {
		return a.IDToken, nil
	}
	if a.Code == "" {
		return "", fmt.Errorf("%w: no id token or authorization code", ErrInvalidAssertion)
	}
	if s.exchanger == nil {
		return "", fmt.Errorf("%w: authorization code flow is not configured", ErrInvalidAssertion)
	}
	raw, err := s.exchanger.Exchange(ctx, a.Code, a.CodeVerifier, a.RedirectURI)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return "", err
		}
		return "", invalid(err)
	}
	return raw, nil
}

// consume records the assertion as used until it would have expired anyway.
func (s *Service) consume(ctx context.Context, uniqueID string, v *VerifiedAssertion) error {
	key := Key(uniqueID)
	_, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.IncrementAssertionOutcome("replayed")
		s.logger.WarnContext(ctx, "identity assertion replayed",
			"external_id", v.ExternalID,
		)
		s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventAssertionReplayed, v.ExternalID, "assertion already used"))
		return ErrAssertionReplayed
	case !errors.Is(err, sentinel.ErrNotFound):
		return unavailable("load assertion marker", err)
	}

	if err := s.store.Set(ctx, key, "1", s.markerTTL(v.Expiry)); err != nil {
		return unavailable("store assertion marker", err)
	}
	return nil
}

func (s *Service) markerTTL(expiry time.Time) time.Duration {
	if expiry.IsZero() {
		return defaultMarkerTTL
	}
	return max(expiry.Sub(s.now()), 0)
}

func (s *Service) findOrCreate(ctx context.Context, v *VerifiedAssertion) (*user.User, error) {
	u, err := s.users.FindByExternalID(ctx, v.ExternalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, unavailable("find user by external id", err)
	}

	u, err = s.users.FindByEmail(ctx, v.Email)
	switch {
	case err == nil:
		return s.link(ctx, u, v)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, unavailable("find user by email", err)
	}

	u = &user.User{
		ID:         id.NewUserID(),
		Email:      v.Email,
		GivenName:  v.GivenName,
		FamilyName: v.FamilyName,
		ExternalID: v.ExternalID,
		CreatedAt:  s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent sign-in for the same email.
			existing, findErr := s.users.FindByEmail(ctx, v.Email)
			if findErr == nil {
				return s.link(ctx, existing, v)
			}
		}
		return nil, unavailable("create user", err)
	}
	s.metrics.IncrementUsersCreated()
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventUserCreated, u.ID.String(), "created from identity provider"))
	return u, nil
}

func (s *Service) link(ctx context.Context, u *user.User, v *VerifiedAssertion) (*user.User, error) {
	if u.ExternalID == v.ExternalID {
		return u, nil
	}
	if u.ExternalID != "" {
		s.logger.WarnContext(ctx, "account already linked to a different external identity",
			"user_id", u.ID.String(),
		)
		return nil, fmt.Errorf("%w: account linked to another identity", ErrInvalidAssertion)
	}
	if err := s.users.LinkExternalID(ctx, u.ID, v.ExternalID); err != nil {
		return nil, unavailable("link external id", err)
	}
	u.ExternalID = v.ExternalID
	s.logger.InfoContext(ctx, "linked external identity to existing account",
		"user_id", u.ID.String(),
	)
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventAccountLinked, u.ID.String(), "matched by email"))
	return u, nil
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidAssertion) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidAssertion, err)
}

func unavailable(op string, err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
