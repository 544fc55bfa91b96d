// Package service orchestrates sign-in, session refresh and sign-out over the
// refresh manager, the anti-forgery guard and the user repository.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/auth/models"
	"authgate/internal/platform/metrics"
	"authgate/internal/user"
	dErrors "authgate/pkg/domain-errors"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

const tracerName = "authgate/internal/auth/service"

type Service struct {
	users     user.Repository
	signer    TokenSigner
	refresh   RefreshManager
	csrf      CSRFIssuer
	identity  IdentityReconciler
	hasher    PasswordHasher
	accessTTL time.Duration
	now       func() time.Time
	logger    *slog.Logger
	auditor   audit.SecurityAuditor
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

// WithIdentity enables third-party provider sign-in.
func WithIdentity(r IdentityReconciler) Option {
	return func(s *Service) {
		s.identity = r
	}
}

func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
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

func New(
	users user.Repository,
	signer TokenSigner,
	refresh RefreshManager,
	csrf CSRFIssuer,
	accessTTL time.Duration,
	opts ...Option,
) (*Service, error) {
	if users == nil || signer == nil || refresh == nil || csrf == nil {
		return nil, errors.New("auth service: users, signer, refresh manager and csrf issuer are required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("auth service: access ttl must be positive")
	}
	s := &Service{
		users:     users,
		signer:    signer,
		refresh:   refresh,
		csrf:      csrf,
		hasher:    user.NewPasswordHasher(bcrypt.DefaultCost),
		accessTTL: accessTTL,
		now:       time.Now,
		logger:    slog.Default(),
		auditor:   audit.NopAuditor{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// issueSession mints the three session credentials for u.
func (s *Service) issueSession(ctx context.Context, u *user.User) (*models.LoginResult, error) {
	subjectID := u.ID.String()
	access, err := s.signer.SignAccess(subjectID, u.Email, u.FullName(), s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	refreshToken, err := s.refresh.Issue(ctx, subjectID)
	if err != nil {
		return nil, storeError(err, "failed to issue refresh token")
	}
	csrfToken, err := s.csrf.Issue(ctx, subjectID)
	if err != nil {
		return nil, storeError(err, "failed to issue csrf token")
	}
	return &models.LoginResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		RefreshTTL:   s.refresh.TTL(),
		CSRFToken:    csrfToken,
		User:         u,
	}, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func unauthorized(msg, reason string) *dErrors.Error {
	return dErrors.New(dErrors.CodeUnauthorized, msg).WithReason(reason)
}

// storeError keeps "the store could not answer" distinct from every
// authentication outcome so clients retry instead of signing in again.
func storeError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeInternal, msg).WithReason(models.ReasonStoreUnavailable)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
