package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"authgate/internal/auth/identity"
	"authgate/internal/auth/models"
	"authgate/internal/user"
	dErrors "authgate/pkg/domain-errors"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

const (
	methodPassword = "password"
	methodGoogle   = "google"
)

// Login authenticates with email and password. Unknown email, wrong password
// and provider-only accounts all produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (result *models.LoginResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.Login", attribute.String("auth.method", methodPassword))
	defer func() {
		recordError(span, err)
		span.End()
	}()

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.loginFailed(ctx, methodPassword, email, "unknown email")
		}
		return nil, storeError(err, "failed to load user")
	}
	if !u.HasPassword() {
		return nil, s.loginFailed(ctx, methodPassword, email, "account has no password")
	}
	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !ok {
		return nil, s.loginFailed(ctx, methodPassword, email, "wrong password")
	}

	return s.loginSucceeded(ctx, methodPassword, u)
}

// LoginWithProvider signs in with a third-party identity assertion.
func (s *Service) LoginWithProvider(ctx context.Context, a identity.Assertion) (result *models.LoginResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.LoginWithProvider", attribute.String("auth.method", methodGoogle))
	defer func() {
		recordError(span, err)
		span.End()
	}()

	if s.identity == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "identity provider sign-in is not configured")
	}
	u, err := s.identity.Reconcile(ctx, a)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAssertionReplayed):
			s.metrics.IncrementLogin(methodGoogle, "replayed")
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "identity assertion already used").
				WithReason(models.ReasonAssertionReplayed)
		case errors.Is(err, identity.ErrInvalidAssertion):
			s.logger.InfoContext(ctx, "identity assertion rejected", "error", err)
			s.metrics.IncrementLogin(methodGoogle, "failure")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid identity assertion").
				WithReason(models.ReasonInvalidAssertion)
		default:
			return nil, storeError(err, "failed to reconcile identity")
		}
	}

	return s.loginSucceeded(ctx, methodGoogle, u)
}

func (s *Service) loginSucceeded(ctx context.Context, method string, u *user.User) (*models.LoginResult, error) {
	result, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementLogin(method, "success")
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventLoginSucceeded, u.ID.String(), method))
	return result, nil
}

func (s *Service) loginFailed(ctx context.Context, method, email, why string) error {
	s.logger.InfoContext(ctx, "login failed", "method", method, "cause", why)
	s.metrics.IncrementLogin(method, "failure")
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventLoginFailed, user.NormalizeEmail(email), why))
	return unauthorized("invalid email or password", models.ReasonInvalidCredentials)
}
