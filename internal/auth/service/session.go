package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"authgate/internal/auth/models"
	"authgate/internal/auth/refresh"
	id "authgate/pkg/domain"
	dErrors "authgate/pkg/domain-errors"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is not rotated. A superseded token is answered with
// refresh_reuse_detected; the error's refreshToken detail carries the
// replacement that the transport hands back in the cookie.
func (s *Service) Refresh(ctx context.Context, token string) (result *models.RefreshResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.Refresh")
	defer func() {
		recordError(span, err)
		span.End()
	}()

	if token == "" {
		return nil, unauthorized("refresh token missing", models.ReasonRefreshMissing)
	}

	verdict, err := s.refresh.Verify(ctx, token)
	if err != nil {
		return nil, storeError(err, "failed to verify refresh token")
	}
	span.SetAttributes(attribute.String("auth.refresh_status", verdict.Status.String()))

	switch verdict.Status {
	case refresh.StatusOK:
		return s.accessFor(ctx, verdict.SubjectID)
	case refresh.StatusTamperSuspected:
		return nil, unauthorized("refresh token reuse detected", models.ReasonRefreshReuse).
			WithDetail(models.DetailRefreshToken, verdict.NewToken)
	case refresh.StatusExpired:
		return nil, unauthorized("refresh token expired", models.ReasonRefreshExpired)
	case refresh.StatusLoggedOut:
		return nil, unauthorized("session has been logged out", models.ReasonRefreshLoggedOut)
	default:
		return nil, unauthorized("invalid refresh token", models.ReasonRefreshInvalid)
	}
}

func (s *Service) accessFor(ctx context.Context, subjectID string) (*models.RefreshResult, error) {
	userID, err := id.ParseUserID(subjectID)
	if err != nil {
		return nil, unauthorized("invalid refresh token", models.ReasonRefreshInvalid)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, unauthorized("user no longer exists", models.ReasonRefreshInvalid)
		}
		return nil, storeError(err, "failed to load user")
	}
	access, err := s.signer.SignAccess(subjectID, u.Email, u.FullName(), s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	return &models.RefreshResult{AccessToken: access, SubjectID: subjectID}, nil
}

// Logout revokes the subject's refresh token. It never fails: a store error
// is logged and audited, and the caller still clears the client's cookie.
func (s *Service) Logout(ctx context.Context, subjectID string) {
	ctx, span := s.startSpan(ctx, "auth.Logout")
	defer span.End()

	if subjectID == "" {
		s.logger.DebugContext(ctx, "logout without identifiable subject")
		return
	}
	if err := s.refresh.Revoke(ctx, subjectID); err != nil {
		recordError(span, err)
		s.logger.ErrorContext(ctx, "failed to revoke refresh token on logout",
			"user_id", subjectID,
			"error", err,
		)
		s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventLogoutRevokeFailed, subjectID, err.Error()))
		return
	}
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventLoggedOut, subjectID, ""))
}

// SubjectFromRefresh reads the subject of a refresh token without checking
// its signature or expiry. Only logout may rely on it.
func (s *Service) SubjectFromRefresh(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return s.signer.DecodeRefreshUnverified(token)
}
