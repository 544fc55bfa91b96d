package service

import (
	"context"
	"errors"

	"authgate/internal/auth/models"
	"authgate/internal/user"
	id "authgate/pkg/domain"
	dErrors "authgate/pkg/domain-errors"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/sentinel"
)

// Register creates a password account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (u *user.User, err error) {
	ctx, span := s.startSpan(ctx, "auth.Register")
	defer func() {
		recordError(span, err)
		span.End()
	}()

	if err := user.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	_, err = s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, emailTaken()
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, storeError(err, "failed to load user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	u = &user.User{
		ID:           id.NewUserID(),
		Email:        user.NormalizeEmail(req.Email),
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, emailTaken()
		}
		return nil, storeError(err, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	s.auditor.Emit(ctx, audit.NewSecurityEvent(ctx, audit.EventUserCreated, u.ID.String(), "registered with password"))
	return u, nil
}

// Me returns the authenticated caller's account.
func (s *Service) Me(ctx context.Context, subjectID string) (*user.User, error) {
	userID, err := id.ParseUserID(subjectID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid subject")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, storeError(err, "failed to load user")
	}
	return u, nil
}

// UpdateProfile changes the caller's display name.
func (s *Service) UpdateProfile(ctx context.Context, subjectID string, req models.UpdateProfileRequest) (*user.User, error) {
	userID, err := id.ParseUserID(subjectID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid subject")
	}
	if err := s.users.UpdateName(ctx, userID, req.GivenName, req.FamilyName); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, storeError(err, "failed to update user")
	}
	return s.Me(ctx, subjectID)
}

func emailTaken() error {
	return dErrors.New(dErrors.CodeConflict, "email already registered").WithReason(models.ReasonEmailTaken)
}
