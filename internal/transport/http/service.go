package httptransport

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuthService HealthChecker

import (
	"context"

	"authgate/internal/auth/identity"
	"authgate/internal/auth/models"
	"authgate/internal/user"
)

// AuthService is the session orchestrator as seen by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	LoginWithProvider(ctx context.Context, a identity.Assertion) (*models.LoginResult, error)
	Refresh(ctx context.Context, token string) (*models.RefreshResult, error)
	Logout(ctx context.Context, subjectID string)
	SubjectFromRefresh(token string) (string, bool)
	Register(ctx context.Context, req models.RegisterRequest) (*user.User, error)
	Me(ctx context.Context, subjectID string) (*user.User, error)
	UpdateProfile(ctx context.Context, subjectID string, req models.UpdateProfileRequest) (*user.User, error)
}

type HealthChecker interface {
	Health(ctx context.Context) error
}
