package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"authgate/internal/auth/identity"
	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
	request "authgate/pkg/platform/middleware/request"
	"authgate/pkg/requestcontext"
)

// Config holds the transport settings derived from the environment.
type Config struct {
	// RefreshTTL is the refresh cookie lifetime.
	RefreshTTL time.Duration
	// Development drops the Secure cookie flag and includes internal error
	// causes in responses.
	Development bool
}

// Handler serves the auth and user endpoints.
type Handler struct {
	auth       AuthService
	logger     *slog.Logger
	refreshTTL time.Duration
	secure     bool
	verbose    bool
}

func New(auth AuthService, logger *slog.Logger, cfg Config) *Handler {
	return &Handler{
		auth:       auth,
		logger:     logger,
		refreshTTL: cfg.RefreshTTL,
		secure:     !cfg.Development,
		verbose:    cfg.Development,
	}
}

// RegisterAuth mounts the /auth routes. logout must sit behind optional
// authentication so the bearer subject is available.
func (h *Handler) RegisterAuth(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.Post("/login", h.HandleLogin)
	r.Post("/google/login", h.HandleGoogleLogin)
	r.Post("/refresh", h.HandleRefresh)
	r.With(optionalAuth).Post("/logout", h.HandleLogout)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAndValidate[models.LoginRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeLogin(w, result)
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAndValidate[models.GoogleLoginRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.auth.LoginWithProvider(r.Context(), identity.Assertion{
		IDToken:      req.IDToken,
		Code:         req.Code,
		CodeVerifier: req.CodeVerifier,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeLogin(w, result)
}

func (h *Handler) writeLogin(w http.ResponseWriter, result *models.LoginResult) {
	setRefreshCookie(w, result.RefreshToken, result.RefreshTTL, h.secure)
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: result.AccessToken,
		CSRFToken:   result.CSRFToken,
		User:        result.User.Summary(),
	})
}

// HandleRefresh answers with a new access token. On reuse detection the
// request is still denied, but the rotated token is set as the cookie and
// returned in details.refreshToken so the client can repair its session.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.auth.Refresh(ctx, refreshCookie(r))
	if err != nil {
		if rotated, ok := dErrors.DetailOf(err, models.DetailRefreshToken); ok {
			h.logger.WarnContext(ctx, "refresh token reuse detected, cookie rotated",
				"request_id", request.GetRequestID(ctx),
				"client_ip", requestcontext.ClientIP(ctx),
			)
			setRefreshCookie(w, rotated, h.refreshTTL, h.secure)
			h.writeError(w, r, err)
			return
		}
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RefreshResponse{AccessToken: result.AccessToken})
}

// HandleLogout always succeeds. The subject comes from a valid bearer token
// when present, else from the refresh cookie if the client sent one.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := ""
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		subjectID = userID.String()
	} else if sub, ok := h.auth.SubjectFromRefresh(refreshCookie(r)); ok {
		subjectID = sub
	}
	h.auth.Logout(ctx, subjectID)

	clearRefreshCookie(w, h.secure)
	httputil.WriteJSON(w, http.StatusOK, models.LogoutResponse{Message: "Logged out successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if status(err) >= http.StatusInternalServerError {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", request.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	}
	if h.verbose {
		httputil.WriteErrorVerbose(w, err)
		return
	}
	httputil.WriteError(w, err)
}

func status(err error) int {
	if de, ok := dErrors.As(err); ok {
		return dErrors.ToHTTPStatus(de.Code)
	}
	return http.StatusInternalServerError
}
