package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
	"authgate/pkg/requestcontext"
)

// RegisterUsers mounts /users routes. protect wraps the routes that need an
// access token and, for unsafe methods, the anti-forgery token.
func (h *Handler) RegisterUsers(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Post("/register", h.HandleRegister)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/me", h.HandleMe)
		r.Patch("/me", h.HandleUpdateMe)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAndValidate[models.RegisterRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.auth.Register(r.Context(), *req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "user registered", "user_id", u.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, u.Summary())
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	u, err := h.auth.Me(ctx, userID.String())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u.Summary())
}

func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, err := decodeAndValidate[models.UpdateProfileRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.auth.UpdateProfile(ctx, userID.String(), *req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u.Summary())
}
