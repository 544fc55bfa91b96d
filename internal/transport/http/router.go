package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authgate/internal/auth/csrf"
	"authgate/pkg/platform/httputil"
	authmw "authgate/pkg/platform/middleware/auth"
	"authgate/pkg/platform/middleware/metadata"
	request "authgate/pkg/platform/middleware/request"
	"authgate/pkg/platform/middleware/requesttime"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Handler     *Handler
	Validator   authmw.JWTValidator
	CSRF        csrf.Verifier
	Health      HealthChecker
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
	CORSOrigins []string
	Development bool
}

// NewRouter builds the chi router:
//
//	/healthz, /metrics
//	/api/auth/*            public, logout with optional bearer
//	/api/users/register    public
//	/api/users/me          access token, CSRF on unsafe methods
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recover(deps.Logger))
	r.Use(request.Logger(deps.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(cors.Handler(corsOptions(deps.CORSOrigins, deps.Development)))

	r.Get("/healthz", healthHandler(deps.Health, deps.Logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := authmw.RequireAuth(deps.Validator, deps.Logger)
	csrfGuard := csrf.Middleware(deps.CSRF, deps.Logger)
	protect := func(next http.Handler) http.Handler {
		return requireAuth(csrfGuard(next))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			deps.Handler.RegisterAuth(r, authmw.OptionalAuth(deps.Validator, deps.Logger))
		})
		r.Route("/users", func(r chi.Router) {
			deps.Handler.RegisterUsers(r, protect)
		})
	})
	return r
}

// corsOptions allows any origin in development. Elsewhere only the configured
// origins may call with credentials, which the refresh cookie needs.
func corsOptions(origins []string, development bool) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", csrf.HeaderName, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if development {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return opts
}

func healthHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := checker.Health(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
