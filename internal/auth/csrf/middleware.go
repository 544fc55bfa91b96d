package csrf

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
	request "authgate/pkg/platform/middleware/request"
	"authgate/pkg/requestcontext"
)

// HeaderName is the request header carrying the anti-forgery token.
const HeaderName = "X-CSRF-Token"

// Machine-readable reasons on 403 responses.
const (
	ReasonMissing = "csrf_missing"
	ReasonExpired = "csrf_expired"
	ReasonInvalid = "csrf_invalid"
)

// DetailToken is the error detail key carrying a reissued token.
const DetailToken = "csrfToken"

// Verifier is the guard operation the middleware needs.
type Verifier interface {
	Verify(ctx context.Context, subjectID, presented string) (Result, error)
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	exemptPrefixes []string
}

// WithExemptPrefixes replaces the path prefixes that skip verification.
// A prefix matches whole path segments only.
func WithExemptPrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.exemptPrefixes = prefixes
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Middleware enforces the anti-forgery token on state-changing requests. It
// must run after authentication: the token is bound to the caller's subject.
// Auth endpoints are exempt because the caller has no token before login.
func Middleware(verifier Verifier, logger *slog.Logger, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{exemptPrefixes: []string{"/api/auth"}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || cfg.exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if userID.IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			result, err := verifier.Verify(ctx, userID.String(), r.Header.Get(HeaderName))
			if err != nil {
				logger.ErrorContext(ctx, "csrf verification failed",
					"error", err,
					"user_id", userID.String(),
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify csrf token"))
				return
			}
			if result.Status != StatusOK {
				httputil.WriteError(w, rejection(result))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c middlewareConfig) exempt(path string) bool {
	for _, prefix := range c.exemptPrefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func rejection(result Result) *dErrors.Error {
	var err *dErrors.Error
	switch result.Status {
	case StatusMissing:
		err = dErrors.New(dErrors.CodeForbidden, "Missing CSRF token").WithReason(ReasonMissing)
	case StatusExpired:
		err = dErrors.New(dErrors.CodeForbidden, "Expired CSRF token, new one issued").WithReason(ReasonExpired)
	default:
		err = dErrors.New(dErrors.CodeForbidden, "Invalid CSRF token detected").WithReason(ReasonInvalid)
	}
	if result.NewToken != "" {
		err = err.WithDetail(DetailToken, result.NewToken)
	}
	return err
}
