package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authgate/internal/auth/identity"
	"authgate/internal/auth/models"
	"authgate/internal/transport/http/mocks"
	"authgate/internal/user"
	id "authgate/pkg/domain"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	auth    *mocks.MockAuthService
	handler *Handler
	router  chi.Router
	user    *user.User
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func passthrough(next http.Handler) http.Handler { return next }

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.auth = mocks.NewMockAuthService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = New(s.auth, logger, Config{RefreshTTL: time.Hour})

	s.router = chi.NewRouter()
	s.router.Route("/api/auth", func(r chi.Router) { s.handler.RegisterAuth(r, passthrough) })
	s.router.Route("/api/users", func(r chi.Router) { s.handler.RegisterUsers(r, passthrough) })

	s.user = &user.User{ID: id.NewUserID(), Email: "ada@example.com", GivenName: "Ada", FamilyName: "Lovelace", PasswordHash: "hash"}
}

func (s *HandlerSuite) loginResult() *models.LoginResult {
	return &models.LoginResult{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		RefreshTTL:   time.Hour,
		CSRFToken:    "csrf-1",
		User:         s.user,
	}
}

func (s *HandlerSuite) TestLogin() {
	s.T().Run("sets refresh cookie and returns tokens", func(t *testing.T) {
		s.auth.EXPECT().Login(gomock.Any(), "ada@example.com", "Secr3t!pass").Return(s.loginResult(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "ada@example.com", "password": "Secr3t!pass"}))

		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[models.LoginResponse](t, rr)
		s.Equal("access-1", body.AccessToken)
		s.Equal("csrf-1", body.CSRFToken)
		s.Equal("Ada Lovelace", body.User.Name)
		s.NotContains(rr.Body.String(), "hash")
		s.NotContains(rr.Body.String(), "refresh-1")

		cookie := testutil.ResponseCookie(rr, RefreshCookieName)
		s.Require().NotNil(cookie)
		s.Equal("refresh-1", cookie.Value)
		s.Equal(RefreshCookiePath, cookie.Path)
		s.True(cookie.HttpOnly)
		s.True(cookie.Secure)
		s.Equal(http.SameSiteLaxMode, cookie.SameSite)
		s.Equal(3600, cookie.MaxAge)
	})

	s.T().Run("invalid credentials", func(t *testing.T) {
		s.auth.EXPECT().Login(gomock.Any(), "ada@example.com", "nope").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password").WithReason(models.ReasonInvalidCredentials))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "ada@example.com", "password": "nope"}))

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		testutil.AssertErrorReason(t, rr, models.ReasonInvalidCredentials)
		s.Nil(testutil.ResponseCookie(rr, RefreshCookieName))
	})

	s.T().Run("validation failure names the field", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "not-an-email", "password": "x"}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		s.Equal("email", testutil.UnmarshalErrorResponse(t, rr).Details["email"])
	})

	s.T().Run("malformed body", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/auth/login", "{"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestGoogleLogin() {
	s.T().Run("id token", func(t *testing.T) {
		s.auth.EXPECT().LoginWithProvider(gomock.Any(), identity.Assertion{IDToken: "raw"}).Return(s.loginResult(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/google/login",
			map[string]string{"idToken": "raw"}))
		testutil.AssertStatusOK(t, rr)
		s.NotNil(testutil.ResponseCookie(rr, RefreshCookieName))
	})

	s.T().Run("authorization code", func(t *testing.T) {
		want := identity.Assertion{Code: "c", CodeVerifier: "v", RedirectURI: "http://localhost:5173"}
		s.auth.EXPECT().LoginWithProvider(gomock.Any(), want).Return(s.loginResult(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/google/login",
			map[string]string{"code": "c", "codeVerifier": "v", "redirectUri": "http://localhost:5173"}))
		testutil.AssertStatusOK(t, rr)
	})

	s.T().Run("neither token nor code", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/google/login",
			map[string]string{}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	s.T().Run("code without verifier", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/google/login",
			map[string]string{"code": "c", "redirectUri": "http://localhost:5173"}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	s.T().Run("replayed assertion", func(t *testing.T) {
		s.auth.EXPECT().LoginWithProvider(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "identity assertion already used").WithReason(models.ReasonAssertionReplayed))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/google/login",
			map[string]string{"idToken": "raw"}))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		testutil.AssertErrorReason(t, rr, models.ReasonAssertionReplayed)
	})
}

func (s *HandlerSuite) refreshRequest(t *testing.T, token string) *http.Request {
	return withRefreshCookie(testutil.NewRequest(t, http.MethodPost, "/api/auth/refresh"), token)
}

func withRefreshCookie(req *http.Request, token string) *http.Request {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: token})
	}
	return req
}

func (s *HandlerSuite) TestRefresh() {
	s.T().Run("ok", func(t *testing.T) {
		s.auth.EXPECT().Refresh(gomock.Any(), "refresh-1").Return(&models.RefreshResult{AccessToken: "access-2"}, nil)

		rr := testutil.DoRequest(s.router, s.refreshRequest(t, "refresh-1"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "accessToken", "access-2")
		s.Nil(testutil.ResponseCookie(rr, RefreshCookieName), "refresh token is not rotated")
	})

	s.T().Run("missing cookie", func(t *testing.T) {
		s.auth.EXPECT().Refresh(gomock.Any(), "").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "refresh token missing").WithReason(models.ReasonRefreshMissing))

		rr := testutil.DoRequest(s.router, s.refreshRequest(t, ""))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		testutil.AssertErrorReason(t, rr, models.ReasonRefreshMissing)
	})

	s.T().Run("reuse replaces cookie and denies", func(t *testing.T) {
		s.auth.EXPECT().Refresh(gomock.Any(), "stale").Return(nil,
			dErrors.New(dErrors.CodeUnauthorized, "refresh token reuse detected").
				WithReason(models.ReasonRefreshReuse).
				WithDetail(models.DetailRefreshToken, "rotated-3"))

		rr := testutil.DoRequest(s.router, s.refreshRequest(t, "stale"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		testutil.AssertErrorReason(t, rr, models.ReasonRefreshReuse)
		errResp := testutil.UnmarshalErrorResponse(t, rr)
		s.Equal("rotated-3", errResp.Details[models.DetailRefreshToken], "rotated token is returned in the body")

		cookie := testutil.ResponseCookie(rr, RefreshCookieName)
		s.Require().NotNil(cookie)
		s.Equal("rotated-3", cookie.Value)
		s.Equal(3600, cookie.MaxAge)
	})

	s.T().Run("store failure hides cause", func(t *testing.T) {
		s.auth.EXPECT().Refresh(gomock.Any(), "refresh-1").
			Return(nil, dErrors.Wrap(io.ErrUnexpectedEOF, dErrors.CodeInternal, "failed to verify refresh token").WithReason(models.ReasonStoreUnavailable))

		rr := testutil.DoRequest(s.router, s.refreshRequest(t, "refresh-1"))
		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
		testutil.AssertErrorReason(t, rr, models.ReasonStoreUnavailable)
		s.NotContains(rr.Body.String(), "unexpected EOF")
	})
}

func (s *HandlerSuite) TestLogout() {
	s.T().Run("bearer subject wins", func(t *testing.T) {
		s.auth.EXPECT().Logout(gomock.Any(), s.user.ID.String())

		req := withRefreshCookie(testutil.NewRequest(t, http.MethodPost, "/api/auth/logout"), "refresh-1")
		req = testutil.WithUserID(req, s.user.ID.String())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(t, rr)
		cookie := testutil.ResponseCookie(rr, RefreshCookieName)
		s.Require().NotNil(cookie)
		s.Empty(cookie.Value)
		s.Equal(-1, cookie.MaxAge)
		s.Equal(RefreshCookiePath, cookie.Path)
	})

	s.T().Run("falls back to refresh cookie", func(t *testing.T) {
		s.auth.EXPECT().SubjectFromRefresh("refresh-1").Return("subject-from-cookie", true)
		s.auth.EXPECT().Logout(gomock.Any(), "subject-from-cookie")

		req := withRefreshCookie(testutil.NewRequest(t, http.MethodPost, "/api/auth/logout"), "refresh-1")
		testutil.AssertStatusOK(t, testutil.DoRequest(s.router, req))
	})

	s.T().Run("nothing identifies the caller", func(t *testing.T) {
		s.auth.EXPECT().SubjectFromRefresh("").Return("", false)
		s.auth.EXPECT().Logout(gomock.Any(), "")

		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodPost, "/api/auth/logout"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "message")
	})
}

func (s *HandlerSuite) TestRegister() {
	req := models.RegisterRequest{Email: "ada@example.com", Password: "Secr3t!pass", GivenName: "Ada", FamilyName: "Lovelace"}

	s.T().Run("created", func(t *testing.T) {
		s.auth.EXPECT().Register(gomock.Any(), req).Return(s.user, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/users/register", req))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "email", "ada@example.com")
		s.NotContains(rr.Body.String(), "hash")
	})

	s.T().Run("duplicate email", func(t *testing.T) {
		s.auth.EXPECT().Register(gomock.Any(), req).
			Return(nil, dErrors.New(dErrors.CodeConflict, "email already registered").WithReason(models.ReasonEmailTaken))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/users/register", req))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func (s *HandlerSuite) TestMe() {
	s.T().Run("requires subject", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/api/users/me"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	s.T().Run("returns summary", func(t *testing.T) {
		s.auth.EXPECT().Me(gomock.Any(), s.user.ID.String()).Return(s.user, nil)

		req := testutil.WithUserID(testutil.NewRequest(t, http.MethodGet, "/api/users/me"), s.user.ID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "name", "Ada Lovelace")
	})

	s.T().Run("update", func(t *testing.T) {
		update := models.UpdateProfileRequest{GivenName: "Augusta", FamilyName: "King"}
		updated := *s.user
		updated.GivenName, updated.FamilyName = "Augusta", "King"
		s.auth.EXPECT().UpdateProfile(gomock.Any(), s.user.ID.String(), update).Return(&updated, nil)

		req := testutil.WithUserID(testutil.NewJSONRequest(t, http.MethodPatch, "/api/users/me", update), s.user.ID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "name", "Augusta King")
	})
}
