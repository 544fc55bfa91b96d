package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/auth/csrf"
	"authgate/internal/auth/refresh"
	"authgate/internal/auth/service"
	"authgate/internal/cache"
	jwttoken "authgate/internal/jwt_token"
	"authgate/internal/platform/metrics"
	httptransport "authgate/internal/transport/http"
	"authgate/internal/user"
	"authgate/pkg/client"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type healthy struct{}

func (healthy) Health(context.Context) error { return nil }

// SessionSuite runs the client against the fully wired server with a shared
// fake clock, so token and csrf expiry can be forced without sleeping.
type SessionSuite struct {
	suite.Suite
	clock     *clock
	server    *httptest.Server
	refreshes atomic.Int32
	session   *client.Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

const (
	accessTTL = 15 * time.Minute
	csrfTTL   = 10 * time.Minute
	password  = "Str0ng!pass"
)

func (s *SessionSuite) SetupTest() {
	s.clock = &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s.refreshes.Store(0)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cache.NewInMemoryStore(cache.WithClock(s.clock.Now))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	signer, err := jwttoken.NewService("access-secret-0123", "refresh-secret-0123", jwttoken.WithClock(s.clock.Now))
	s.Require().NoError(err)
	manager, err := refresh.NewManager(store, signer, time.Hour, refresh.WithMetrics(m))
	s.Require().NoError(err)
	guard := csrf.NewGuard(store, csrf.WithTTL(csrfTTL), csrf.WithLogger(logger))
	svc, err := service.New(user.New(), signer, manager, guard, accessTTL,
		service.WithPasswordHasher(user.NewPasswordHasher(bcrypt.MinCost)),
		service.WithClock(s.clock.Now),
		service.WithLogger(logger),
	)
	s.Require().NoError(err)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Handler:     httptransport.New(svc, logger, httptransport.Config{RefreshTTL: manager.TTL(), Development: true}),
		Validator:   jwttoken.NewJWTServiceAdapter(signer),
		CSRF:        guard,
		Health:      healthy{},
		Gatherer:    reg,
		Logger:      logger,
		Development: true,
	})
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == httptransport.RefreshCookiePath {
			s.refreshes.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	s.T().Cleanup(s.server.Close)

	s.session, err = client.New(s.server.URL, client.WithLogger(logger))
	s.Require().NoError(err)
}

func (s *SessionSuite) registerAndLogin(email string) *client.User {
	ctx := context.Background()
	_, err := s.session.Register(ctx, client.Registration{
		Email: email, Password: password, GivenName: "Ada", FamilyName: "Lovelace",
	})
	s.Require().NoError(err)
	u, err := s.session.Login(ctx, email, password)
	s.Require().NoError(err)
	return u
}

func (s *SessionSuite) TestNew() {
	_, err := client.New("")
	s.Require().Error(err)
}

func (s *SessionSuite) TestLoginLifecycle() {
	ctx := context.Background()

	s.T().Run("calls before login fail locally", func(t *testing.T) {
		_, err := s.session.Me(ctx)
		s.ErrorIs(err, client.ErrNotLoggedIn)
	})

	u := s.registerAndLogin("ada@example.com")
	s.Equal("ada@example.com", u.Email)
	s.NotEmpty(s.session.AccessToken())
	s.NotEmpty(s.session.CSRFToken())

	s.T().Run("profile read and guarded update", func(t *testing.T) {
		me, err := s.session.Me(ctx)
		s.Require().NoError(err)
		s.Equal(u.ID, me.ID)

		updated, err := s.session.UpdateProfile(ctx, "Augusta", "King")
		s.Require().NoError(err)
		s.Equal("Augusta King", updated.Name)
	})

	s.T().Run("logout clears local state and the cookie", func(t *testing.T) {
		s.Require().NoError(s.session.Logout(ctx))
		s.Empty(s.session.AccessToken())
		s.Empty(s.session.CSRFToken())

		err := s.session.Refresh(ctx)
		s.Equal(http.StatusUnauthorized, client.StatusOf(err))
		s.Equal("refresh_missing", client.ReasonOf(err))
	})
}

func (s *SessionSuite) TestWrongPassword() {
	s.registerAndLogin("bob@example.com")
	_, err := s.session.Login(context.Background(), "bob@example.com", "Wr0ng!pass")
	s.Equal(http.StatusUnauthorized, client.StatusOf(err))
	s.Equal("invalid_credentials", client.ReasonOf(err))
}

func (s *SessionSuite) TestRetriesWithReissuedCSRFToken() {
	s.registerAndLogin("carol@example.com")
	before := s.session.CSRFToken()

	s.clock.Advance(csrfTTL + time.Minute)

	updated, err := s.session.UpdateProfile(context.Background(), "Caroline", "Herschel")
	s.Require().NoError(err)
	s.Equal("Caroline", updated.GivenName)
	s.NotEqual(before, s.session.CSRFToken())
	s.Equal(int32(0), s.refreshes.Load())
}

func (s *SessionSuite) TestRefreshesExpiredAccessToken() {
	s.registerAndLogin("dora@example.com")
	before := s.session.AccessToken()

	s.clock.Advance(accessTTL + time.Minute)

	me, err := s.session.Me(context.Background())
	s.Require().NoError(err)
	s.Equal("dora@example.com", me.Email)
	s.NotEqual(before, s.session.AccessToken())
	s.Equal(int32(1), s.refreshes.Load())
}

func (s *SessionSuite) TestExpiredAccessAndCSRFRecoverInOneCall() {
	s.registerAndLogin("erin@example.com")

	s.clock.Advance(accessTTL + time.Minute)

	_, err := s.session.UpdateProfile(context.Background(), "Erin", "Noether")
	s.Require().NoError(err)
	s.Equal(int32(1), s.refreshes.Load())
}

func (s *SessionSuite) TestConcurrentCallsShareOneRefresh() {
	s.registerAndLogin("fay@example.com")
	s.clock.Advance(accessTTL + time.Minute)

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.session.Me(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}
	// Callers that arrive after the shared refresh finished see the new
	// token already, so the count depends on scheduling but never exceeds
	// one per caller.
	s.GreaterOrEqual(s.refreshes.Load(), int32(1))
	s.LessOrEqual(s.refreshes.Load(), int32(5))
}

func (s *SessionSuite) TestExpiredRefreshEndsSession() {
	s.registerAndLogin("gia@example.com")
	s.clock.Advance(2 * time.Hour)

	_, err := s.session.Me(context.Background())
	s.Equal(http.StatusUnauthorized, client.StatusOf(err))
	s.Equal("refresh_expired", client.ReasonOf(err))
	s.Empty(s.session.AccessToken())
}
