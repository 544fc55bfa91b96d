package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body interface{}, headers map[string]string) error
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader() http.Header
	GetAccessToken() string
	SetAccessToken(token string)
	SetCSRFToken(token string)
	SetCredentials(email, password string)
	GetCredentials() (string, string)
	RefreshCookie() string
	RememberRefreshCookie()
	RememberedRefreshCookie() string
	SendRefreshWithCookie(value string) error
}

// RegisterSteps registers session lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	// Login
	ctx.Step(`^a registered user "([^"]*)" with password "([^"]*)"$`, steps.registeredUser)
	ctx.Step(`^I log in$`, steps.logIn)
	ctx.Step(`^I log in with password "([^"]*)"$`, steps.logInWithPassword)
	ctx.Step(`^I log in as unknown user "([^"]*)"$`, steps.logInUnknown)
	ctx.Step(`^I am logged in$`, steps.loggedIn)

	// Refresh
	ctx.Step(`^I remember my refresh cookie$`, steps.rememberRefreshCookie)
	ctx.Step(`^I refresh my session$`, steps.refresh)
	ctx.Step(`^I refresh with the remembered refresh cookie$`, steps.refreshWithRemembered)
	ctx.Step(`^the refresh cookie should be scoped to "([^"]*)"$`, steps.refreshCookieScopedTo)
	ctx.Step(`^the refresh cookie should have changed$`, steps.refreshCookieChanged)
	ctx.Step(`^the error details should carry the new refresh cookie$`, steps.detailsCarryRefreshCookie)
	ctx.Step(`^the refresh cookie should be cleared$`, steps.refreshCookieCleared)

	// Logout
	ctx.Step(`^I log out$`, steps.logOut)
	ctx.Step(`^I log out without credentials$`, steps.logOutAnonymously)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) registeredUser(ctx context.Context, email, password string) error {
	body := map[string]string{
		"email":      email,
		"password":   password,
		"givenName":  "E2E",
		"familyName": "User",
	}
	if err := s.tc.POST("/api/users/register", body); err != nil {
		return err
	}
	switch s.tc.GetLastResponseStatus() {
	case http.StatusCreated, http.StatusConflict:
	default:
		return fmt.Errorf("register failed: %d %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	s.tc.SetCredentials(email, password)
	return nil
}

func (s *authSteps) logIn(ctx context.Context) error {
	_, password := s.tc.GetCredentials()
	return s.logInWithPassword(ctx, password)
}

func (s *authSteps) logInWithPassword(ctx context.Context, password string) error {
	email, _ := s.tc.GetCredentials()
	if err := s.tc.POST("/api/auth/login", map[string]string{"email": email, "password": password}); err != nil {
		return err
	}
	return s.captureTokens()
}

func (s *authSteps) logInUnknown(ctx context.Context, email string) error {
	return s.tc.POST("/api/auth/login", map[string]string{"email": email, "password": "Any0ne!pass"})
}

func (s *authSteps) loggedIn(ctx context.Context) error {
	if err := s.logIn(ctx); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("login failed: %d %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *authSteps) captureTokens() error {
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return nil
	}
	access, err := s.tc.GetResponseField("accessToken")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(access.(string))
	if csrf, err := s.tc.GetResponseField("csrfToken"); err == nil {
		s.tc.SetCSRFToken(csrf.(string))
	}
	return nil
}

func (s *authSteps) rememberRefreshCookie(ctx context.Context) error {
	s.tc.RememberRefreshCookie()
	if s.tc.RememberedRefreshCookie() == "" {
		return fmt.Errorf("no refresh cookie in jar")
	}
	return nil
}

func (s *authSteps) refresh(ctx context.Context) error {
	if err := s.tc.POST("/api/auth/refresh", nil); err != nil {
		return err
	}
	return s.captureTokens()
}

func (s *authSteps) refreshWithRemembered(ctx context.Context) error {
	return s.tc.SendRefreshWithCookie(s.tc.RememberedRefreshCookie())
}

func (s *authSteps) refreshCookieScopedTo(ctx context.Context, path string) error {
	for _, raw := range s.tc.GetLastResponseHeader().Values("Set-Cookie") {
		if !strings.HasPrefix(raw, "refresh_token=") {
			continue
		}
		if !strings.Contains(raw, "Path="+path) {
			return fmt.Errorf("refresh cookie not scoped to %s: %s", path, raw)
		}
		if !strings.Contains(raw, "HttpOnly") {
			return fmt.Errorf("refresh cookie is not HttpOnly: %s", raw)
		}
		return nil
	}
	return fmt.Errorf("response set no refresh cookie")
}

func (s *authSteps) refreshCookieChanged(ctx context.Context) error {
	for _, raw := range s.tc.GetLastResponseHeader().Values("Set-Cookie") {
		if strings.HasPrefix(raw, "refresh_token=") {
			value := strings.SplitN(strings.TrimPrefix(raw, "refresh_token="), ";", 2)[0]
			if value == "" || value == s.tc.RememberedRefreshCookie() {
				return fmt.Errorf("refresh cookie was not rotated")
			}
			return nil
		}
	}
	return fmt.Errorf("response set no refresh cookie")
}

func (s *authSteps) detailsCarryRefreshCookie(ctx context.Context) error {
	detail, err := s.tc.GetResponseField("details.refreshToken")
	if err != nil {
		return err
	}
	for _, raw := range s.tc.GetLastResponseHeader().Values("Set-Cookie") {
		if value, ok := strings.CutPrefix(raw, "refresh_token="); ok {
			value, _, _ = strings.Cut(value, ";")
			if fmt.Sprint(detail) != value {
				return fmt.Errorf("details.refreshToken does not match the refresh cookie")
			}
			return nil
		}
	}
	return fmt.Errorf("response set no refresh cookie")
}

func (s *authSteps) refreshCookieCleared(ctx context.Context) error {
	if v := s.tc.RefreshCookie(); v != "" {
		return fmt.Errorf("refresh cookie still present")
	}
	return nil
}

func (s *authSteps) logOut(ctx context.Context) error {
	headers := map[string]string{}
	if token := s.tc.GetAccessToken(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return s.tc.Do(http.MethodPost, "/api/auth/logout", nil, headers)
}

func (s *authSteps) logOutAnonymously(ctx context.Context) error {
	return s.tc.POST("/api/auth/logout", nil)
}
