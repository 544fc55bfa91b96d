package users

import (
	"context"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body interface{}, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetAccessToken() string
	GetCSRFToken() string
	SetCSRFToken(token string)
}

// RegisterSteps registers profile step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &userSteps{tc: tc}

	ctx.Step(`^I request my profile$`, steps.requestProfile)
	ctx.Step(`^I rename myself to "([^"]*)" "([^"]*)"$`, steps.rename)
	ctx.Step(`^I rename myself to "([^"]*)" "([^"]*)" without a CSRF token$`, steps.renameWithoutCSRF)
	ctx.Step(`^I rename myself to "([^"]*)" "([^"]*)" with CSRF token "([^"]*)"$`, steps.renameWithCSRF)
	ctx.Step(`^I adopt the reissued CSRF token$`, steps.adoptReissuedToken)
}

type userSteps struct {
	tc TestContext
}

func (s *userSteps) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.tc.GetAccessToken()}
}

func (s *userSteps) requestProfile(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/api/users/me", nil, s.bearer())
}

func (s *userSteps) rename(ctx context.Context, given, family string) error {
	return s.renameWithCSRF(ctx, given, family, s.tc.GetCSRFToken())
}

func (s *userSteps) renameWithoutCSRF(ctx context.Context, given, family string) error {
	return s.renameWithCSRF(ctx, given, family, "")
}

func (s *userSteps) renameWithCSRF(ctx context.Context, given, family, token string) error {
	headers := s.bearer()
	if token != "" {
		headers["X-CSRF-Token"] = token
	}
	body := map[string]string{"givenName": given, "familyName": family}
	return s.tc.Do(http.MethodPatch, "/api/users/me", body, headers)
}

func (s *userSteps) adoptReissuedToken(ctx context.Context) error {
	token, err := s.tc.GetResponseField("details.csrfToken")
	if err != nil {
		return err
	}
	s.tc.SetCSRFToken(token.(string))
	return nil
}
