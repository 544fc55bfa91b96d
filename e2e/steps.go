package e2e

import (
	"github.com/cucumber/godog"

	"authgate/e2e/steps/auth"
	"authgate/e2e/steps/common"
	"authgate/e2e/steps/users"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register session lifecycle steps
	auth.RegisterSteps(ctx, tc)

	// Register account steps
	users.RegisterSteps(ctx, tc)
}
