package e2e

import (
	"github.com/cucumber/godog"

	"claimchain/e2e/steps/common"
	"claimchain/e2e/steps/onchain"
	"claimchain/e2e/steps/vc"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	vc.RegisterSteps(ctx, tc)
	onchain.RegisterSteps(ctx, tc)
}
