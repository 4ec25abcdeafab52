package onchain

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseString(field string) (string, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Account(name string) (account, privateKey string, err error)
	DID(name string) (string, error)
	Resolve(name string) string
}

// RegisterSteps registers identity, policy and claim steps against the ledger
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onchainSteps{tc: tc}

	// Identities
	ctx.Step(`^"([^"]*)" is registered on-chain as "([^"]*)"$`, steps.isRegistered)
	ctx.Step(`^"([^"]*)" registers on-chain as "([^"]*)"$`, steps.register)

	// Policies
	ctx.Step(`^"([^"]*)" issues an on-chain policy of (\d+) to "([^"]*)"$`, steps.issuePolicy)

	// Claims
	ctx.Step(`^"([^"]*)" claims (\d+) from "([^"]*)" under policy "([^"]*)" with evidence "([^"]*)" and credential "([^"]*)"$`, steps.submitClaim)
	ctx.Step(`^"([^"]*)" applies "([^"]*)" to claim "([^"]*)"$`, steps.applyAction)
	ctx.Step(`^"([^"]*)" rejects claim "([^"]*)" because "([^"]*)"$`, steps.rejectClaim)
	ctx.Step(`^I fetch claim "([^"]*)"$`, steps.fetchClaim)
	ctx.Step(`^claim "([^"]*)" should have status "([^"]*)"$`, steps.claimShouldHaveStatus)
}

type onchainSteps struct {
	tc TestContext
}

func (s *onchainSteps) register(ctx context.Context, actor, role string) error {
	account, key, err := s.tc.Account(actor)
	if err != nil {
		return err
	}
	did, err := s.tc.DID(actor)
	if err != nil {
		return err
	}
	return s.tc.POST("/onchain/register", map[string]any{
		"privateKey": key,
		"account":    account,
		"did":        did,
		"role":       role,
	})
}

func (s *onchainSteps) isRegistered(ctx context.Context, actor, role string) error {
	if err := s.register(ctx, actor, role); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("registering %s failed with %d: %s", actor, status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *onchainSteps) issuePolicy(ctx context.Context, insurer string, coverage int64, beneficiary string) error {
	_, key, err := s.tc.Account(insurer)
	if err != nil {
		return err
	}
	account, _, err := s.tc.Account(beneficiary)
	if err != nil {
		return err
	}
	return s.tc.POST("/onchain/issuePolicy", map[string]any{
		"privateKey":     key,
		"beneficiary":    account,
		"coverageAmount": coverage,
	})
}

func (s *onchainSteps) submitClaim(ctx context.Context, claimant string, amount int64, insurer, policy, evidence, vcCID string) error {
	account, key, err := s.tc.Account(claimant)
	if err != nil {
		return err
	}
	insurerAccount, _, err := s.tc.Account(insurer)
	if err != nil {
		return err
	}
	return s.tc.POST("/onchain/submitClaim", map[string]any{
		"privateKey":  key,
		"policyId":    s.tc.Resolve(policy),
		"beneficiary": account,
		"insurer":     insurerAccount,
		"ipfsHash":    s.tc.Resolve(evidence),
		"vcCid":       s.tc.Resolve(vcCID),
		"amount":      amount,
	})
}

func (s *onchainSteps) act(actor, claimID string, body map[string]any) error {
	_, key, err := s.tc.Account(actor)
	if err != nil {
		return err
	}
	body["privateKey"] = key
	body["claimId"] = s.tc.Resolve(claimID)
	return s.tc.POST("/onchain/insurerAction", body)
}

func (s *onchainSteps) applyAction(ctx context.Context, actor, action, claimID string) error {
	return s.act(actor, claimID, map[string]any{"action": action})
}

func (s *onchainSteps) rejectClaim(ctx context.Context, actor, claimID, reason string) error {
	return s.act(actor, claimID, map[string]any{"action": "rejectClaim", "reason": reason})
}

func (s *onchainSteps) fetchClaim(ctx context.Context, claimID string) error {
	return s.tc.GET("/onchain/claim/" + s.tc.Resolve(claimID))
}

func (s *onchainSteps) claimShouldHaveStatus(ctx context.Context, claimID, expected string) error {
	if err := s.fetchClaim(ctx, claimID); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("fetching claim %s failed with %d: %s", claimID, status, string(s.tc.GetLastResponseBody()))
	}
	actual, err := s.tc.GetResponseString("claim.status")
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("expected claim %s to be %s but it is %s", claimID, expected, actual)
	}
	return nil
}
