package vc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetResponseString(field string) (string, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Account(name string) (account, privateKey string, err error)
	DID(name string) (string, error)
	SetDID(name, did string) error
	Lookup(name string) (string, error)
	Resolve(name string) string
}

// RegisterSteps registers DID, policy request, credential and file steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &vcSteps{tc: tc}

	ctx.Step(`^"([^"]*)" has a managed DID$`, steps.createDID)

	// Policy requests
	ctx.Step(`^"([^"]*)" requests coverage of (-?\d+)$`, steps.requestCoverage)
	ctx.Step(`^policy request "([^"]*)" should be listed as "([^"]*)"$`, steps.requestShouldBeListedAs)

	// Credentials
	ctx.Step(`^"([^"]*)" issues a credential for request "([^"]*)"$`, steps.issueForRequest)
	ctx.Step(`^I look up the credential under "([^"]*)"$`, steps.lookupCredential)
	ctx.Step(`^I verify the credential "([^"]*)"$`, steps.verifyCredential)

	// Files
	ctx.Step(`^I upload the evidence "([^"]*)"$`, steps.uploadEvidence)
	ctx.Step(`^I download the file "([^"]*)"$`, steps.downloadFile)
}

type vcSteps struct {
	tc       TestContext
	uploaded []byte
}

func (s *vcSteps) expectOK() error {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("expected status 200 but got %d\nResponse: %s", status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *vcSteps) createDID(ctx context.Context, actor string) error {
	if err := s.tc.POST("/did/create", map[string]any{}); err != nil {
		return err
	}
	if err := s.expectOK(); err != nil {
		return err
	}
	did, err := s.tc.GetResponseString("did")
	if err != nil {
		return err
	}
	return s.tc.SetDID(actor, did)
}

func (s *vcSteps) requestCoverage(ctx context.Context, actor string, coverage int64) error {
	account, _, err := s.tc.Account(actor)
	if err != nil {
		return err
	}
	did, err := s.tc.DID(actor)
	if err != nil {
		return err
	}
	return s.tc.POST("/policy/request", map[string]any{
		"patientDid":     did,
		"patientAddress": account,
		"coverageAmount": coverage,
		"details":        map[string]any{"plan": "inpatient"},
	})
}

func (s *vcSteps) requestShouldBeListedAs(ctx context.Context, name, status string) error {
	id, err := s.tc.Lookup(name)
	if err != nil {
		return err
	}
	if err := s.tc.GET("/policy/requests"); err != nil {
		return err
	}
	raw, err := s.tc.GetResponseField("requests")
	if err != nil {
		return err
	}
	requests, _ := raw.([]any)
	for _, r := range requests {
		req, _ := r.(map[string]any)
		if fmt.Sprint(req["id"]) != id {
			continue
		}
		if req["status"] != status {
			return fmt.Errorf("expected request %s to be %s but it is %v", id, status, req["status"])
		}
		return nil
	}
	return fmt.Errorf("request %s not listed", id)
}

func (s *vcSteps) issueForRequest(ctx context.Context, insurer, name string) error {
	did, err := s.tc.DID(insurer)
	if err != nil {
		return err
	}
	requestID, err := strconv.ParseInt(s.tc.Resolve(name), 10, 64)
	if err != nil {
		return fmt.Errorf("request id %q: %w", name, err)
	}
	return s.tc.POST("/vc/issue", map[string]any{
		"credential": map[string]any{
			"type":              []string{"InsurancePolicyCredential"},
			"credentialSubject": map[string]any{"plan": "inpatient"},
		},
		"issuerDid": did,
		"requestId": requestID,
	})
}

func (s *vcSteps) lookupCredential(ctx context.Context, key string) error {
	return s.tc.GET("/vc/" + s.tc.Resolve(key))
}

func (s *vcSteps) verifyCredential(ctx context.Context, name string) error {
	jwt, err := s.tc.Lookup(name)
	if err != nil {
		return err
	}
	return s.tc.POST("/vc/verify", map[string]any{"vcJwt": jwt})
}

func (s *vcSteps) uploadEvidence(ctx context.Context, text string) error {
	s.uploaded = []byte(text)
	return s.tc.POST("/file/upload", map[string]any{
		"data":     base64.StdEncoding.EncodeToString(s.uploaded),
		"filename": "evidence.txt",
		"encoding": "base64",
	})
}

func (s *vcSteps) downloadFile(ctx context.Context, name string) error {
	if err := s.tc.GET("/file/" + s.tc.Resolve(name)); err != nil {
		return err
	}
	if err := s.expectOK(); err != nil {
		return err
	}
	data, err := s.tc.GetResponseString("data")
	if err != nil {
		return err
	}
	if s.uploaded != nil && data != base64.StdEncoding.EncodeToString(s.uploaded) {
		return fmt.Errorf("downloaded content differs from the upload")
	}
	return nil
}
