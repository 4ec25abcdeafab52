package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetResponseString(field string) (string, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(name, value string)
	Lookup(name string) (string, error)
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the claimchain API is running$`, steps.apiIsRunning)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should equal the saved "([^"]*)"$`, steps.responseFieldShouldEqualSaved)
	ctx.Step(`^the response should have no warnings$`, steps.responseShouldHaveNoWarnings)
	ctx.Step(`^the response should have a "([^"]*)" warning$`, steps.responseShouldHaveWarning)

	// Scenario state
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveResponseField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) apiIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health/live"); err != nil {
		return err
	}
	return s.responseStatusShouldBe(ctx, 200)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	actual, err := s.tc.GetResponseString(field)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("expected %s to be %q but got %q", field, expected, actual)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqualSaved(ctx context.Context, field, name string) error {
	expected, err := s.tc.Lookup(name)
	if err != nil {
		return err
	}
	return s.responseFieldShouldEqual(ctx, field, expected)
}

func (s *commonSteps) warnings() ([]map[string]any, error) {
	raw, err := s.tc.GetResponseField("warnings")
	if err != nil {
		return nil, err
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("warnings is not a list: %v", raw)
	}
	out := make([]map[string]any, 0, len(list))
	for _, w := range list {
		if m, ok := w.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *commonSteps) responseShouldHaveNoWarnings(ctx context.Context) error {
	ws, err := s.warnings()
	if err != nil {
		return err
	}
	if len(ws) > 0 {
		return fmt.Errorf("expected no warnings but got %v", ws)
	}
	return nil
}

func (s *commonSteps) responseShouldHaveWarning(ctx context.Context, kind string) error {
	ws, err := s.warnings()
	if err != nil {
		return err
	}
	for _, w := range ws {
		if w["kind"] == kind {
			return nil
		}
	}
	return fmt.Errorf("expected a %s warning but got %v", kind, ws)
}

func (s *commonSteps) saveResponseField(ctx context.Context, field, name string) error {
	value, err := s.tc.GetResponseString(field)
	if err != nil {
		return err
	}
	s.tc.Save(name, value)
	return nil
}
