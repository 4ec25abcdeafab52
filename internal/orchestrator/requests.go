package orchestrator

import (
	"context"
	"math/big"
	"strconv"

	"claimchain/internal/events"
	policyrequest "claimchain/internal/policyrequest/models"
	"claimchain/pkg/requestcontext"
)

// CreatePolicyRequestCommand is patient intake.
type CreatePolicyRequestCommand struct {
	PatientDID     string
	PatientAddress string
	CoverageAmount *big.Int
	Details        map[string]any
}

// CreatePolicyRequest appends a pending request to the queue.
func (s *Service) CreatePolicyRequest(ctx context.Context, cmd CreatePolicyRequestCommand) (*policyrequest.PolicyRequest, error) {
	req, err := policyrequest.NewPolicyRequest(cmd.PatientDID, cmd.PatientAddress, cmd.CoverageAmount, cmd.Details, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	stored, err := s.requests.Append(ctx, req)
	if err != nil {
		return nil, storeError(err, "policy request not found")
	}

	s.metrics.IncrementPolicyRequests()
	s.logger.InfoContext(ctx, "policy request created",
		"request_id", stored.ID,
		"patient_did", stored.PatientDID,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:          events.TypePolicyRequested,
		AggregateType: events.AggregatePolicyRequest,
		AggregateID:   strconv.FormatInt(stored.ID, 10),
		Data: map[string]any{
			"patientDid":     stored.PatientDID,
			"coverageAmount": stored.CoverageAmount.String(),
		},
	})
	return stored, nil
}

// ListPolicyRequests returns every request in creation order.
func (s *Service) ListPolicyRequests(ctx context.Context) ([]*policyrequest.PolicyRequest, error) {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, storeError(err, "policy request not found")
	}
	return requests, nil
}
