package models

import (
	"maps"
	"math/big"
	"strings"
	"time"

	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

// Status is the lifecycle state of a policy request.
type Status string

const (
	StatusPending Status = "pending"
	StatusIssued  Status = "issued"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusIssued
}

// PolicyRequest is a patient's request for coverage. It is appended once,
// moves from pending to issued at most once, and is never deleted.
type PolicyRequest struct {
	ID             int64
	PatientDID     string
	PatientAddress string
	CoverageAmount *big.Int
	Details        map[string]any
	Status         Status
	CreatedAt      time.Time

	// Set once the request is issued.
	IssuedAt  *time.Time
	PolicyRef string
	VCCID     string
}

// Issuance links a request to the credential issued against it.
type Issuance struct {
	PolicyRef string
	VCCID     string
	IssuedAt  time.Time
}

// NewPolicyRequest builds a pending request. The id is assigned by the store.
func NewPolicyRequest(patientDID, patientAddress string, coverage *big.Int, details map[string]any, createdAt time.Time) (*PolicyRequest, error) {
	patientDID = strings.TrimSpace(patientDID)
	patientAddress = strings.TrimSpace(patientAddress)
	switch {
	case patientDID == "":
		return nil, dErrors.New(dErrors.CodeMissingField, "patientDid is required")
	case patientAddress == "":
		return nil, dErrors.New(dErrors.CodeMissingField, "patientAddress is required")
	case coverage == nil:
		return nil, dErrors.New(dErrors.CodeMissingField, "coverageAmount is required")
	case coverage.Sign() < 0:
		return nil, dErrors.New(dErrors.CodeValidation, "coverageAmount must not be negative")
	}
	if details == nil {
		details = map[string]any{}
	}
	return &PolicyRequest{
		PatientDID:     patientDID,
		PatientAddress: patientAddress,
		CoverageAmount: new(big.Int).Set(coverage),
		Details:        details,
		Status:         StatusPending,
		CreatedAt:      createdAt,
	}, nil
}

func (r *PolicyRequest) IsPending() bool {
	return r.Status == StatusPending
}

// MarkIssued applies the single legal transition, pending to issued.
func (r *PolicyRequest) MarkIssued(iss Issuance) error {
	if !r.IsPending() {
		return sentinel.ErrInvalidState
	}
	issuedAt := iss.IssuedAt
	r.Status = StatusIssued
	r.IssuedAt = &issuedAt
	r.PolicyRef = iss.PolicyRef
	r.VCCID = iss.VCCID
	return nil
}

// Clone returns a deep copy safe to hand out of a store.
func (r *PolicyRequest) Clone() *PolicyRequest {
	c := *r
	if r.CoverageAmount != nil {
		c.CoverageAmount = new(big.Int).Set(r.CoverageAmount)
	}
	c.Details = maps.Clone(r.Details)
	if r.IssuedAt != nil {
		t := *r.IssuedAt
		c.IssuedAt = &t
	}
	return &c
}
