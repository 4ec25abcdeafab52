package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

func TestNewPolicyRequest(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		did      string
		address  string
		coverage *big.Int
		wantCode dErrors.Code
	}{
		{"missing did", " ", "0xAAA", big.NewInt(1), dErrors.CodeMissingField},
		{"missing address", "did:key:p1", "", big.NewInt(1), dErrors.CodeMissingField},
		{"missing coverage", "did:key:p1", "0xAAA", nil, dErrors.CodeMissingField},
		{"negative coverage", "did:key:p1", "0xAAA", big.NewInt(-1), dErrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicyRequest(tt.did, tt.address, tt.coverage, nil, now)
			assert.True(t, dErrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	t.Run("valid request is pending", func(t *testing.T) {
		coverage, _ := new(big.Int).SetString("1000000000000000000", 10)
		req, err := NewPolicyRequest("did:key:p1", "0xAAA", coverage, nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.NotNil(t, req.Details)
		assert.Equal(t, now, req.CreatedAt)

		coverage.SetInt64(1)
		assert.Equal(t, "1000000000000000000", req.CoverageAmount.String(), "coverage must be copied")
	})
}

func TestMarkIssuedOnlyOnce(t *testing.T) {
	req, err := NewPolicyRequest("did:key:p1", "0xAAA", big.NewInt(10), nil, time.Now())
	require.NoError(t, err)

	issuedAt := time.Now()
	require.NoError(t, req.MarkIssued(Issuance{PolicyRef: "pol_1", VCCID: "bafk", IssuedAt: issuedAt}))
	assert.Equal(t, StatusIssued, req.Status)
	assert.Equal(t, "pol_1", req.PolicyRef)
	require.NotNil(t, req.IssuedAt)

	err = req.MarkIssued(Issuance{PolicyRef: "pol_2"})
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	assert.Equal(t, "pol_1", req.PolicyRef)
}

func TestCloneIsDeep(t *testing.T) {
	req, _ := NewPolicyRequest("did:key:p1", "0xAAA", big.NewInt(10), map[string]any{"plan": "gold"}, time.Now())
	c := req.Clone()
	c.CoverageAmount.SetInt64(99)
	c.Details["plan"] = "bronze"

	assert.Equal(t, int64(10), req.CoverageAmount.Int64())
	assert.Equal(t, "gold", req.Details["plan"])
}
