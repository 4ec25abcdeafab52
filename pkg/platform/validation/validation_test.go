package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "claimchain/pkg/domain-errors"
)

type sampleRequest struct {
	PatientDID     string `json:"patientDid" validate:"notblank,did"`
	PatientAddress string `json:"patientAddress" validate:"required,eth_addr"`
	CoverageAmount string `json:"coverageAmount" validate:"required,uint256"`
}

func TestValidate(t *testing.T) {
	valid := sampleRequest{
		PatientDID:     "did:key:p1",
		PatientAddress: "0x00000000000000000000000000000000000000aa",
		CoverageAmount: "1000000000000000000",
	}

	t.Run("accepts a complete request", func(t *testing.T) {
		assert.NoError(t, Validate(valid))
	})

	t.Run("missing field uses json name and CodeMissingField", func(t *testing.T) {
		req := valid
		req.PatientAddress = ""
		err := Validate(req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingField))
		assert.Equal(t, "patientAddress is required", err.Error())
	})

	t.Run("blank did is missing", func(t *testing.T) {
		req := valid
		req.PatientDID = "   "
		assert.True(t, dErrors.HasCode(Validate(req), dErrors.CodeMissingField))
	})

	t.Run("malformed values are validation errors", func(t *testing.T) {
		req := valid
		req.CoverageAmount = "-5"
		err := Validate(req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "coverageAmount must be a non-negative integer", err.Error())
	})
}

func TestParseUint256(t *testing.T) {
	n, ok := ParseUint256("1000000000000000000")
	require.True(t, ok)
	assert.Equal(t, "1000000000000000000", n.String())

	for _, bad := range []string{"", "abc", "-1", "+1", "1.5",
		"115792089237316195423570985008687907853269984665640564039457584007913129639936"} {
		_, ok := ParseUint256(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsDID(t *testing.T) {
	assert.True(t, IsDID("did:key:z6Mk"))
	assert.False(t, IsDID("did:key"))
	assert.False(t, IsDID("key:z6Mk:x"))
}
