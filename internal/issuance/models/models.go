package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"claimchain/internal/credential"
	"claimchain/pkg/platform/sentinel"
)

const policyRefPrefix = "pol_"

// Save reports which unique key of a Record collided. All of them match
// sentinel.ErrAlreadyUsed.
var (
	ErrPolicyRefTaken       = fmt.Errorf("%w: policy reference already indexed", sentinel.ErrAlreadyUsed)
	ErrRequestIndexed       = fmt.Errorf("%w: policy request already has a credential", sentinel.ErrAlreadyUsed)
	ErrOnchainPolicyIndexed = fmt.Errorf("%w: on-chain policy already has a credential", sentinel.ErrAlreadyUsed)
)

// Record indexes a credential issued by the orchestrator. RequestID and
// OnchainPolicyID are set only when the issuance had them.
type Record struct {
	PolicyRef       string
	RequestID       *int64
	VC              *credential.VerifiableCredential
	CID             string
	OnchainPolicyID *big.Int
	IssuedAt        time.Time
}

// NewPolicyRef returns a fresh policy reference.
func NewPolicyRef() string {
	return policyRefPrefix + uuid.NewString()
}

// IsPolicyRef reports whether key has the shape of a policy reference.
func IsPolicyRef(key string) bool {
	rest, ok := strings.CutPrefix(key, policyRefPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// ParseOnchainPolicyID parses a decimal ledger policy id. Zero is never a
// valid ledger id.
func ParseOnchainPolicyID(key string) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(key, 10)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}
