package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractName identifies one of the three cooperating contracts.
type ContractName string

const (
	IdentityRegistry ContractName = "IdentityRegistry"
	PolicyContract   ContractName = "PolicyContract"
	ClaimContract    ContractName = "ClaimContract"
)

// Identity roles stored by IdentityRegistry.
const (
	RolePatient  uint8 = 1
	RoleInsurer  uint8 = 2
	RoleHospital uint8 = 3
)

// RoleByName maps the wire role names onto registry roles.
var RoleByName = map[string]uint8{
	"patient":  RolePatient,
	"insurer":  RoleInsurer,
	"hospital": RoleHospital,
}

// Event names.
const (
	EventIdentityRegistered = "IdentityRegistered"
	EventPolicyIssued       = "PolicyIssued"
	EventClaimSubmitted     = "ClaimSubmitted"
	EventClaimStatusChanged = "ClaimStatusChanged"
)

const identityRegistryABI = `[
	{"type":"function","name":"registerIdentity","stateMutability":"nonpayable",
	 "inputs":[{"name":"account","type":"address"},{"name":"did","type":"string"},{"name":"role","type":"uint8"}],
	 "outputs":[]},
	{"type":"function","name":"getIdentity","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"did","type":"string"},{"name":"role","type":"uint8"},{"name":"registered","type":"bool"}]},
	{"type":"event","name":"IdentityRegistered","anonymous":false,
	 "inputs":[{"name":"account","type":"address","indexed":true},{"name":"did","type":"string","indexed":false},{"name":"role","type":"uint8","indexed":false}]}
]`

const policyContractABI = `[
	{"type":"function","name":"issuePolicy","stateMutability":"nonpayable",
	 "inputs":[{"name":"beneficiary","type":"address"},{"name":"coverageAmount","type":"uint256"}],
	 "outputs":[{"name":"policyId","type":"uint256"}]},
	{"type":"function","name":"getPolicy","stateMutability":"view",
	 "inputs":[{"name":"policyId","type":"uint256"}],
	 "outputs":[{"name":"beneficiary","type":"address"},{"name":"insurer","type":"address"},{"name":"coverageAmount","type":"uint256"},{"name":"exists","type":"bool"}]},
	{"type":"event","name":"PolicyIssued","anonymous":false,
	 "inputs":[{"name":"policyId","type":"uint256","indexed":true},{"name":"beneficiary","type":"address","indexed":true},{"name":"insurer","type":"address","indexed":true},{"name":"coverageAmount","type":"uint256","indexed":false}]}
]`

const claimContractABI = `[
	{"type":"function","name":"submitClaim","stateMutability":"nonpayable",
	 "inputs":[{"name":"policyId","type":"uint256"},{"name":"beneficiary","type":"address"},{"name":"insurer","type":"address"},{"name":"evidenceHash","type":"string"},{"name":"vcCid","type":"string"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"claimId","type":"uint256"}]},
	{"type":"function","name":"setUnderReview","stateMutability":"nonpayable",
	 "inputs":[{"name":"claimId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"approveClaim","stateMutability":"nonpayable",
	 "inputs":[{"name":"claimId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"rejectClaim","stateMutability":"nonpayable",
	 "inputs":[{"name":"claimId","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
	{"type":"function","name":"markPaid","stateMutability":"nonpayable",
	 "inputs":[{"name":"claimId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getClaim","stateMutability":"view",
	 "inputs":[{"name":"claimId","type":"uint256"}],
	 "outputs":[{"name":"policyId","type":"uint256"},{"name":"beneficiary","type":"address"},{"name":"insurer","type":"address"},{"name":"evidenceHash","type":"string"},{"name":"vcCid","type":"string"},{"name":"amount","type":"uint256"},{"name":"status","type":"uint8"}]},
	{"type":"event","name":"ClaimSubmitted","anonymous":false,
	 "inputs":[{"name":"claimId","type":"uint256","indexed":true},{"name":"policyId","type":"uint256","indexed":true},{"name":"beneficiary","type":"address","indexed":true},{"name":"insurer","type":"address","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"vcCid","type":"string","indexed":false}]},
	{"type":"event","name":"ClaimStatusChanged","anonymous":false,
	 "inputs":[{"name":"claimId","type":"uint256","indexed":true},{"name":"status","type":"uint8","indexed":false},{"name":"reason","type":"string","indexed":false}]}
]`

var contractABIs = map[ContractName]abi.ABI{
	IdentityRegistry: mustParseABI(identityRegistryABI),
	PolicyContract:   mustParseABI(policyContractABI),
	ClaimContract:    mustParseABI(claimContractABI),
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse contract abi: %v", err))
	}
	return parsed
}

// ABI returns the parsed ABI of a known contract.
func ABI(name ContractName) (abi.ABI, bool) {
	a, ok := contractABIs[name]
	return a, ok
}

// Addresses locates the deployed contracts.
type Addresses struct {
	IdentityRegistry common.Address
	PolicyContract   common.Address
	ClaimContract    common.Address
}

// For returns the address of the named contract.
func (a Addresses) For(name ContractName) (common.Address, bool) {
	switch name {
	case IdentityRegistry:
		return a.IdentityRegistry, true
	case PolicyContract:
		return a.PolicyContract, true
	case ClaimContract:
		return a.ClaimContract, true
	default:
		return common.Address{}, false
	}
}

// Validate rejects unset contract addresses.
func (a Addresses) Validate() error {
	for _, name := range []ContractName{IdentityRegistry, PolicyContract, ClaimContract} {
		addr, _ := a.For(name)
		if addr == (common.Address{}) {
			return fmt.Errorf("%s address is not configured", name)
		}
	}
	return nil
}

// ParseAddresses parses hex contract addresses.
func ParseAddresses(identity, policy, claim string) (Addresses, error) {
	var out Addresses
	for _, f := range []struct {
		name ContractName
		raw  string
		dst  *common.Address
	}{
		{IdentityRegistry, identity, &out.IdentityRegistry},
		{PolicyContract, policy, &out.PolicyContract},
		{ClaimContract, claim, &out.ClaimContract},
	} {
		if !common.IsHexAddress(f.raw) {
			return Addresses{}, fmt.Errorf("invalid %s address %q", f.name, f.raw)
		}
		*f.dst = common.HexToAddress(f.raw)
	}
	return out, nil
}

// IdentityRecord is the output of IdentityRegistry.getIdentity.
type IdentityRecord struct {
	DID        string `abi:"did"`
	Role       uint8  `abi:"role"`
	Registered bool   `abi:"registered"`
}

// PolicyRecord is the output of PolicyContract.getPolicy.
type PolicyRecord struct {
	Beneficiary    common.Address `abi:"beneficiary"`
	Insurer        common.Address `abi:"insurer"`
	CoverageAmount *big.Int       `abi:"coverageAmount"`
	Exists         bool           `abi:"exists"`
}

// ClaimRecord is the output of ClaimContract.getClaim. A zero PolicyID means
// the claim does not exist.
type ClaimRecord struct {
	PolicyID     *big.Int       `abi:"policyId"`
	Beneficiary  common.Address `abi:"beneficiary"`
	Insurer      common.Address `abi:"insurer"`
	EvidenceHash string         `abi:"evidenceHash"`
	VCCID        string         `abi:"vcCid"`
	Amount       *big.Int       `abi:"amount"`
	Status       uint8          `abi:"status"`
}

// Exists reports whether the ledger knows the claim.
func (c ClaimRecord) Exists() bool {
	return c.PolicyID != nil && c.PolicyID.Sign() > 0
}
