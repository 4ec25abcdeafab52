package devchain

import (
	"maps"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type identity struct {
	did  string
	role uint8
}

type policy struct {
	beneficiary common.Address
	insurer     common.Address
	coverage    *big.Int
}

type claimRecord struct {
	policyID     *big.Int
	beneficiary  common.Address
	insurer      common.Address
	evidenceHash string
	vcCID        string
	amount       *big.Int
	status       uint8
}

// state is the storage of all three contracts. Values are never mutated in
// place, so clone only copies the maps.
type state struct {
	identities map[common.Address]identity
	policies   map[uint64]policy
	claims     map[uint64]claimRecord
	lastPolicy uint64
	lastClaim  uint64
}

func newState() *state {
	return &state{
		identities: make(map[common.Address]identity),
		policies:   make(map[uint64]policy),
		claims:     make(map[uint64]claimRecord),
	}
}

func (s *state) clone() *state {
	return &state{
		identities: maps.Clone(s.identities),
		policies:   maps.Clone(s.policies),
		claims:     maps.Clone(s.claims),
		lastPolicy: s.lastPolicy,
		lastClaim:  s.lastClaim,
	}
}

func (s *state) policy(id *big.Int) (policy, bool) {
	if id == nil || !id.IsUint64() {
		return policy{}, false
	}
	p, ok := s.policies[id.Uint64()]
	return p, ok
}

func (s *state) claim(id *big.Int) (claimRecord, bool) {
	if id == nil || !id.IsUint64() {
		return claimRecord{}, false
	}
	c, ok := s.claims[id.Uint64()]
	return c, ok
}
