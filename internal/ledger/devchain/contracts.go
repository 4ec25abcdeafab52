package devchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"claimchain/internal/claim"
	"claimchain/internal/ledger"
)

// execution runs one contract call against st on behalf of from.
type execution struct {
	st       *state
	from     common.Address
	contract ledger.ContractName
	address  common.Address
	abi      abi.ABI
	logs     []*types.Log
}

func (x *execution) run(method *abi.Method, args []any) ([]any, error) {
	switch x.contract {
	case ledger.IdentityRegistry:
		return x.identityRegistry(method.Name, args)
	case ledger.PolicyContract:
		return x.policyContract(method.Name, args)
	case ledger.ClaimContract:
		return x.claimContract(method.Name, args)
	default:
		return nil, fmt.Errorf("no executor for %s", x.contract)
	}
}

func (x *execution) identityRegistry(method string, args []any) ([]any, error) {
	switch method {
	case "registerIdentity":
		account := args[0].(common.Address)
		did := args[1].(string)
		role := args[2].(uint8)
		if account == (common.Address{}) {
			return nil, revert("account is the zero address")
		}
		if did == "" {
			return nil, revert("did is required")
		}
		if role < ledger.RolePatient || role > ledger.RoleHospital {
			return nil, revert("invalid role")
		}
		if _, exists := x.st.identities[account]; exists {
			return nil, revert("identity already registered")
		}
		x.st.identities[account] = identity{did: did, role: role}
		return nil, x.emit(ledger.EventIdentityRegistered, account, did, role)

	case "getIdentity":
		id, ok := x.st.identities[args[0].(common.Address)]
		return []any{id.did, id.role, ok}, nil
	}
	return nil, revert("")
}

func (x *execution) policyContract(method string, args []any) ([]any, error) {
	switch method {
	case "issuePolicy":
		beneficiary := args[0].(common.Address)
		coverage := args[1].(*big.Int)
		if x.st.identities[x.from].role != ledger.RoleInsurer {
			return nil, revert("caller is not a registered insurer")
		}
		if beneficiary == (common.Address{}) {
			return nil, revert("beneficiary is the zero address")
		}
		if coverage.Sign() <= 0 {
			return nil, revert("coverage amount must be positive")
		}
		x.st.lastPolicy++
		id := new(big.Int).SetUint64(x.st.lastPolicy)
		x.st.policies[x.st.lastPolicy] = policy{beneficiary: beneficiary, insurer: x.from, coverage: coverage}
		return []any{id}, x.emit(ledger.EventPolicyIssued, id, beneficiary, x.from, coverage)

	case "getPolicy":
		p, ok := x.st.policy(args[0].(*big.Int))
		if !ok {
			return []any{common.Address{}, common.Address{}, new(big.Int), false}, nil
		}
		return []any{p.beneficiary, p.insurer, p.coverage, true}, nil
	}
	return nil, revert("")
}

func (x *execution) claimContract(method string, args []any) ([]any, error) {
	switch method {
	case "submitClaim":
		return x.submitClaim(args)

	case "getClaim":
		c, ok := x.st.claim(args[0].(*big.Int))
		if !ok {
			return []any{new(big.Int), common.Address{}, common.Address{}, "", "", new(big.Int), uint8(0)}, nil
		}
		return []any{c.policyID, c.beneficiary, c.insurer, c.evidenceHash, c.vcCID, c.amount, c.status}, nil

	case "setUnderReview", "approveClaim", "markPaid":
		return nil, x.transition(args[0].(*big.Int), method, "")

	case "rejectClaim":
		return nil, x.transition(args[0].(*big.Int), method, args[1].(string))
	}
	return nil, revert("")
}

func (x *execution) submitClaim(args []any) ([]any, error) {
	policyID := args[0].(*big.Int)
	beneficiary := args[1].(common.Address)
	insurer := args[2].(common.Address)
	evidenceHash := args[3].(string)
	vcCID := args[4].(string)
	amount := args[5].(*big.Int)

	p, ok := x.st.policy(policyID)
	if !ok {
		return nil, revert("policy does not exist")
	}
	if x.from != beneficiary && x.st.identities[x.from].role != ledger.RoleHospital {
		return nil, revert("caller is neither the beneficiary nor a registered hospital")
	}
	if p.beneficiary != beneficiary {
		return nil, revert("beneficiary does not match policy")
	}
	if p.insurer != insurer {
		return nil, revert("insurer does not match policy")
	}
	if evidenceHash == "" {
		return nil, revert("evidence hash is required")
	}
	if amount.Sign() <= 0 {
		return nil, revert("amount must be positive")
	}
	if amount.Cmp(p.coverage) > 0 {
		return nil, revert("amount exceeds coverage")
	}

	x.st.lastClaim++
	id := new(big.Int).SetUint64(x.st.lastClaim)
	x.st.claims[x.st.lastClaim] = claimRecord{
		policyID:     policyID,
		beneficiary:  beneficiary,
		insurer:      insurer,
		evidenceHash: evidenceHash,
		vcCID:        vcCID,
		amount:       amount,
		status:       uint8(claim.StatusSubmitted),
	}
	return []any{id}, x.emit(ledger.EventClaimSubmitted, id, policyID, beneficiary, insurer, amount, vcCID)
}

func (x *execution) transition(id *big.Int, method, reason string) error {
	c, ok := x.st.claim(id)
	if !ok {
		return revert("claim does not exist")
	}
	if x.from != c.insurer {
		return revert("caller is not the claim insurer")
	}
	action, err := claim.ParseAction(method, reason)
	if err != nil {
		return revert(err.Error())
	}
	next, err := claim.Transition(claim.Status(c.status), action)
	if err != nil {
		return revert(err.Error())
	}
	c.status = uint8(next)
	x.st.claims[id.Uint64()] = c
	return x.emit(ledger.EventClaimStatusChanged, id, c.status, reason)
}

// emit appends a log for event. args follow the ABI input order.
func (x *execution) emit(event string, args ...any) error {
	ev, ok := x.abi.Events[event]
	if !ok {
		return fmt.Errorf("unknown event %s", event)
	}
	if len(args) != len(ev.Inputs) {
		return fmt.Errorf("event %s: got %d args, want %d", event, len(args), len(ev.Inputs))
	}

	var indexed [][]any
	var data []any
	for i, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, []any{args[i]})
		} else {
			data = append(data, args[i])
		}
	}

	topics := []common.Hash{ev.ID}
	if len(indexed) > 0 {
		rules, err := abi.MakeTopics(indexed...)
		if err != nil {
			return fmt.Errorf("event %s topics: %w", event, err)
		}
		for _, r := range rules {
			topics = append(topics, r[0])
		}
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("event %s data: %w", event, err)
	}

	x.logs = append(x.logs, &types.Log{Address: x.address, Topics: topics, Data: packed})
	return nil
}
