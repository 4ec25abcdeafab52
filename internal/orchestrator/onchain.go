package orchestrator

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"claimchain/internal/events"
	"claimchain/internal/ledger"
	"claimchain/internal/platform/tracer"
	dErrors "claimchain/pkg/domain-errors"
)

type RegisterIdentityCommand struct {
	PrivateKey string
	Account    string
	DID        string
	Role       string
}

// RegisterIdentity binds an account to a DID and role in the identity
// registry.
func (s *Service) RegisterIdentity(ctx context.Context, cmd RegisterIdentityCommand) (string, error) {
	switch {
	case strings.TrimSpace(cmd.Account) == "":
		return "", missing("account")
	case strings.TrimSpace(cmd.DID) == "":
		return "", missing("did")
	case strings.TrimSpace(cmd.Role) == "":
		return "", missing("role")
	}
	role, ok := ledger.RoleByName[strings.ToLower(strings.TrimSpace(cmd.Role))]
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "role must be one of patient, insurer, hospital")
	}
	if !common.IsHexAddress(cmd.Account) {
		return "", dErrors.New(dErrors.CodeValidation, "account must be a hex account address")
	}
	signer, err := s.ledger.Signer(cmd.PrivateKey)
	if err != nil {
		return "", err
	}
	contract, err := s.ledger.Contract(ledger.IdentityRegistry, signer)
	if err != nil {
		return "", err
	}

	account := common.HexToAddress(cmd.Account)
	receipt, err := s.ledger.SubmitAndConfirm(ctx, contract, "registerIdentity", account, cmd.DID, role)
	if err != nil {
		return "", err
	}
	txHash := receipt.TxHash.Hex()

	s.logger.InfoContext(ctx, "identity registered",
		"account", account.Hex(),
		"role", cmd.Role,
		"tx_hash", txHash,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:          events.TypeIdentityRegistered,
		AggregateType: events.AggregateIdentity,
		AggregateID:   account.Hex(),
		Data: map[string]any{
			"did":    cmd.DID,
			"role":   cmd.Role,
			"txHash": txHash,
		},
	})
	return txHash, nil
}

type IssuePolicyCommand struct {
	PrivateKey     string
	Beneficiary    string
	CoverageAmount *big.Int
}

type IssuePolicyResult struct {
	PolicyID *big.Int
	TxHash   string
	Warnings []SoftWarning
}

// IssuePolicy creates a policy on the ledger without issuing a credential.
// A confirmed transaction without a PolicyIssued event still succeeds, with
// a nil policy id and an event_missing warning.
func (s *Service) IssuePolicy(ctx context.Context, cmd IssuePolicyCommand) (result *IssuePolicyResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssuePolicy)
	defer func() { span.End(err) }()

	if cmd.PrivateKey == "" {
		return nil, missing("privateKey")
	}
	anchor, err := s.prepareOnchainPolicy(IssueVCCommand{
		InsurerPrivateKey: cmd.PrivateKey,
		Beneficiary:       cmd.Beneficiary,
		CoverageAmount:    cmd.CoverageAmount,
	})
	if err != nil {
		return nil, err
	}

	receipt, err := s.ledger.SubmitAndConfirm(ctx, anchor.contract, "issuePolicy", anchor.beneficiary, anchor.coverage)
	if err != nil {
		return nil, err
	}
	result = &IssuePolicyResult{TxHash: receipt.TxHash.Hex()}

	policyID, ok := policyIDFrom(anchor.contract.DecodeEvent(receipt, ledger.EventPolicyIssued))
	if !ok {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningEventMissing,
			"policy issued but no PolicyIssued event was found; policy id unknown",
			"tx_hash", result.TxHash))
		return result, nil
	}
	result.PolicyID = policyID

	s.logger.InfoContext(ctx, "policy issued",
		"policy_id", policyID.String(),
		"tx_hash", result.TxHash,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:          events.TypePolicyIssued,
		AggregateType: events.AggregatePolicy,
		AggregateID:   policyID.String(),
		Data: map[string]any{
			"beneficiary":    anchor.beneficiary.Hex(),
			"coverageAmount": anchor.coverage.String(),
			"txHash":         result.TxHash,
		},
	})
	return result, nil
}
