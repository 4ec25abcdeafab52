package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"claimchain/internal/claim"
	"claimchain/internal/events"
	"claimchain/internal/ledger"
	"claimchain/internal/platform/metrics"
	"claimchain/internal/platform/tracer"
	dErrors "claimchain/pkg/domain-errors"
)

// SubmitClaimCommand carries the six business fields of a claim plus the
// submitting account's key.
type SubmitClaimCommand struct {
	PrivateKey   string
	PolicyID     *big.Int
	Beneficiary  string
	Insurer      string
	EvidenceHash string
	VCCID        string
	Amount       *big.Int
}

// SubmitClaimResult carries the ledger-assigned claim id, nil when the
// ClaimSubmitted event could not be found.
type SubmitClaimResult struct {
	ClaimID  *big.Int
	TxHash   string
	Warnings []SoftWarning
}

func (cmd SubmitClaimCommand) validate() error {
	switch {
	case cmd.PolicyID == nil:
		return missing("policyId")
	case strings.TrimSpace(cmd.Beneficiary) == "":
		return missing("beneficiary")
	case strings.TrimSpace(cmd.Insurer) == "":
		return missing("insurer")
	case strings.TrimSpace(cmd.EvidenceHash) == "":
		return missing("evidenceHash")
	case strings.TrimSpace(cmd.VCCID) == "":
		return missing("vcCid")
	case cmd.Amount == nil:
		return missing("amount")
	}
	if !common.IsHexAddress(cmd.Beneficiary) {
		return dErrors.New(dErrors.CodeValidation, "beneficiary must be a hex account address")
	}
	if !common.IsHexAddress(cmd.Insurer) {
		return dErrors.New(dErrors.CodeValidation, "insurer must be a hex account address")
	}
	return nil
}

// SubmitClaim checks the referenced credential, submits the claim and
// recovers its id from the ClaimSubmitted event.
func (s *Service) SubmitClaim(ctx context.Context, cmd SubmitClaimCommand) (result *SubmitClaimResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmitClaim)
	defer func() { span.End(err) }()

	if err := cmd.validate(); err != nil {
		return nil, err
	}
	signer, err := s.ledger.Signer(cmd.PrivateKey)
	if err != nil {
		return nil, err
	}
	contract, err := s.ledger.Contract(ledger.ClaimContract, signer)
	if err != nil {
		return nil, err
	}

	beneficiary := common.HexToAddress(cmd.Beneficiary)
	insurer := common.HexToAddress(cmd.Insurer)
	result = &SubmitClaimResult{}

	if problem := s.checkClaimCredential(ctx, cmd.VCCID, beneficiary, insurer); problem != "" {
		if s.strictVC {
			return nil, dErrors.New(dErrors.CodeValidation, "claim credential rejected: "+problem)
		}
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningVCVerification,
			"claim credential not verified: "+problem, "vc_cid", cmd.VCCID))
	}

	receipt, err := s.ledger.SubmitAndConfirm(ctx, contract, "submitClaim",
		cmd.PolicyID, beneficiary, insurer, cmd.EvidenceHash, cmd.VCCID, cmd.Amount)
	if err != nil {
		return nil, err
	}
	result.TxHash = receipt.TxHash.Hex()

	found, ok := contract.DecodeEvent(receipt, ledger.EventClaimSubmitted).(ledger.Found)
	if ok {
		result.ClaimID, ok = found.BigInt("claimId")
	}
	if !ok {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningEventMissing,
			"claim submitted but no ClaimSubmitted event was found; claim id unknown",
			"tx_hash", result.TxHash))
	}

	s.metrics.IncrementClaimsSubmitted()
	s.logger.InfoContext(ctx, "claim submitted",
		"policy_id", cmd.PolicyID.String(),
		"claim_id", bigString(result.ClaimID),
		"tx_hash", result.TxHash,
	)
	if result.ClaimID != nil {
		s.publisher.Publish(ctx, events.Event{
			Type:          events.TypeClaimSubmitted,
			AggregateType: events.AggregateClaim,
			AggregateID:   result.ClaimID.String(),
			Data: map[string]any{
				"policyId":    cmd.PolicyID.String(),
				"beneficiary": beneficiary.Hex(),
				"insurer":     insurer.Hex(),
				"amount":      cmd.Amount.String(),
				"vcCid":       cmd.VCCID,
				"txHash":      result.TxHash,
			},
		})
	}
	return result, nil
}

// InsurerActionCommand applies one action to a claim.
type InsurerActionCommand struct {
	PrivateKey string
	ClaimID    *big.Int
	Action     claim.Action
}

type InsurerActionResult struct {
	TxHash string
	Action string
	Status claim.Status
}

// InsurerAction reads the claim's current state from the ledger, rejects
// illegal actions before submitting anything, then dispatches the action's
// contract call. Concurrent actions on one claim are decided by the ledger;
// the loser sees transaction_reverted.
func (s *Service) InsurerAction(ctx context.Context, cmd InsurerActionCommand) (result *InsurerActionResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInsurerAction)
	defer func() {
		if cmd.Action != nil {
			s.metrics.IncrementInsurerAction(cmd.Action.Method(), actionOutcome(err))
		}
		span.End(err)
	}()

	if err := claim.Validate(cmd.Action); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrAction, cmd.Action.Method()))
	if cmd.ClaimID == nil {
		return nil, missing("claimId")
	}
	signer, err := s.ledger.Signer(cmd.PrivateKey)
	if err != nil {
		return nil, err
	}
	contract, err := s.ledger.Contract(ledger.ClaimContract, signer)
	if err != nil {
		return nil, err
	}

	current, err := s.readClaim(ctx, contract, cmd.ClaimID)
	if err != nil {
		return nil, err
	}
	next, err := claim.Transition(current.Status, cmd.Action)
	if err != nil {
		return nil, err
	}

	args := append([]any{cmd.ClaimID}, cmd.Action.Args()...)
	receipt, err := s.ledger.SubmitAndConfirm(ctx, contract, cmd.Action.Method(), args...)
	if err != nil {
		return nil, err
	}

	result = &InsurerActionResult{
		TxHash: receipt.TxHash.Hex(),
		Action: cmd.Action.Method(),
		Status: next,
	}
	s.logger.InfoContext(ctx, "insurer action applied",
		"claim_id", cmd.ClaimID.String(),
		"action", result.Action,
		"from", current.Status.String(),
		"to", next.String(),
		"tx_hash", result.TxHash,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:          events.TypeClaimStatusChanged,
		AggregateType: events.AggregateClaim,
		AggregateID:   cmd.ClaimID.String(),
		Data: map[string]any{
			"action": result.Action,
			"from":   current.Status.String(),
			"to":     next.String(),
			"txHash": result.TxHash,
		},
	})
	return result, nil
}

// GetClaim reads a claim from the ledger.
func (s *Service) GetClaim(ctx context.Context, claimID *big.Int) (*claim.Claim, error) {
	if claimID == nil {
		return nil, missing("claimId")
	}
	contract, err := s.ledger.Contract(ledger.ClaimContract, nil)
	if err != nil {
		return nil, err
	}
	return s.readClaim(ctx, contract, claimID)
}

func (s *Service) readClaim(ctx context.Context, contract *ledger.Contract, claimID *big.Int) (*claim.Claim, error) {
	var rec ledger.ClaimRecord
	if err := s.ledger.CallInto(ctx, contract, &rec, "getClaim", claimID); err != nil {
		return nil, err
	}
	if !rec.Exists() {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("claim %s not found", claimID))
	}
	status := claim.Status(rec.Status)
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("claim %s has unknown status %d", claimID, rec.Status))
	}
	return &claim.Claim{
		ID:           new(big.Int).Set(claimID),
		PolicyID:     rec.PolicyID,
		Beneficiary:  rec.Beneficiary.Hex(),
		Insurer:      rec.Insurer.Hex(),
		EvidenceHash: rec.EvidenceHash,
		VCCID:        rec.VCCID,
		Amount:       rec.Amount,
		Status:       status,
	}, nil
}

func actionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case dErrors.HasCode(err, dErrors.CodeTransactionReverted):
		return metrics.OutcomeReverted
	case dErrors.HasCode(err, dErrors.CodeTransactionTimeout):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeFailure
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
