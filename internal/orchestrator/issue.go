package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"claimchain/internal/credential"
	"claimchain/internal/events"
	issuance "claimchain/internal/issuance/models"
	"claimchain/internal/ledger"
	"claimchain/internal/platform/tracer"
	policyrequest "claimchain/internal/policyrequest/models"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/requestcontext"
)

// IssueVCCommand asks for a policy credential, optionally anchored by an
// on-chain policy and optionally fulfilling a queued request.
type IssueVCCommand struct {
	Credential credential.Credential
	IssuerDID  string

	CreateOnchain     bool
	InsurerPrivateKey string
	// Beneficiary and CoverageAmount default to the request's values when
	// RequestID is set.
	Beneficiary    string
	CoverageAmount *big.Int

	RequestID *int64
}

// IssueVCResult always carries the durable credential. OnchainPolicyID is
// nil when no on-chain policy was requested or it could not be created.
type IssueVCResult struct {
	VC              *credential.VerifiableCredential
	CID             string
	PolicyRef       string
	OnchainPolicyID *big.Int
	TxHash          string
	Request         *policyrequest.PolicyRequest
	Warnings        []SoftWarning
}

const maxIndexAttempts = 3

type onchainPolicy struct {
	contract    *ledger.Contract
	beneficiary common.Address
	coverage    *big.Int
}

// IssueVC signs the credential, persists it to the blob store and, when
// asked, creates the on-chain policy. Input and request-state errors are
// returned before any side effect. Once the credential is durable nothing
// fails the call: on-chain, index and request bookkeeping problems become
// SoftWarnings.
func (s *Service) IssueVC(ctx context.Context, cmd IssueVCCommand) (result *IssueVCResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssueVC, tracer.Bool(tracer.AttrOnchain, cmd.CreateOnchain))
	defer func() { span.End(err) }()

	if strings.TrimSpace(cmd.IssuerDID) == "" {
		return nil, missing("issuerDid")
	}

	var request *policyrequest.PolicyRequest
	if cmd.RequestID != nil {
		request, err = s.pendingRequest(ctx, *cmd.RequestID)
		if err != nil {
			return nil, err
		}
		cmd = withRequestDefaults(cmd, request)
	}

	if cmd.CreateOnchain && strings.TrimSpace(cmd.InsurerPrivateKey) == "" {
		return nil, missing("insurerPrivateKey")
	}

	if err := s.credentials.WaitReady(ctx); err != nil {
		return nil, err
	}
	vc, err := s.credentials.Issue(ctx, cmd.IssuerDID, cmd.Credential)
	if err != nil {
		return nil, err
	}
	contentID, err := s.persistCredential(ctx, vc)
	if err != nil {
		return nil, err
	}

	result = &IssueVCResult{
		VC:        vc,
		CID:       contentID,
		PolicyRef: issuance.NewPolicyRef(),
		Request:   request,
	}

	if cmd.CreateOnchain {
		s.anchorPolicy(ctx, span, cmd, result)
	}

	issuedAt := requestcontext.Now(ctx)
	linked := s.index(ctx, span, cmd.RequestID, issuedAt, result)
	if request != nil && linked {
		s.markIssued(ctx, span, request.ID, issuedAt, result)
	}

	s.metrics.IncrementCredentialsIssued(result.OnchainPolicyID != nil)
	s.logger.InfoContext(ctx, "credential issued",
		"policy_ref", result.PolicyRef,
		"cid", result.CID,
		"issuer", vc.Issuer,
		"onchain", result.OnchainPolicyID != nil,
		"warnings", len(result.Warnings),
	)
	s.publishIssued(ctx, result)
	return result, nil
}

func (s *Service) pendingRequest(ctx context.Context, id int64) (*policyrequest.PolicyRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("policy request %d not found", id))
	}
	if !request.IsPending() {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("policy request %d is already %s", id, request.Status))
	}
	return request, nil
}

func withRequestDefaults(cmd IssueVCCommand, request *policyrequest.PolicyRequest) IssueVCCommand {
	if cmd.Beneficiary == "" {
		cmd.Beneficiary = request.PatientAddress
	}
	if cmd.CoverageAmount == nil {
		cmd.CoverageAmount = request.CoverageAmount
	}
	if _, ok := cmd.Credential.CredentialSubject["id"]; !ok {
		subject := make(map[string]any, len(cmd.Credential.CredentialSubject)+1)
		for k, v := range cmd.Credential.CredentialSubject {
			subject[k] = v
		}
		subject["id"] = request.PatientDID
		cmd.Credential.CredentialSubject = subject
	}
	return cmd
}

func (s *Service) prepareOnchainPolicy(cmd IssueVCCommand) (*onchainPolicy, error) {
	switch {
	case cmd.Beneficiary == "":
		return nil, missing("beneficiary")
	case cmd.CoverageAmount == nil:
		return nil, missing("coverageAmount")
	}
	if !common.IsHexAddress(cmd.Beneficiary) {
		return nil, dErrors.New(dErrors.CodeValidation, "beneficiary must be a hex account address")
	}
	if cmd.CoverageAmount.Sign() <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "coverageAmount must be positive")
	}
	signer, err := s.ledger.Signer(cmd.InsurerPrivateKey)
	if err != nil {
		return nil, err
	}
	contract, err := s.ledger.Contract(ledger.PolicyContract, signer)
	if err != nil {
		return nil, err
	}
	return &onchainPolicy{
		contract:    contract,
		beneficiary: common.HexToAddress(cmd.Beneficiary),
		coverage:    cmd.CoverageAmount,
	}, nil
}

func (s *Service) persistCredential(ctx context.Context, vc *credential.VerifiableCredential) (string, error) {
	payload, err := json.Marshal(vc)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encode credential")
	}
	id, err := s.blobs.Put(ctx, payload)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "persist credential to blob store")
	}
	return id.String(), nil
}

// anchorPolicy creates the on-chain policy. It never fails the issuance.
func (s *Service) anchorPolicy(ctx context.Context, span tracer.Span, cmd IssueVCCommand, result *IssueVCResult) {
	anchor, err := s.prepareOnchainPolicy(cmd)
	if err != nil {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningOnchainPolicy,
			"on-chain policy was not created: "+err.Error(),
			"cid", result.CID, "error_code", dErrors.CodeOf(err)))
		return
	}
	receipt, err := s.ledger.SubmitAndConfirm(ctx, anchor.contract, "issuePolicy", anchor.beneficiary, anchor.coverage)
	if err != nil {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningOnchainPolicy,
			"on-chain policy was not created: "+err.Error(),
			"cid", result.CID, "error_code", dErrors.CodeOf(err)))
		return
	}
	result.TxHash = receipt.TxHash.Hex()

	policyID, ok := policyIDFrom(anchor.contract.DecodeEvent(receipt, ledger.EventPolicyIssued))
	if !ok {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningEventMissing,
			"policy issued but no PolicyIssued event was found; policy id unknown",
			"tx_hash", result.TxHash))
		return
	}
	result.OnchainPolicyID = policyID
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
}

// index records the credential so it can be fetched by policy reference or
// on-chain policy id. A key already held by another credential is dropped
// from the record with a SoftWarning; any other failure leaves the
// credential unindexed. It reports whether the record is linked to requestID.
func (s *Service) index(ctx context.Context, span tracer.Span, requestID *int64, issuedAt time.Time, result *IssueVCResult) bool {
	rec := &issuance.Record{
		PolicyRef:       result.PolicyRef,
		RequestID:       requestID,
		VC:              result.VC,
		CID:             result.CID,
		OnchainPolicyID: result.OnchainPolicyID,
		IssuedAt:        issuedAt,
	}
	for attempt := 1; ; attempt++ {
		err := s.issued.Save(ctx, rec)
		switch {
		case err == nil:
			result.PolicyRef = rec.PolicyRef
			return rec.RequestID != nil
		case errors.Is(err, issuance.ErrOnchainPolicyIndexed) && rec.OnchainPolicyID != nil:
			result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningOnchainPolicy,
				fmt.Sprintf("on-chain policy %s already belongs to another credential; credential %s is indexed without it", rec.OnchainPolicyID, result.CID),
				"onchain_policy_id", rec.OnchainPolicyID.String()))
			rec.OnchainPolicyID = nil
		case errors.Is(err, issuance.ErrRequestIndexed) && rec.RequestID != nil:
			result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningRequestStatus,
				fmt.Sprintf("policy request %d was issued concurrently; credential %s is indexed without it", *rec.RequestID, result.CID),
				"request_id", *rec.RequestID))
			rec.RequestID = nil
		case errors.Is(err, issuance.ErrPolicyRefTaken) && attempt < maxIndexAttempts:
			rec.PolicyRef = issuance.NewPolicyRef()
		default:
			result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningCredentialIndex,
				fmt.Sprintf("credential %s is stored but could not be indexed: %v", result.CID, err),
				"cid", result.CID))
			result.PolicyRef = ""
			return false
		}
	}
}

func (s *Service) markIssued(ctx context.Context, span tracer.Span, requestID int64, issuedAt time.Time, result *IssueVCResult) {
	updated, err := s.requests.UpdateStatus(ctx, requestID, policyrequest.StatusIssued, policyrequest.Issuance{
		PolicyRef: result.PolicyRef,
		VCCID:     result.CID,
		IssuedAt:  issuedAt,
	})
	if err != nil {
		result.Warnings = append(result.Warnings, s.warn(ctx, span, WarningRequestStatus,
			fmt.Sprintf("credential issued but policy request %d could not be marked issued: %v", requestID, err),
			"request_id", requestID))
		return
	}
	result.Request = updated
}

func (s *Service) publishIssued(ctx context.Context, result *IssueVCResult) {
	data := map[string]any{
		"cid":    result.CID,
		"issuer": result.VC.Issuer,
	}
	if result.OnchainPolicyID != nil {
		data["onchainPolicyId"] = result.OnchainPolicyID.String()
	}
	if result.Request != nil {
		data["requestId"] = strconv.FormatInt(result.Request.ID, 10)
	}
	aggregate := result.PolicyRef
	if aggregate == "" {
		aggregate = result.CID
	}
	s.publisher.Publish(ctx, events.Event{
		Type:          events.TypeCredentialIssued,
		AggregateType: events.AggregateCredential,
		AggregateID:   aggregate,
		Data:          data,
	})
}

func policyIDFrom(res ledger.EventResult) (*big.Int, bool) {
	found, ok := res.(ledger.Found)
	if !ok {
		return nil, false
	}
	return found.BigInt("policyId")
}
