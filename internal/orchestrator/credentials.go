package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"claimchain/internal/blob"
	"claimchain/internal/credential"
	issuance "claimchain/internal/issuance/models"
	"claimchain/internal/ledger"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

// CreateDID creates a fresh did:key identifier held by the credential agent.
func (s *Service) CreateDID(ctx context.Context) (string, error) {
	if err := s.credentials.WaitReady(ctx); err != nil {
		return "", err
	}
	return s.credentials.CreateDID(ctx)
}

// VerifyVC verifies a JWT-encoded credential. An unverifiable credential is
// reported in the result, not as an error.
func (s *Service) VerifyVC(ctx context.Context, vcJWT string) (*credential.VerificationResult, error) {
	if strings.TrimSpace(vcJWT) == "" {
		return nil, missing("jwt")
	}
	if err := s.credentials.WaitReady(ctx); err != nil {
		return nil, err
	}
	return s.credentials.Verify(ctx, vcJWT)
}

// GetCredential resolves key first as a PolicyRef, then as an on-chain
// policy id.
func (s *Service) GetCredential(ctx context.Context, key string) (*issuance.Record, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, missing("key")
	}

	if issuance.IsPolicyRef(key) {
		rec, err := s.issued.FindByPolicyRef(ctx, key)
		switch {
		case err == nil:
			return rec, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, storeError(err, "")
		}
	}
	if id, ok := issuance.ParseOnchainPolicyID(key); ok {
		rec, err := s.issued.FindByOnchainPolicyID(ctx, id)
		switch {
		case err == nil:
			return rec, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, storeError(err, "")
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no credential issued under %q", key))
}

// checkClaimCredential loads the credential a claim references and checks
// its proof and that the registry agrees on who issued it and to whom. It
// returns a description of the first problem found, or "".
func (s *Service) checkClaimCredential(ctx context.Context, vcCID string, beneficiary, insurer common.Address) string {
	id, err := blob.ParseCID(vcCID)
	if err != nil {
		return "vcCid is not a valid content id"
	}
	data, err := s.blobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "credential document not found"
		}
		return "credential document unavailable: " + err.Error()
	}
	var vc credential.VerifiableCredential
	if err := json.Unmarshal(data, &vc); err != nil {
		return "credential document is not a verifiable credential"
	}

	res, err := s.credentials.VerifyDocument(ctx, &vc)
	if err != nil {
		return "verification failed: " + err.Error()
	}
	if !res.Verified {
		return "signature invalid: " + res.Error
	}

	registry, err := s.ledger.Contract(ledger.IdentityRegistry, nil)
	if err != nil {
		return "identity registry unavailable: " + err.Error()
	}
	var insurerID ledger.IdentityRecord
	if err := s.ledger.CallInto(ctx, registry, &insurerID, "getIdentity", insurer); err != nil {
		return "insurer identity lookup failed: " + err.Error()
	}
	if !insurerID.Registered || insurerID.DID != vc.Issuer {
		return "credential issuer does not match the insurer's registered DID"
	}
	var beneficiaryID ledger.IdentityRecord
	if err := s.ledger.CallInto(ctx, registry, &beneficiaryID, "getIdentity", beneficiary); err != nil {
		return "beneficiary identity lookup failed: " + err.Error()
	}
	if !beneficiaryID.Registered || beneficiaryID.DID != vc.Subject() {
		return "credential subject does not match the beneficiary's registered DID"
	}
	return ""
}
