package httptransport

import (
	"math/big"
	"time"

	"claimchain/internal/claim"
	"claimchain/internal/credential"
	issuance "claimchain/internal/issuance/models"
	"claimchain/internal/orchestrator"
	policyrequest "claimchain/internal/policyrequest/models"
)

type PolicyRequest struct {
	ID             int64          `json:"id"`
	PatientDID     string         `json:"patientDid"`
	PatientAddress string         `json:"patientAddress"`
	CoverageAmount string         `json:"coverageAmount"`
	Details        map[string]any `json:"details"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	IssuedAt       *time.Time     `json:"issuedAt,omitempty"`
	PolicyRef      string         `json:"policyRef,omitempty"`
	VCCID          string         `json:"vcCid,omitempty"`
}

type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type DIDResponse struct {
	DID     string `json:"did"`
	Success bool   `json:"success"`
}

type PolicyRequestResponse struct {
	Request *PolicyRequest `json:"request"`
	Success bool           `json:"success"`
}

type PolicyRequestListResponse struct {
	Requests []*PolicyRequest `json:"requests"`
	Success  bool             `json:"success"`
}

type IssueVCResponse struct {
	VC              *credential.VerifiableCredential `json:"vc"`
	CID             string                           `json:"cid"`
	PolicyRef       string                           `json:"policyRef,omitempty"`
	OnchainPolicyID *string                          `json:"onchainPolicyId"`
	TxHash          string                           `json:"txHash,omitempty"`
	Request         *PolicyRequest                   `json:"request,omitempty"`
	Warnings        []Warning                        `json:"warnings"`
	Success         bool                             `json:"success"`
}

type CredentialResponse struct {
	VC              *credential.VerifiableCredential `json:"vc"`
	CID             string                           `json:"cid"`
	PolicyRef       string                           `json:"policyRef"`
	OnchainPolicyID *string                          `json:"onchainPolicyId"`
	IssuedAt        time.Time                        `json:"issuedAt"`
	Success         bool                             `json:"success"`
}

type VerifyVCResponse struct {
	Result  *credential.VerificationResult `json:"result"`
	Success bool                           `json:"success"`
}

type FileUploadResponse struct {
	CID      string `json:"cid"`
	Filename string `json:"filename,omitempty"`
	Success  bool   `json:"success"`
}

type FileResponse struct {
	Data    string `json:"data"`
	Success bool   `json:"success"`
}

type RegisterIdentityResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash"`
}

type IssuePolicyResponse struct {
	Success  bool      `json:"success"`
	PolicyID *string   `json:"policyId"`
	TxHash   string    `json:"txHash"`
	Warnings []Warning `json:"warnings"`
}

type SubmitClaimResponse struct {
	Success  bool      `json:"success"`
	ClaimID  *string   `json:"claimId"`
	TxHash   string    `json:"txHash"`
	Warnings []Warning `json:"warnings"`
}

type InsurerActionResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash"`
	Action  string `json:"action"`
	Status  string `json:"status"`
}

type Claim struct {
	ClaimID      string `json:"claimId"`
	PolicyID     string `json:"policyId"`
	Beneficiary  string `json:"beneficiary"`
	Insurer      string `json:"insurer"`
	EvidenceHash string `json:"evidenceHash"`
	VCCID        string `json:"vcCid"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
}

type ClaimResponse struct {
	Claim   *Claim `json:"claim"`
	Success bool   `json:"success"`
}

func toPolicyRequest(r *policyrequest.PolicyRequest) *PolicyRequest {
	if r == nil {
		return nil
	}
	return &PolicyRequest{
		ID:             r.ID,
		PatientDID:     r.PatientDID,
		PatientAddress: r.PatientAddress,
		CoverageAmount: r.CoverageAmount.String(),
		Details:        r.Details,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		IssuedAt:       r.IssuedAt,
		PolicyRef:      r.PolicyRef,
		VCCID:          r.VCCID,
	}
}

func toPolicyRequests(rs []*policyrequest.PolicyRequest) []*PolicyRequest {
	out := make([]*PolicyRequest, 0, len(rs))
	for _, r := range rs {
		out = append(out, toPolicyRequest(r))
	}
	return out
}

func toWarnings(ws []orchestrator.SoftWarning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Kind: string(w.Kind), Message: w.Message})
	}
	return out
}

func toCredentialResponse(rec *issuance.Record) *CredentialResponse {
	return &CredentialResponse{
		VC:              rec.VC,
		CID:             rec.CID,
		PolicyRef:       rec.PolicyRef,
		OnchainPolicyID: bigString(rec.OnchainPolicyID),
		IssuedAt:        rec.IssuedAt,
		Success:         true,
	}
}

func toClaim(c *claim.Claim) *Claim {
	return &Claim{
		ClaimID:      c.ID.String(),
		PolicyID:     c.PolicyID.String(),
		Beneficiary:  c.Beneficiary,
		Insurer:      c.Insurer,
		EvidenceHash: c.EvidenceHash,
		VCCID:        c.VCCID,
		Amount:       c.Amount.String(),
		Status:       c.Status.String(),
	}
}

// bigString renders a ledger id as a decimal string, or nil when unknown.
func bigString(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
