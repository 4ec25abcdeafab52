package httptransport

import (
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"claimchain/internal/claim"
	"claimchain/internal/credential"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/validation"
)

// Amounts and ids are uint256 on the ledger, so they are accepted either as
// JSON numbers or as decimal strings.

type CreatePolicyRequestRequest struct {
	PatientDID     string         `json:"patientDid" validate:"notblank"`
	PatientAddress string         `json:"patientAddress" validate:"notblank"`
	CoverageAmount json.Number    `json:"coverageAmount" validate:"required,uint256"`
	Details        map[string]any `json:"details,omitempty"`
}

func (r *CreatePolicyRequestRequest) Normalize() {
	r.PatientDID = strings.TrimSpace(r.PatientDID)
	r.PatientAddress = strings.TrimSpace(r.PatientAddress)
	r.CoverageAmount = json.Number(strings.TrimSpace(string(r.CoverageAmount)))
}

func (r *CreatePolicyRequestRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if err := validation.CheckStringLength("patientDid", r.PatientDID, validation.MaxDIDLength); err != nil {
		return err
	}
	return validation.CheckMapSize("details", len(r.Details), validation.MaxDetailsEntries)
}

// CredentialBody is the unsigned credential of a /vc/issue request.
type CredentialBody struct {
	Type              []string       `json:"type,omitempty"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	ExpirationDate    *time.Time     `json:"expirationDate,omitempty"`
}

type IssueVCRequest struct {
	Credential        *CredentialBody `json:"credential" validate:"required"`
	IssuerDID         string          `json:"issuerDid" validate:"notblank,did"`
	CreateOnchain     bool            `json:"createOnchain"`
	InsurerPrivateKey string          `json:"insurerPrivateKey,omitempty"`
	Beneficiary       string          `json:"beneficiary,omitempty" validate:"omitempty,eth_addr"`
	CoverageAmount    json.Number     `json:"coverageAmount,omitempty" validate:"omitempty,uint256"`
	RequestID         *int64          `json:"requestId,omitempty"`
}

func (r *IssueVCRequest) Normalize() {
	r.IssuerDID = strings.TrimSpace(r.IssuerDID)
	r.InsurerPrivateKey = strings.TrimSpace(r.InsurerPrivateKey)
	r.Beneficiary = strings.TrimSpace(r.Beneficiary)
	r.CoverageAmount = json.Number(strings.TrimSpace(string(r.CoverageAmount)))
}

func (r *IssueVCRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.CreateOnchain && r.InsurerPrivateKey == "" {
		return dErrors.New(dErrors.CodeMissingField, "insurerPrivateKey is required when createOnchain is set")
	}
	return validation.CheckStringLength("insurerPrivateKey", r.InsurerPrivateKey, validation.MaxPrivateKeyLength)
}

func (r *IssueVCRequest) credential() credential.Credential {
	return credential.Credential{
		Type:              r.Credential.Type,
		CredentialSubject: r.Credential.CredentialSubject,
		ExpirationDate:    r.Credential.ExpirationDate,
	}
}

type VerifyVCRequest struct {
	VCJWT string `json:"vcJwt" validate:"notblank"`
}

func (r *VerifyVCRequest) Normalize() {
	r.VCJWT = strings.TrimSpace(r.VCJWT)
}

func (r *VerifyVCRequest) Validate() error {
	return validation.Validate(r)
}

// File encodings accepted by /file/upload. With no encoding the data is
// decoded as base64 when it is valid base64 and stored as-is otherwise.
const (
	EncodingBase64 = "base64"
	EncodingRaw    = "raw"
	EncodingUTF8   = "utf8"
)

type FileUploadRequest struct {
	Data     string `json:"data" validate:"notblank"`
	Filename string `json:"filename,omitempty"`
	Encoding string `json:"encoding,omitempty" validate:"omitempty,oneof=base64 raw utf8"`
}

func (r *FileUploadRequest) Normalize() {
	r.Filename = strings.TrimSpace(r.Filename)
	r.Encoding = strings.ToLower(strings.TrimSpace(r.Encoding))
}

func (r *FileUploadRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("filename", r.Filename, validation.MaxFilenameLength)
}

type RegisterIdentityRequest struct {
	PrivateKey string `json:"privateKey" validate:"notblank"`
	Account    string `json:"account" validate:"notblank,eth_addr"`
	DID        string `json:"did" validate:"notblank,did"`
	Role       string `json:"role" validate:"notblank,oneof=patient insurer hospital"`
}

func (r *RegisterIdentityRequest) Normalize() {
	r.PrivateKey = strings.TrimSpace(r.PrivateKey)
	r.Account = strings.TrimSpace(r.Account)
	r.DID = strings.TrimSpace(r.DID)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

func (r *RegisterIdentityRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("did", r.DID, validation.MaxDIDLength)
}

type IssuePolicyRequest struct {
	PrivateKey     string      `json:"privateKey" validate:"notblank"`
	Beneficiary    string      `json:"beneficiary" validate:"notblank,eth_addr"`
	CoverageAmount json.Number `json:"coverageAmount" validate:"required,uint256"`
}

func (r *IssuePolicyRequest) Normalize() {
	r.PrivateKey = strings.TrimSpace(r.PrivateKey)
	r.Beneficiary = strings.TrimSpace(r.Beneficiary)
	r.CoverageAmount = json.Number(strings.TrimSpace(string(r.CoverageAmount)))
}

func (r *IssuePolicyRequest) Validate() error {
	return validation.Validate(r)
}

type SubmitClaimRequest struct {
	PrivateKey  string      `json:"privateKey" validate:"notblank"`
	PolicyID    json.Number `json:"policyId" validate:"required,uint256"`
	Beneficiary string      `json:"beneficiary" validate:"notblank,eth_addr"`
	Insurer     string      `json:"insurer" validate:"notblank,eth_addr"`
	IPFSHash    string      `json:"ipfsHash" validate:"notblank"`
	VCCID       string      `json:"vcCid" validate:"notblank"`
	Amount      json.Number `json:"amount" validate:"required,uint256"`
}

func (r *SubmitClaimRequest) Normalize() {
	r.PrivateKey = strings.TrimSpace(r.PrivateKey)
	r.PolicyID = json.Number(strings.TrimSpace(string(r.PolicyID)))
	r.Beneficiary = strings.TrimSpace(r.Beneficiary)
	r.Insurer = strings.TrimSpace(r.Insurer)
	r.IPFSHash = strings.TrimSpace(r.IPFSHash)
	r.VCCID = strings.TrimSpace(r.VCCID)
	r.Amount = json.Number(strings.TrimSpace(string(r.Amount)))
}

func (r *SubmitClaimRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("vcCid", r.VCCID, validation.MaxCIDLength)
}

type InsurerActionRequest struct {
	PrivateKey string      `json:"privateKey" validate:"notblank"`
	ClaimID    json.Number `json:"claimId" validate:"required,uint256"`
	Action     string      `json:"action" validate:"notblank"`
	Reason     string      `json:"reason,omitempty"`
}

func (r *InsurerActionRequest) Normalize() {
	r.PrivateKey = strings.TrimSpace(r.PrivateKey)
	r.ClaimID = json.Number(strings.TrimSpace(string(r.ClaimID)))
	r.Action = strings.TrimSpace(r.Action)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *InsurerActionRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength)
}

// action resolves the wire action name. Reject without a reason surfaces
// here as missing_reason.
func (r *InsurerActionRequest) action() (claim.Action, error) {
	action, err := claim.ParseAction(r.Action, r.Reason)
	if err != nil {
		return nil, err
	}
	return action, claim.Validate(action)
}

// uint256 converts an already validated amount.
func uint256(n json.Number) *big.Int {
	v, _ := validation.ParseUint256(string(n))
	return v
}
