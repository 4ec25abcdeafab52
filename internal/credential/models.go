package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Status of the credential service.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "initializing"
	}
}

// Status is the readiness snapshot returned by Service.Status. Err is set only
// when State is StateFailed.
type Status struct {
	State State
	Err   error
}

// Credential is the unsigned credential supplied by the caller.
type Credential struct {
	Type              []string
	CredentialSubject map[string]any
	ExpirationDate    *time.Time
}

// VerifiableCredential is the signed document persisted to the blob store.
type VerifiableCredential struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	Issuer            string         `json:"issuer"`
	IssuanceDate      time.Time      `json:"issuanceDate"`
	ExpirationDate    *time.Time     `json:"expirationDate,omitempty"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	Proof             Proof          `json:"proof"`
}

type Proof struct {
	Type string `json:"type"`
	JWT  string `json:"jwt"`
}

// Subject returns the credential subject DID, if any.
func (vc *VerifiableCredential) Subject() string {
	id, _ := vc.CredentialSubject["id"].(string)
	return id
}

// VerificationResult reports the outcome of a JWT-VC verification. An
// unverifiable credential is a result, not an error.
type VerificationResult struct {
	Verified   bool                  `json:"verified"`
	Issuer     string                `json:"issuer,omitempty"`
	Subject    string                `json:"subject,omitempty"`
	Credential *VerifiableCredential `json:"credential,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// vcClaims is the JWT payload of a JWT-VC.
type vcClaims struct {
	jwt.RegisteredClaims
	VC vcPayload `json:"vc"`
}

type vcPayload struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

const (
	contextV1    = "https://www.w3.org/2018/credentials/v1"
	typeVC       = "VerifiableCredential"
	proofTypeJWT = "JwtProof2020"
)
