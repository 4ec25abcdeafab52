// Package orchestrator sequences the policy and claim lifecycle across the
// credential service, the blob store and the ledger.
//
// Composite operations run their steps in order. Once an off-chain artifact
// is durable it is never rolled back: later, optional steps that fail are
// reported as SoftWarnings on a successful result.
package orchestrator

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ipfs/go-cid"

	"claimchain/internal/credential"
	"claimchain/internal/events"
	issuance "claimchain/internal/issuance/models"
	"claimchain/internal/ledger"
	"claimchain/internal/platform/metrics"
	"claimchain/internal/platform/tracer"
	policyrequest "claimchain/internal/policyrequest/models"
)

// CredentialService signs, verifies and mints identities.
type CredentialService interface {
	WaitReady(ctx context.Context) error
	CreateDID(ctx context.Context) (string, error)
	Issue(ctx context.Context, issuerDID string, cred credential.Credential) (*credential.VerifiableCredential, error)
	Verify(ctx context.Context, vcJWT string) (*credential.VerificationResult, error)
	VerifyDocument(ctx context.Context, vc *credential.VerifiableCredential) (*credential.VerificationResult, error)
}

// BlobStore is content-addressed storage.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
}

// Ledger is the contract gateway.
type Ledger interface {
	Signer(privateKey string) (*ledger.Signer, error)
	Contract(name ledger.ContractName, signer *ledger.Signer) (*ledger.Contract, error)
	SubmitAndConfirm(ctx context.Context, c *ledger.Contract, method string, args ...any) (*types.Receipt, error)
	CallInto(ctx context.Context, c *ledger.Contract, dst any, method string, args ...any) error
}

// PolicyRequestStore is the policy request queue.
type PolicyRequestStore interface {
	Append(ctx context.Context, req *policyrequest.PolicyRequest) (*policyrequest.PolicyRequest, error)
	List(ctx context.Context) ([]*policyrequest.PolicyRequest, error)
	FindByID(ctx context.Context, id int64) (*policyrequest.PolicyRequest, error)
	UpdateStatus(ctx context.Context, id int64, status policyrequest.Status, iss policyrequest.Issuance) (*policyrequest.PolicyRequest, error)
}

// CredentialIndex records issued credentials.
type CredentialIndex interface {
	Save(ctx context.Context, rec *issuance.Record) error
	FindByPolicyRef(ctx context.Context, policyRef string) (*issuance.Record, error)
	FindByOnchainPolicyID(ctx context.Context, policyID *big.Int) (*issuance.Record, error)
}

// EventPublisher emits lifecycle events, best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Service is the policy and claim lifecycle orchestrator.
type Service struct {
	credentials CredentialService
	blobs       BlobStore
	ledger      Ledger
	requests    PolicyRequestStore
	issued      CredentialIndex

	publisher EventPublisher
	strictVC  bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithStrictVCVerification makes a failed claim credential check an error
// instead of a SoftWarning.
func WithStrictVCVerification(strict bool) Option {
	return func(s *Service) { s.strictVC = strict }
}

// New creates the orchestrator. Panics if a required dependency is nil.
func New(
	credentials CredentialService,
	blobs BlobStore,
	gateway Ledger,
	requests PolicyRequestStore,
	issued CredentialIndex,
	opts ...Option,
) *Service {
	if credentials == nil {
		panic("orchestrator.New: credential service is required")
	}
	if blobs == nil {
		panic("orchestrator.New: blob store is required")
	}
	if gateway == nil {
		panic("orchestrator.New: ledger is required")
	}
	if requests == nil {
		panic("orchestrator.New: policy request store is required")
	}
	if issued == nil {
		panic("orchestrator.New: credential index is required")
	}

	s := &Service{
		credentials: credentials,
		blobs:       blobs,
		ledger:      gateway,
		requests:    requests,
		issued:      issued,
		publisher:   events.Noop{},
		logger:      slog.Default(),
		tracer:      tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
