package httptransport

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/go-chi/chi/v5"

	"claimchain/internal/claim"
	"claimchain/internal/credential"
	issuance "claimchain/internal/issuance/models"
	"claimchain/internal/orchestrator"
	policyrequest "claimchain/internal/policyrequest/models"
	"claimchain/pkg/platform/middleware/request"
	"claimchain/pkg/platform/validation"
)

// Service is the orchestrator surface the HTTP layer delegates to.
type Service interface {
	CreateDID(ctx context.Context) (string, error)
	CreatePolicyRequest(ctx context.Context, cmd orchestrator.CreatePolicyRequestCommand) (*policyrequest.PolicyRequest, error)
	ListPolicyRequests(ctx context.Context) ([]*policyrequest.PolicyRequest, error)
	IssueVC(ctx context.Context, cmd orchestrator.IssueVCCommand) (*orchestrator.IssueVCResult, error)
	GetCredential(ctx context.Context, key string) (*issuance.Record, error)
	VerifyVC(ctx context.Context, vcJWT string) (*credential.VerificationResult, error)
	UploadFile(ctx context.Context, data []byte) (string, error)
	GetFile(ctx context.Context, cid string) ([]byte, error)
	RegisterIdentity(ctx context.Context, cmd orchestrator.RegisterIdentityCommand) (string, error)
	IssuePolicy(ctx context.Context, cmd orchestrator.IssuePolicyCommand) (*orchestrator.IssuePolicyResult, error)
	SubmitClaim(ctx context.Context, cmd orchestrator.SubmitClaimCommand) (*orchestrator.SubmitClaimResult, error)
	InsurerAction(ctx context.Context, cmd orchestrator.InsurerActionCommand) (*orchestrator.InsurerActionResult, error)
	GetClaim(ctx context.Context, claimID *big.Int) (*claim.Claim, error)
}

// Handler is the thin HTTP layer. It decodes and validates requests, calls
// the orchestrator and maps results to camelCase JSON.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(validation.MaxBodySize))

		r.Post("/did/create", h.handleCreateDID)

		r.Post("/policy/request", h.handleCreatePolicyRequest)
		r.Get("/policy/requests", h.handleListPolicyRequests)

		r.Post("/vc/issue", h.handleIssueVC)
		r.Post("/vc/verify", h.handleVerifyVC)
		r.Get("/vc/{policyId}", h.handleGetVC)

		r.Get("/file/{cid}", h.handleGetFile)

		r.Post("/onchain/register", h.handleRegister)
		r.Post("/onchain/issuePolicy", h.handleIssuePolicy)
		r.Post("/onchain/submitClaim", h.handleSubmitClaim)
		r.Post("/onchain/insurerAction", h.handleInsurerAction)
		r.Get("/onchain/claim/{claimId}", h.handleGetClaim)
	})

	r.With(request.BodyLimit(validation.MaxUploadSize)).Post("/file/upload", h.handleFileUpload)
}
