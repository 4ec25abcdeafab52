package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimchain/internal/orchestrator"
	"claimchain/pkg/platform/httputil"
	"claimchain/pkg/requestcontext"
)

func (h *Handler) handleIssueVC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueVCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd := orchestrator.IssueVCCommand{
		Credential:        req.credential(),
		IssuerDID:         req.IssuerDID,
		CreateOnchain:     req.CreateOnchain,
		InsurerPrivateKey: req.InsurerPrivateKey,
		Beneficiary:       req.Beneficiary,
		RequestID:         req.RequestID,
	}
	if req.CoverageAmount != "" {
		cmd.CoverageAmount = uint256(req.CoverageAmount)
	}

	result, err := h.service.IssueVC(ctx, cmd)
	if err != nil {
		h.fail(ctx, w, "failed to issue credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, IssueVCResponse{
		VC:              result.VC,
		CID:             result.CID,
		PolicyRef:       result.PolicyRef,
		OnchainPolicyID: bigString(result.OnchainPolicyID),
		TxHash:          result.TxHash,
		Request:         toPolicyRequest(result.Request),
		Warnings:        toWarnings(result.Warnings),
		Success:         true,
	})
}

// handleGetVC resolves {policyId} as a policy reference or an on-chain policy id.
func (h *Handler) handleGetVC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.service.GetCredential(ctx, chi.URLParam(r, "policyId"))
	if err != nil {
		h.fail(ctx, w, "failed to load credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(rec))
}

func (h *Handler) handleVerifyVC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyVCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.VerifyVC(ctx, req.VCJWT)
	if err != nil {
		h.fail(ctx, w, "failed to verify credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyVCResponse{Result: result, Success: true})
}
