package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimchain/internal/orchestrator"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/httputil"
	"claimchain/pkg/platform/validation"
	"claimchain/pkg/requestcontext"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	txHash, err := h.service.RegisterIdentity(ctx, orchestrator.RegisterIdentityCommand{
		PrivateKey: req.PrivateKey,
		Account:    req.Account,
		DID:        req.DID,
		Role:       req.Role,
	})
	if err != nil {
		h.fail(ctx, w, "failed to register identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RegisterIdentityResponse{Success: true, TxHash: txHash})
}

func (h *Handler) handleIssuePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssuePolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.IssuePolicy(ctx, orchestrator.IssuePolicyCommand{
		PrivateKey:     req.PrivateKey,
		Beneficiary:    req.Beneficiary,
		CoverageAmount: uint256(req.CoverageAmount),
	})
	if err != nil {
		h.fail(ctx, w, "failed to issue policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, IssuePolicyResponse{
		Success:  true,
		PolicyID: bigString(result.PolicyID),
		TxHash:   result.TxHash,
		Warnings: toWarnings(result.Warnings),
	})
}

func (h *Handler) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitClaim(ctx, orchestrator.SubmitClaimCommand{
		PrivateKey:   req.PrivateKey,
		PolicyID:     uint256(req.PolicyID),
		Beneficiary:  req.Beneficiary,
		Insurer:      req.Insurer,
		EvidenceHash: req.IPFSHash,
		VCCID:        req.VCCID,
		Amount:       uint256(req.Amount),
	})
	if err != nil {
		h.fail(ctx, w, "failed to submit claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitClaimResponse{
		Success:  true,
		ClaimID:  bigString(result.ClaimID),
		TxHash:   result.TxHash,
		Warnings: toWarnings(result.Warnings),
	})
}

func (h *Handler) handleInsurerAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InsurerActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	action, err := req.action()
	if err != nil {
		h.fail(ctx, w, "invalid insurer action", err)
		return
	}

	result, err := h.service.InsurerAction(ctx, orchestrator.InsurerActionCommand{
		PrivateKey: req.PrivateKey,
		ClaimID:    uint256(req.ClaimID),
		Action:     action,
	})
	if err != nil {
		h.fail(ctx, w, "insurer action failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, InsurerActionResponse{
		Success: true,
		TxHash:  result.TxHash,
		Action:  result.Action,
		Status:  result.Status.String(),
	})
}

func (h *Handler) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claimID, ok := validation.ParseUint256(chi.URLParam(r, "claimId"))
	if !ok {
		h.fail(ctx, w, "invalid claim id", dErrors.New(dErrors.CodeValidation, "claimId must be a non-negative integer"))
		return
	}
	c, err := h.service.GetClaim(ctx, claimID)
	if err != nil {
		h.fail(ctx, w, "failed to load claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{Claim: toClaim(c), Success: true})
}
