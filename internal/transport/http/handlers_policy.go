package httptransport

import (
	"context"
	"net/http"

	"claimchain/internal/orchestrator"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/httputil"
	"claimchain/pkg/requestcontext"
)

func (h *Handler) handleCreateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	did, err := h.service.CreateDID(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to create did", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DIDResponse{DID: did, Success: true})
}

func (h *Handler) handleCreatePolicyRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePolicyRequestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreatePolicyRequest(ctx, orchestrator.CreatePolicyRequestCommand{
		PatientDID:     req.PatientDID,
		PatientAddress: req.PatientAddress,
		CoverageAmount: uint256(req.CoverageAmount),
		Details:        req.Details,
	})
	if err != nil {
		h.fail(ctx, w, "failed to create policy request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PolicyRequestResponse{Request: toPolicyRequest(created), Success: true})
}

func (h *Handler) handleListPolicyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.service.ListPolicyRequests(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list policy requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PolicyRequestListResponse{Requests: toPolicyRequests(requests), Success: true})
}

// fail logs err at a level matching its HTTP status and writes the error body.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err))
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"status", status,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
