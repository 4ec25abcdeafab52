package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "claimchain/pkg/domain-errors"
)

type claimBody struct {
	ClaimID string `json:"claimId"`
	Reason  string `json:"reason"`

	normalized bool
}

func (r *claimBody) Normalize() {
	r.normalized = true
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *claimBody) Validate() error {
	if r.ClaimID == "" {
		return dErrors.New(dErrors.CodeMissingField, "claimId is required")
	}
	if r.ClaimID == "plain" {
		return errors.New("plain failure")
	}
	return nil
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"claimId":"7","reason":"  late  "}`))
		w := httptest.NewRecorder()

		body, ok := DecodeAndPrepare[claimBody](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.True(t, body.normalized)
		assert.Equal(t, "late", body.Reason)
	})

	t.Run("invalid json is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[claimBody](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "bad_request", resp.Error)
		assert.False(t, resp.Success)
	})

	t.Run("domain validation code is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[claimBody](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing_field", decodeResponse(t, w).Error)
	})

	t.Run("plain validation errors become validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"claimId":"plain"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[claimBody](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, "validation_error", decodeResponse(t, w).Error)
	})
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeMissingReason:         http.StatusBadRequest,
		dErrors.CodeInvalidKey:            http.StatusBadRequest,
		dErrors.CodeInvalidTransition:     http.StatusConflict,
		dErrors.CodeTransactionReverted:   http.StatusConflict,
		dErrors.CodeTransactionTimeout:    http.StatusGatewayTimeout,
		dErrors.CodeDependencyUnavailable: http.StatusServiceUnavailable,
		dErrors.CodeNotFound:              http.StatusNotFound,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(code, "boom"))
		assert.Equal(t, status, w.Code, code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "boom", resp.ErrorDescription)
		assert.False(t, resp.Success)
	}

	w := httptest.NewRecorder()
	WriteError(w, errors.New("unexpected"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decodeResponse(t, w).Error)
}
