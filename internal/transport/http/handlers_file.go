package httptransport

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/httputil"
	"claimchain/pkg/requestcontext"
)

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FileUploadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	data, err := decodeFileData(req.Data, req.Encoding)
	if err != nil {
		h.fail(ctx, w, "invalid file data", err)
		return
	}

	cid, err := h.service.UploadFile(ctx, data)
	if err != nil {
		h.fail(ctx, w, "failed to store file", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FileUploadResponse{CID: cid, Filename: req.Filename, Success: true})
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.service.GetFile(ctx, chi.URLParam(r, "cid"))
	if err != nil {
		h.fail(ctx, w, "failed to load file", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FileResponse{
		Data:    base64.StdEncoding.EncodeToString(data),
		Success: true,
	})
}

func decodeFileData(data, encoding string) ([]byte, error) {
	switch encoding {
	case EncodingRaw, EncodingUTF8:
		return []byte(data), nil
	case EncodingBase64:
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "data is not valid base64")
		}
		return decoded, nil
	default:
		if decoded, err := base64.StdEncoding.DecodeString(data); err == nil && len(decoded) > 0 {
			return decoded, nil
		}
		return []byte(data), nil
	}
}
