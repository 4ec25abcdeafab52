package orchestrator

import (
	"context"
	"errors"

	"claimchain/internal/blob"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

// UploadFile stores data in the blob store and returns its CID.
func (s *Service) UploadFile(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", missing("data")
	}
	id, err := s.blobs.Put(ctx, data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "blob store unavailable")
	}
	s.logger.InfoContext(ctx, "file stored", "cid", id.String(), "size", len(data))
	return id.String(), nil
}

// GetFile returns the bytes stored under cidStr.
func (s *Service) GetFile(ctx context.Context, cidStr string) ([]byte, error) {
	if cidStr == "" {
		return nil, missing("cid")
	}
	id, err := blob.ParseCID(cidStr)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no file stored under "+cidStr)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "blob store unavailable")
	}
	return data, nil
}
