package store

import (
	"context"

	"claimchain/internal/policyrequest/models"
)

// Store is the append-only policy request queue.
//
// Error contract:
//   - ErrNotFound when the request does not exist
//   - ErrInvalidState when an update is not the pending to issued transition
//   - ErrInvalidInput for a target status other than issued
//   - wrapped errors for infrastructure failures
type Store interface {
	Append(ctx context.Context, req *models.PolicyRequest) (*models.PolicyRequest, error)
	List(ctx context.Context) ([]*models.PolicyRequest, error)
	FindByID(ctx context.Context, id int64) (*models.PolicyRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status, iss models.Issuance) (*models.PolicyRequest, error)
}
