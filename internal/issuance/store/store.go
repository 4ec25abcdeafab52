package store

import (
	"context"
	"math/big"

	"claimchain/internal/issuance/models"
)

// Store indexes issued credentials by policy reference and ledger policy id.
//
// Error contract:
//   - ErrNotFound when no record matches
//   - ErrAlreadyUsed when the policy reference, request or ledger policy id
//     is already indexed
type Store interface {
	Save(ctx context.Context, rec *models.Record) error
	FindByPolicyRef(ctx context.Context, policyRef string) (*models.Record, error)
	FindByOnchainPolicyID(ctx context.Context, policyID *big.Int) (*models.Record, error)
}
