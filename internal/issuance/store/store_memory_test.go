package store

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimchain/internal/credential"
	"claimchain/internal/issuance/models"
	"claimchain/pkg/platform/sentinel"
	"claimchain/pkg/testutil"
)

func testRecord(requestID *int64, onchain *big.Int) *models.Record {
	return &models.Record{
		PolicyRef: models.NewPolicyRef(),
		RequestID: requestID,
		VC: &credential.VerifiableCredential{
			Issuer:            "did:key:insurer",
			CredentialSubject: map[string]any{"id": "did:key:p1"},
		},
		CID:             "bafkreitest",
		OnchainPolicyID: onchain,
		IssuedAt:        time.Now().UTC(),
	}
}

func TestInMemoryStoreSaveAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	requestID := int64(3)
	rec := testRecord(&requestID, big.NewInt(7))
	require.NoError(t, store.Save(ctx, rec))

	byRef, err := store.FindByPolicyRef(ctx, rec.PolicyRef)
	require.NoError(t, err)
	assert.Equal(t, rec.CID, byRef.CID)
	assert.Equal(t, int64(3), *byRef.RequestID)

	byOnchain, err := store.FindByOnchainPolicyID(ctx, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, rec.PolicyRef, byOnchain.PolicyRef)

	_, err = store.FindByPolicyRef(ctx, "pol_missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.FindByOnchainPolicyID(ctx, big.NewInt(8))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.FindByOnchainPolicyID(ctx, nil)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreRejectsDuplicates(t *testing.T) {
	store := New()
	ctx := context.Background()
	requestID := int64(1)
	first := testRecord(&requestID, big.NewInt(1))
	require.NoError(t, store.Save(ctx, first))

	sameRef := testRecord(nil, nil)
	sameRef.PolicyRef = first.PolicyRef
	assert.ErrorIs(t, store.Save(ctx, sameRef), sentinel.ErrAlreadyUsed)
	assert.ErrorIs(t, store.Save(ctx, sameRef), models.ErrPolicyRefTaken)

	sameRequest := int64(1)
	assert.ErrorIs(t, store.Save(ctx, testRecord(&sameRequest, nil)), models.ErrRequestIndexed)

	sameOnchain := testRecord(nil, big.NewInt(1))
	assert.ErrorIs(t, store.Save(ctx, sameOnchain), sentinel.ErrAlreadyUsed)
	assert.ErrorIs(t, store.Save(ctx, sameOnchain), models.ErrOnchainPolicyIndexed)

	assert.NoError(t, store.Save(ctx, testRecord(nil, nil)))
}

func TestInMemoryStoreConcurrentSaveForOneRequest(t *testing.T) {
	store := New()
	ctx := context.Background()

	res := testutil.RunConcurrent(16, func(int) error {
		requestID := int64(42)
		return store.Save(ctx, testRecord(&requestID, nil))
	})
	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(15), res.Conflicts)
}
