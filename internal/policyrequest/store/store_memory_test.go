package store

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimchain/internal/policyrequest/models"
	"claimchain/pkg/platform/sentinel"
	"claimchain/pkg/testutil"
)

func newRequest(t *testing.T, did string) *models.PolicyRequest {
	t.Helper()
	req, err := models.NewPolicyRequest(did, "0xAAA", big.NewInt(1000), map[string]any{"plan": "basic"}, time.Now())
	require.NoError(t, err)
	return req
}

func TestInMemoryStoreAppendAndList(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		stored, err := store.Append(ctx, newRequest(t, fmt.Sprintf("did:key:p%d", i)))
		require.NoError(t, err)
		assert.Equal(t, int64(i), stored.ID)
		assert.Equal(t, models.StatusPending, stored.Status)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	seen := map[int64]bool{}
	for i, req := range list {
		assert.Equal(t, fmt.Sprintf("did:key:p%d", i+1), req.PatientDID, "insertion order")
		assert.False(t, seen[req.ID], "ids are unique")
		seen[req.ID] = true
	}

	// Returned values are copies.
	list[0].PatientDID = "mutated"
	again, _ := store.FindByID(ctx, 1)
	assert.Equal(t, "did:key:p1", again.PatientDID)
}

func TestInMemoryStoreListEmpty(t *testing.T) {
	list, err := New().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestInMemoryStoreUpdateStatus(t *testing.T) {
	store := New()
	ctx := context.Background()
	stored, err := store.Append(ctx, newRequest(t, "did:key:p1"))
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, 99, models.StatusIssued, models.Issuance{})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.UpdateStatus(ctx, stored.ID, models.StatusPending, models.Issuance{})
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)

	issuedAt := time.Now()
	updated, err := store.UpdateStatus(ctx, stored.ID, models.StatusIssued, models.Issuance{
		PolicyRef: "pol_abc", VCCID: "bafkvc", IssuedAt: issuedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, updated.Status)
	assert.Equal(t, "pol_abc", updated.PolicyRef)
	assert.Equal(t, "bafkvc", updated.VCCID)

	_, err = store.UpdateStatus(ctx, stored.ID, models.StatusIssued, models.Issuance{PolicyRef: "pol_other"})
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	found, err := store.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "pol_abc", found.PolicyRef)
}

func TestInMemoryStoreConcurrentIssueSucceedsOnce(t *testing.T) {
	store := New()
	ctx := context.Background()
	stored, err := store.Append(ctx, newRequest(t, "did:key:p1"))
	require.NoError(t, err)

	res := testutil.RunConcurrent(20, func(i int) error {
		_, err := store.UpdateStatus(ctx, stored.ID, models.StatusIssued, models.Issuance{PolicyRef: fmt.Sprintf("pol_%d", i)})
		return err
	})
	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(19), res.Conflicts)
	assert.Zero(t, res.Errors)
}
