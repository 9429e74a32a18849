package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

func storedAllocation(t *testing.T, db *gorm.DB, outletID, itemID uuid.UUID, ref inventory.Reference, qty int) *inventory.Allocation {
	t.Helper()

	alloc, err := inventory.NewAllocation(outletID, itemID, ref, qty)
	require.NoError(t, err)
	require.NoError(t, db.Create(alloc).Error)
	return alloc
}

func TestGormAllocationRepository_FindActiveByItemAndReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	itemID := uuid.New()
	ref := inventory.SubscriptionRef(uuid.New())

	t.Run("returns nil without error when no allocation exists", func(t *testing.T) {
		alloc, err := repo.FindActiveByItemAndReference(ctx, outletID, itemID, ref)
		require.NoError(t, err)
		assert.Nil(t, alloc)
	})

	stored := storedAllocation(t, db, outletID, itemID, ref, 12)

	t.Run("finds the active allocation", func(t *testing.T) {
		alloc, err := repo.FindActiveByItemAndReference(ctx, outletID, itemID, ref)
		require.NoError(t, err)
		require.NotNil(t, alloc)
		assert.Equal(t, stored.ID, alloc.ID)
		assert.Equal(t, 12, alloc.AllocatedQuantity)
	})

	t.Run("ignores deactivated allocations", func(t *testing.T) {
		stored.Deactivate()
		require.NoError(t, repo.Save(ctx, stored))

		alloc, err := repo.FindActiveByItemAndReference(ctx, outletID, itemID, ref)
		require.NoError(t, err)
		assert.Nil(t, alloc)
	})
}

func TestGormAllocationRepository_FindActiveByReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	ref := inventory.EventRef(uuid.New())

	storedAllocation(t, db, outletID, uuid.New(), ref, 30)
	storedAllocation(t, db, outletID, uuid.New(), ref, 8)
	storedAllocation(t, db, outletID, uuid.New(), inventory.EventRef(uuid.New()), 99)

	allocs, err := repo.FindActiveByReference(ctx, outletID, ref)
	require.NoError(t, err)
	assert.Len(t, allocs, 2)
}

func TestGormAllocationRepository_FindActiveByItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	itemID := uuid.New()

	first := storedAllocation(t, db, outletID, itemID, inventory.SubscriptionRef(uuid.New()), 5)
	storedAllocation(t, db, outletID, itemID, inventory.EventRef(uuid.New()), 7)

	allocs, err := repo.FindActiveByItem(ctx, outletID, itemID)
	require.NoError(t, err)
	require.Len(t, allocs, 2)

	first.Deactivate()
	require.NoError(t, repo.Save(ctx, first))

	allocs, err = repo.FindActiveByItem(ctx, outletID, itemID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, 7, allocs[0].AllocatedQuantity)
}

func TestGormAllocationRepository_FindForOutlet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	itemID := uuid.New()

	active := storedAllocation(t, db, outletID, itemID, inventory.SubscriptionRef(uuid.New()), 4)
	closed := storedAllocation(t, db, outletID, itemID, inventory.EventRef(uuid.New()), 6)
	closed.Deactivate()
	require.NoError(t, repo.Save(ctx, closed))

	t.Run("returns both active and closed by default", func(t *testing.T) {
		allocs, err := repo.FindForOutlet(ctx, outletID, inventory.AllocationFilter{})
		require.NoError(t, err)
		assert.Len(t, allocs, 2)
	})

	t.Run("active only", func(t *testing.T) {
		allocs, err := repo.FindForOutlet(ctx, outletID, inventory.AllocationFilter{ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, allocs, 1)
		assert.Equal(t, active.ID, allocs[0].ID)
	})

	t.Run("filters by reference type", func(t *testing.T) {
		eventType := inventory.ReferenceTypeEvent
		allocs, err := repo.FindForOutlet(ctx, outletID, inventory.AllocationFilter{ReferenceType: &eventType})
		require.NoError(t, err)
		require.Len(t, allocs, 1)
		assert.Equal(t, closed.ID, allocs[0].ID)
	})
}

func TestGormAllocationRepository_SaveUpdatesGrant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	itemID := uuid.New()
	ref := inventory.SubscriptionRef(uuid.New())

	alloc := storedAllocation(t, db, outletID, itemID, ref, 10)
	require.NoError(t, alloc.Grant(5))
	require.NoError(t, repo.Save(ctx, alloc))

	reloaded, err := repo.FindByID(ctx, alloc.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, reloaded.AllocatedQuantity)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormAllocationRepository_CountActiveForOutlet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAllocationRepository(db)
	ctx := context.Background()
	outletID := uuid.New()

	storedAllocation(t, db, outletID, uuid.New(), inventory.SubscriptionRef(uuid.New()), 3)
	closed := storedAllocation(t, db, outletID, uuid.New(), inventory.SubscriptionRef(uuid.New()), 2)
	closed.Deactivate()
	require.NoError(t, repo.Save(ctx, closed))
	storedAllocation(t, db, uuid.New(), uuid.New(), inventory.SubscriptionRef(uuid.New()), 1)

	count, err := repo.CountActiveForOutlet(ctx, outletID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
