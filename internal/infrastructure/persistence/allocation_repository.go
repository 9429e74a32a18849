package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	var alloc inventory.Allocation
	if err := r.db.WithContext(ctx).First(&alloc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// FindActiveByItemAndReference finds the active allocation for one
// (item, reference) pair. Returns nil without error when none exists.
func (r *GormAllocationRepository) FindActiveByItemAndReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (*inventory.Allocation, error) {
	var alloc inventory.Allocation
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND item_id = ? AND reference_type = ? AND reference_id = ? AND active = ?",
			outletID, itemID, ref.Type, ref.ID, true).
		First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alloc, nil
}

// FindActiveByReference finds all active allocations for a source document
func (r *GormAllocationRepository) FindActiveByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Allocation, error) {
	var allocs []inventory.Allocation
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND reference_type = ? AND reference_id = ? AND active = ?",
			outletID, ref.Type, ref.ID, true).
		Order("created_at ASC").
		Find(&allocs).Error; err != nil {
		return nil, err
	}
	return allocs, nil
}

// FindActiveByItem finds all active allocations for an item
func (r *GormAllocationRepository) FindActiveByItem(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Allocation, error) {
	var allocs []inventory.Allocation
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND item_id = ? AND active = ?", outletID, itemID, true).
		Order("created_at ASC").
		Find(&allocs).Error; err != nil {
		return nil, err
	}
	return allocs, nil
}

// FindForOutlet finds allocations for an outlet
func (r *GormAllocationRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AllocationFilter) ([]inventory.Allocation, error) {
	var allocs []inventory.Allocation
	query := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Where("outlet_id = ?", outletID)

	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	query = applyPagingAndOrder(query, filter.Filter, AllocationSortFields, "created_at", "DESC")

	if err := query.Find(&allocs).Error; err != nil {
		return nil, err
	}
	return allocs, nil
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, alloc *inventory.Allocation) error {
	return r.db.WithContext(ctx).Save(alloc).Error
}

// CountActiveForOutlet counts active allocations for an outlet
func (r *GormAllocationRepository) CountActiveForOutlet(ctx context.Context, outletID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Allocation{}).
		Where("outlet_id = ? AND active = ?", outletID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ inventory.AllocationRepository = (*GormAllocationRepository)(nil)
