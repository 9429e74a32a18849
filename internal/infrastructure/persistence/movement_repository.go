package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM. The
// movements table is an append-only ledger: this repository exposes Create
// and reads only, and the Movement entity blocks updates and deletes with
// ORM hooks.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	var m inventory.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByItem finds movements for an item, newest first by default
func (r *GormMovementRepository) FindByItem(ctx context.Context, outletID, itemID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Movement{}).
			Where("outlet_id = ? AND item_id = ?", outletID, itemID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByItemChronological finds all movements for an item ordered by
// occurrence time, oldest first, for ledger replay. Entries sharing a
// timestamp are ordered by insertion time so replay stays deterministic.
func (r *GormMovementRepository) FindByItemChronological(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND item_id = ?", outletID, itemID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements linked to a source document
func (r *GormMovementRepository) FindByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND reference_type = ? AND reference_id = ?", outletID, ref.Type, ref.ID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindForOutlet finds all movements for an outlet
func (r *GormMovementRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Movement{}).
			Where("outlet_id = ?", outletID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create appends a new ledger entry
func (r *GormMovementRepository) Create(ctx context.Context, m *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// CountForOutlet counts movements matching the filter
func (r *GormMovementRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Movement{}).Where("outlet_id = ?", outletID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByItem counts movements for an item
func (r *GormMovementRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasReferenceMovements reports whether any movement for the item carries a
// customer-held reference (subscription or event)
func (r *GormMovementRepository) HasReferenceMovements(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Where("item_id = ? AND reference_type IN ?", itemID,
			[]inventory.ReferenceType{inventory.ReferenceTypeSubscription, inventory.ReferenceTypeEvent}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumOutstandingForReference computes the quantity still held by a customer
// for one (item, reference) pair: outflows minus the returns and writeoffs
// booked against the same reference. Always derived from the ledger, never
// read from a stored counter.
func (r *GormMovementRepository) SumOutstandingForReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (int, error) {
	var result struct {
		Outstanding int
	}
	err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Select(`COALESCE(SUM(CASE
			WHEN category = ? THEN quantity
			WHEN category IN ? THEN -quantity
			ELSE 0 END), 0) AS outstanding`,
			inventory.MovementCategoryOutflow,
			[]inventory.MovementCategory{inventory.MovementCategoryReturn, inventory.MovementCategoryWriteoff}).
		Where("outlet_id = ? AND item_id = ? AND reference_type = ? AND reference_id = ?",
			outletID, itemID, ref.Type, ref.ID).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return result.Outstanding, nil
}

// applyFilter applies filter options to the query, pagination included
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter inventory.MovementFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	return applyPagingAndOrder(query, filter.Filter, MovementSortFields, "occurred_at", "DESC")
}

// applyFilterWithoutPagination applies the ledger-specific filter options
func (r *GormMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter inventory.MovementFilter) *gorm.DB {
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Subtype != nil {
		query = query.Where("subtype = ?", *filter.Subtype)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.StartDate != nil {
		query = query.Where("occurred_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("occurred_at <= ?", *filter.EndDate)
	}
	return query
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
