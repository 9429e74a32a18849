package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForOutlet finds an item by ID within an outlet
func (r *GormItemRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND id = ?", outletID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate finds an item by ID within an outlet, taking a row lock
// for the duration of the surrounding transaction. Callers must run inside
// a transaction scope; outside one the lock has no effect.
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("outlet_id = ? AND id = ?", outletID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByName finds an item by its exact name within an outlet
func (r *GormItemRepository) FindByName(ctx context.Context, outletID uuid.UUID, name string) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND name = ?", outletID, name).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForOutlet finds all items for an outlet
func (r *GormItemRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) ([]inventory.Item, error) {
	var items []inventory.Item
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Item{}).
			Where("outlet_id = ?", outletID),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByIDs finds multiple items by their IDs
func (r *GormItemRepository) FindByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return []inventory.Item{}, nil
	}

	var items []inventory.Item
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND id IN ?", outletID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActive finds the countable items of an outlet (every lifecycle except
// archived)
func (r *GormItemRepository) FindActive(ctx context.Context, outletID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	var items []inventory.Item
	query := r.db.WithContext(ctx).Model(&inventory.Item{}).
		Where("outlet_id = ? AND lifecycle <> ?", outletID, inventory.LifecycleArchived)
	query = applyPagingAndOrder(query, filter, ItemSortFields, "name", "ASC")

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindArchiveCandidates finds discontinued items with zero total quantity and
// no movement since the given cutoff
func (r *GormItemRepository) FindArchiveCandidates(ctx context.Context, outletID uuid.UUID, idleSince time.Time) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND lifecycle = ? AND total_quantity = 0", outletID, inventory.LifecycleDiscontinued).
		Where("last_movement_at IS NULL OR last_movement_at <= ?", idleSince).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DistinctOutlets lists every outlet that has at least one item. Used by the
// periodic archive sweep to fan out per outlet.
func (r *GormItemRepository) DistinctOutlets(ctx context.Context) ([]uuid.UUID, error) {
	var outlets []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Distinct("outlet_id").
		Pluck("outlet_id", &outlets).Error; err != nil {
		return nil, err
	}
	return outlets, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"name":                      item.Name,
			"category":                  item.Category,
			"material":                  item.Material,
			"unit":                      item.Unit,
			"lifecycle":                 item.Lifecycle,
			"is_active":                 item.IsActive,
			"available_quantity":        item.AvailableQuantity,
			"allocated_quantity":        item.AllocatedQuantity,
			"damaged_quantity":          item.DamagedQuantity,
			"in_repair_quantity":        item.InRepairQuantity,
			"lost_quantity":             item.LostQuantity,
			"total_quantity":            item.TotalQuantity,
			"opening_balance_confirmed": item.OpeningBalanceConfirmed,
			"replacement_cost":          item.ReplacementCost,
			"last_movement_at":          item.LastMovementAt,
			"version":                   item.Version,
			"updated_at":                item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Item was modified by another transaction")
	}
	return nil
}

// Delete hard-deletes an item together with its ledger rows. The service
// layer has already verified the item never moved against a customer
// reference, so the trail being removed is inflow and correction history
// only. Raw SQL keeps the ledger's immutability hooks out of this one
// guarded cascade.
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM movements WHERE item_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&inventory.Item{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForOutlet counts items matching the filter
func (r *GormItemRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Item{}).Where("outlet_id = ?", outletID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks whether an item name is taken within an outlet
func (r *GormItemRepository) ExistsByName(ctx context.Context, outletID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Where("outlet_id = ? AND name = ?", outletID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query, pagination included
func (r *GormItemRepository) applyFilter(query *gorm.DB, filter inventory.ItemFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	return applyPagingAndOrder(query, filter.Filter, ItemSortFields, "name", "ASC")
}

// applyFilterWithoutPagination applies the item-specific filter options
func (r *GormItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter inventory.ItemFilter) *gorm.DB {
	if filter.Lifecycle != nil {
		query = query.Where("lifecycle = ?", *filter.Lifecycle)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Material != "" {
		query = query.Where("material = ?", filter.Material)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.HasAvailable {
		query = query.Where("available_quantity > 0")
	}
	if filter.HasDamaged {
		query = query.Where("damaged_quantity > 0")
	}
	return query
}

// applyPagingAndOrder applies pagination and whitelisted ordering to a query
func applyPagingAndOrder(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField, defaultDir string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	orderDir := defaultDir
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormItemRepository implements ItemRepository
var _ inventory.ItemRepository = (*GormItemRepository)(nil)
