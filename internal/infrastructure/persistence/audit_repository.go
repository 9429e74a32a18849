package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

// GormAuditRepository implements AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// FindByID finds an audit by its ID, lines included
func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Audit, error) {
	var audit inventory.Audit
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&audit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &audit, nil
}

// FindByIDForOutlet finds an audit by ID within an outlet, lines included
func (r *GormAuditRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Audit, error) {
	var audit inventory.Audit
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("outlet_id = ? AND id = ?", outletID, id).
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &audit, nil
}

// FindByPeriod finds the audit for one outlet and period
func (r *GormAuditRepository) FindByPeriod(ctx context.Context, outletID uuid.UUID, period string) (*inventory.Audit, error) {
	var audit inventory.Audit
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("outlet_id = ? AND period = ?", outletID, period).
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &audit, nil
}

// FindByStatus finds audits with a specific status, newest period first
func (r *GormAuditRepository) FindByStatus(ctx context.Context, outletID uuid.UUID, status inventory.AuditStatus, filter shared.Filter) ([]inventory.Audit, error) {
	var audits []inventory.Audit
	query := r.db.WithContext(ctx).Model(&inventory.Audit{}).
		Where("outlet_id = ? AND status = ?", outletID, status)
	query = applyPagingAndOrder(query, filter, AuditSortFields, "period", "DESC")

	if err := query.Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// FindAllForOutlet finds all audits for an outlet
func (r *GormAuditRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) ([]inventory.Audit, error) {
	var audits []inventory.Audit
	query := r.db.WithContext(ctx).Model(&inventory.Audit{}).
		Where("outlet_id = ?", outletID)
	query = r.applyFilterWithoutPagination(query, filter)
	query = applyPagingAndOrder(query, filter.Filter, AuditSortFields, "period", "DESC")

	if err := query.Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// FindInFlight finds the outlet's unresolved audit: draft, counting or
// pending approval. Returns nil without error when none exists; at most one
// can be in flight.
func (r *GormAuditRepository) FindInFlight(ctx context.Context, outletID uuid.UUID) (*inventory.Audit, error) {
	var audit inventory.Audit
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND status IN ?", outletID,
			[]inventory.AuditStatus{inventory.AuditStatusDraft, inventory.AuditStatusCounting, inventory.AuditStatusPendingApproval}).
		First(&audit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audit, nil
}

// SaveWithLines saves an audit together with its lines in a transaction
func (r *GormAuditRepository) SaveWithLines(ctx context.Context, audit *inventory.Audit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(audit).Error; err != nil {
			return err
		}

		// Delete lines removed from the aggregate
		lineIDs := make([]uuid.UUID, 0, len(audit.Lines))
		for _, line := range audit.Lines {
			lineIDs = append(lineIDs, line.ID)
		}

		if len(lineIDs) > 0 {
			if err := tx.Where("audit_id = ? AND id NOT IN ?", audit.ID, lineIDs).
				Delete(&inventory.AuditLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("audit_id = ?", audit.ID).
				Delete(&inventory.AuditLine{}).Error; err != nil {
				return err
			}
		}

		for i := range audit.Lines {
			audit.Lines[i].AuditID = audit.ID
			if err := tx.Save(&audit.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes an audit and its lines
func (r *GormAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("audit_id = ?", id).Delete(&inventory.AuditLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&inventory.Audit{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForOutlet counts audits matching the filter
func (r *GormAuditRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Audit{}).
		Where("outlet_id = ?", outletID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForPeriod checks if an audit already exists for the period
func (r *GormAuditRepository) ExistsForPeriod(ctx context.Context, outletID uuid.UUID, period string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Audit{}).
		Where("outlet_id = ? AND period = ?", outletID, period).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilterWithoutPagination applies the audit-specific filter options
func (r *GormAuditRepository) applyFilterWithoutPagination(query *gorm.DB, filter inventory.AuditFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != "" {
		query = query.Where("period = ?", filter.Period)
	}
	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	return query
}

// Ensure GormAuditRepository implements AuditRepository
var _ inventory.AuditRepository = (*GormAuditRepository)(nil)
