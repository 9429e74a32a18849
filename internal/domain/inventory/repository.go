package inventory

import (
	"context"
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByIDForOutlet finds an item by ID within an outlet
	FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*Item, error)

	// FindByIDForUpdate finds an item by ID within an outlet, taking a row
	// lock for the duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, outletID, id uuid.UUID) (*Item, error)

	// FindByName finds an item by its exact name within an outlet
	FindByName(ctx context.Context, outletID uuid.UUID, name string) (*Item, error)

	// FindAllForOutlet finds all items for an outlet
	FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter ItemFilter) ([]Item, error)

	// FindByIDs finds multiple items by their IDs
	FindByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) ([]Item, error)

	// FindActive finds the countable items of an outlet (every lifecycle
	// except archived)
	FindActive(ctx context.Context, outletID uuid.UUID, filter shared.Filter) ([]Item, error)

	// FindArchiveCandidates finds discontinued items with zero total quantity
	// and no movement since the given cutoff
	FindArchiveCandidates(ctx context.Context, outletID uuid.UUID, idleSince time.Time) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, item *Item) error

	// Delete deletes an item (only valid for drafts without history)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForOutlet counts items matching the filter
	CountForOutlet(ctx context.Context, outletID uuid.UUID, filter ItemFilter) (int64, error)

	// ExistsByName checks whether an item name is taken within an outlet
	ExistsByName(ctx context.Context, outletID uuid.UUID, name string) (bool, error)
}

// MovementRepository defines the interface for ledger persistence. The
// ledger is append-only: there is deliberately no Save, Update or Delete.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByItem finds movements for an item, newest first
	FindByItem(ctx context.Context, outletID, itemID uuid.UUID, filter MovementFilter) ([]Movement, error)

	// FindByItemChronological finds all movements for an item ordered by
	// occurrence time, oldest first, for ledger replay
	FindByItemChronological(ctx context.Context, outletID, itemID uuid.UUID) ([]Movement, error)

	// FindByReference finds movements linked to a source document
	FindByReference(ctx context.Context, outletID uuid.UUID, ref Reference) ([]Movement, error)

	// FindForOutlet finds all movements for an outlet
	FindForOutlet(ctx context.Context, outletID uuid.UUID, filter MovementFilter) ([]Movement, error)

	// Create appends a new ledger entry
	Create(ctx context.Context, m *Movement) error

	// CountForOutlet counts movements matching the filter
	CountForOutlet(ctx context.Context, outletID uuid.UUID, filter MovementFilter) (int64, error)

	// CountByItem counts movements for an item
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)

	// HasReferenceMovements reports whether any movement for the item
	// carries a non-manual reference
	HasReferenceMovements(ctx context.Context, itemID uuid.UUID) (bool, error)

	// SumOutstandingForReference computes outflows minus resolving entries
	// for one (item, reference) pair
	SumOutstandingForReference(ctx context.Context, outletID, itemID uuid.UUID, ref Reference) (int, error)
}

// AllocationRepository defines the interface for allocation tracking
type AllocationRepository interface {
	// FindByID finds an allocation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)

	// FindActiveByItemAndReference finds the active allocation for one
	// (item, reference) pair, or nil when none exists
	FindActiveByItemAndReference(ctx context.Context, outletID, itemID uuid.UUID, ref Reference) (*Allocation, error)

	// FindActiveByReference finds all active allocations for a source document
	FindActiveByReference(ctx context.Context, outletID uuid.UUID, ref Reference) ([]Allocation, error)

	// FindActiveByItem finds all active allocations for an item
	FindActiveByItem(ctx context.Context, outletID, itemID uuid.UUID) ([]Allocation, error)

	// FindForOutlet finds allocations for an outlet
	FindForOutlet(ctx context.Context, outletID uuid.UUID, filter AllocationFilter) ([]Allocation, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, alloc *Allocation) error

	// CountActiveForOutlet counts active allocations for an outlet
	CountActiveForOutlet(ctx context.Context, outletID uuid.UUID) (int64, error)
}

// AuditRepository defines the interface for audit persistence
type AuditRepository interface {
	// FindByID finds an audit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Audit, error)

	// FindByIDForOutlet finds an audit by ID within an outlet, lines included
	FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*Audit, error)

	// FindByPeriod finds the audit for one outlet and period
	FindByPeriod(ctx context.Context, outletID uuid.UUID, period string) (*Audit, error)

	// FindByStatus finds audits with a specific status
	FindByStatus(ctx context.Context, outletID uuid.UUID, status AuditStatus, filter shared.Filter) ([]Audit, error)

	// FindAllForOutlet finds all audits for an outlet
	FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter AuditFilter) ([]Audit, error)

	// FindInFlight finds the outlet's audit in counting or pending approval,
	// if one exists
	FindInFlight(ctx context.Context, outletID uuid.UUID) (*Audit, error)

	// SaveWithLines saves an audit together with its lines
	SaveWithLines(ctx context.Context, audit *Audit) error

	// Delete deletes an audit (only valid for drafts)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForOutlet counts audits matching the filter
	CountForOutlet(ctx context.Context, outletID uuid.UUID, filter AuditFilter) (int64, error)

	// ExistsForPeriod checks if an audit already exists for the period
	ExistsForPeriod(ctx context.Context, outletID uuid.UUID, period string) (bool, error)
}

// ItemFilter extends shared.Filter with item-specific filters
type ItemFilter struct {
	shared.Filter
	Lifecycle    *LifecycleStatus
	Category     string
	Material     string
	Search       string
	HasAvailable bool
	HasDamaged   bool
}

// MovementFilter extends shared.Filter with ledger-specific filters
type MovementFilter struct {
	shared.Filter
	ItemID        *uuid.UUID
	Category      *MovementCategory
	Subtype       *MovementSubtype
	ReferenceType *ReferenceType
	ReferenceID   *uuid.UUID
	ActorID       *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
}

// AllocationFilter extends shared.Filter with allocation-specific filters
type AllocationFilter struct {
	shared.Filter
	ItemID        *uuid.UUID
	ReferenceType *ReferenceType
	ActiveOnly    bool
}

// AuditFilter extends shared.Filter with audit-specific filters
type AuditFilter struct {
	shared.Filter
	Status      *AuditStatus
	Period      string
	CreatedByID *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}
