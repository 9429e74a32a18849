package inventory

import (
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Allocation is the current holdership grant: how many units of an item are
// assigned to one subscription or event. There is at most one active
// allocation per (item, reference) pair. AllocatedQuantity records the total
// granted; the outstanding quantity is never stored — it is always derived
// from the movement ledger at read time so there is a single source of truth.
type Allocation struct {
	shared.BaseEntity
	OutletID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID     `gorm:"type:uuid;not null;index:idx_allocation_item_ref,priority:1"`
	ReferenceType ReferenceType `gorm:"type:varchar(20);not null;index:idx_allocation_item_ref,priority:2"`
	ReferenceID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_allocation_item_ref,priority:3"`

	AllocatedQuantity int `gorm:"not null"`
	// Single-active-per-pair is enforced by a partial unique index in the
	// migrations; deactivated grants may accumulate.
	Active        bool       `gorm:"not null;default:true"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// NewAllocation creates an active allocation for a customer-held reference
func NewAllocation(outletID, itemID uuid.UUID, ref Reference, quantity int) (*Allocation, error) {
	if !ref.IsCustomerHeld() {
		return nil, shared.NewDomainError("INVALID_REFERENCE",
			"Allocations are only tracked for subscription and event references")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}

	return &Allocation{
		BaseEntity:        shared.NewBaseEntity(),
		OutletID:          outletID,
		ItemID:            itemID,
		ReferenceType:     ref.Type,
		ReferenceID:       ref.ID,
		AllocatedQuantity: quantity,
		Active:            true,
	}, nil
}

// Grant increases the total granted quantity on an active allocation
func (a *Allocation) Grant(quantity int) error {
	if !a.Active {
		return shared.NewDomainError("ALLOCATION_INACTIVE", "Cannot grant against an inactive allocation")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Grant quantity must be positive")
	}
	a.AllocatedQuantity += quantity
	a.Touch()
	return nil
}

// Deactivate closes the allocation once its outstanding quantity reaches
// zero. The row is kept for history, never deleted.
func (a *Allocation) Deactivate() {
	if !a.Active {
		return
	}
	now := time.Now()
	a.Active = false
	a.DeactivatedAt = &now
	a.UpdatedAt = now
}

// Reference reconstructs the tagged reference variant
func (a *Allocation) Reference() Reference {
	return Reference{Type: a.ReferenceType, ID: a.ReferenceID}
}

// Outstanding computes the unresolved quantity given the resolved sum
// (returns plus writeoffs for this pair) from the ledger
func (a *Allocation) Outstanding(resolved int) int {
	outstanding := a.AllocatedQuantity - resolved
	if outstanding < 0 {
		return 0
	}
	return outstanding
}
