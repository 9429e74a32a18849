package inventory

import (
	"fmt"
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecycleStatus is the lifecycle state of a dishware item
type LifecycleStatus string

const (
	// LifecycleDraft is the initial state; the item is being set up
	LifecycleDraft LifecycleStatus = "DRAFT"
	// LifecycleActive marks the item ready for allocation
	LifecycleActive LifecycleStatus = "ACTIVE"
	// LifecycleDiscontinued marks the item withdrawn from new allocations
	LifecycleDiscontinued LifecycleStatus = "DISCONTINUED"
	// LifecycleArchived is terminal; the item is read-only
	LifecycleArchived LifecycleStatus = "ARCHIVED"
)

// String returns the string representation of LifecycleStatus
func (s LifecycleStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid LifecycleStatus
func (s LifecycleStatus) IsValid() bool {
	switch s {
	case LifecycleDraft, LifecycleActive, LifecycleDiscontinued, LifecycleArchived:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// Archived is terminal.
func (s LifecycleStatus) CanTransitionTo(target LifecycleStatus) bool {
	switch s {
	case LifecycleDraft:
		return target == LifecycleActive
	case LifecycleActive:
		return target == LifecycleDiscontinued || target == LifecycleArchived
	case LifecycleDiscontinued:
		return target == LifecycleActive || target == LifecycleArchived
	case LifecycleArchived:
		return false
	}
	return false
}

// archiveIdlePeriod is how long an item must have been without movements
// before it may be archived.
const archiveIdlePeriod = 12 * 30 * 24 * time.Hour

// Item is a dishware stock-keeping unit scoped to one outlet. It is the
// aggregate root for all balance operations. The five quantity pools are a
// materialized fold over the movement ledger and satisfy the invariant
// total = available + allocated + damaged + in_repair at all times; lost
// units are subtracted from total, never added back.
type Item struct {
	shared.OutletAggregateRoot
	Name     string `gorm:"type:varchar(150);not null"`
	Category string `gorm:"type:varchar(50)"`
	Material string `gorm:"type:varchar(50)"`
	Unit     string `gorm:"type:varchar(20);not null;default:'piece'"`

	Lifecycle LifecycleStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	// IsActive is a legacy compatibility flag: true iff lifecycle is draft or active
	IsActive bool `gorm:"not null;default:true"`

	AvailableQuantity int `gorm:"not null;default:0"`
	AllocatedQuantity int `gorm:"not null;default:0"`
	DamagedQuantity   int `gorm:"not null;default:0"`
	InRepairQuantity  int `gorm:"not null;default:0"`
	LostQuantity      int `gorm:"not null;default:0"`
	TotalQuantity     int `gorm:"not null;default:0"`

	OpeningBalanceConfirmed bool `gorm:"not null;default:false"`

	// ReplacementCost is the per-unit amount billed to a client for lost or
	// client-damaged stock; consumed by the billing collaborator.
	ReplacementCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// LastMovementAt tracks the most recent accepted movement, used for the
	// 12-month idle requirement on archiving.
	LastMovementAt *time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item in draft state with zero stock
func NewItem(outletID uuid.UUID, name, category, material, unit string) (*Item, error) {
	if outletID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OUTLET", "Outlet ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if unit == "" {
		unit = "piece"
	}

	item := &Item{
		OutletAggregateRoot: shared.NewOutletAggregateRoot(outletID),
		Name:                name,
		Category:            category,
		Material:            material,
		Unit:                unit,
		Lifecycle:           LifecycleDraft,
		IsActive:            true,
		ReplacementCost:     decimal.Zero,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// SetReplacementCost sets the per-unit replacement cost
func (i *Item) SetReplacementCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Replacement cost cannot be negative")
	}
	if i.Lifecycle == LifecycleArchived {
		return errArchivedReadOnly()
	}
	i.ReplacementCost = cost
	// master-data setter: the saving service owns the version bump
	i.UpdatedAt = time.Now()
	return nil
}

// CheckInvariant verifies the balance invariant and that no pool is negative.
// A violation after a correctly validated apply indicates a bug; callers must
// roll back and surface a consistency error.
func (i *Item) CheckInvariant() error {
	if i.AvailableQuantity < 0 || i.AllocatedQuantity < 0 || i.DamagedQuantity < 0 ||
		i.InRepairQuantity < 0 || i.LostQuantity < 0 || i.TotalQuantity < 0 {
		return shared.NewDomainError("CONSISTENCY_VIOLATION",
			fmt.Sprintf("negative pool on item %s: available=%d allocated=%d damaged=%d in_repair=%d lost=%d total=%d",
				i.ID, i.AvailableQuantity, i.AllocatedQuantity, i.DamagedQuantity, i.InRepairQuantity, i.LostQuantity, i.TotalQuantity))
	}
	sum := i.AvailableQuantity + i.AllocatedQuantity + i.DamagedQuantity + i.InRepairQuantity
	if i.TotalQuantity != sum {
		return shared.NewDomainError("CONSISTENCY_VIOLATION",
			fmt.Sprintf("balance invariant violated on item %s: total=%d, pools sum to %d",
				i.ID, i.TotalQuantity, sum))
	}
	return nil
}

// ===================== Lifecycle transitions =====================

// Activate transitions the item from draft or discontinued to active
func (i *Item) Activate() error {
	if i.Lifecycle == LifecycleActive {
		return nil
	}
	if !i.Lifecycle.CanTransitionTo(LifecycleActive) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to ACTIVE", i.Lifecycle))
	}
	from := i.Lifecycle
	i.Lifecycle = LifecycleActive
	i.syncActiveFlag()
	i.touch()
	i.AddDomainEvent(NewItemLifecycleChangedEvent(i, from, LifecycleActive))
	return nil
}

// Discontinue withdraws the item from new allocations. Rejected while any
// stock is still held by customers.
func (i *Item) Discontinue() error {
	if !i.Lifecycle.CanTransitionTo(LifecycleDiscontinued) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to DISCONTINUED", i.Lifecycle))
	}
	if i.AllocatedQuantity > 0 {
		return shared.NewDomainError("OUTSTANDING_ALLOCATIONS",
			fmt.Sprintf("Cannot discontinue item with %d units still allocated", i.AllocatedQuantity))
	}
	from := i.Lifecycle
	i.Lifecycle = LifecycleDiscontinued
	i.syncActiveFlag()
	i.touch()
	i.AddDomainEvent(NewItemLifecycleChangedEvent(i, from, LifecycleDiscontinued))
	return nil
}

// Archive makes the item permanently read-only. Requires zero total stock and
// no movement within the trailing twelve months.
func (i *Item) Archive(now time.Time) error {
	if !i.Lifecycle.CanTransitionTo(LifecycleArchived) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to ARCHIVED", i.Lifecycle))
	}
	if i.TotalQuantity != 0 {
		return shared.NewDomainError("HAS_STOCK",
			fmt.Sprintf("Cannot archive item with %d units of stock", i.TotalQuantity))
	}
	if i.LastMovementAt != nil && now.Sub(*i.LastMovementAt) < archiveIdlePeriod {
		return shared.NewDomainError("RECENT_MOVEMENT",
			"Cannot archive item with movements in the trailing 12 months")
	}
	from := i.Lifecycle
	i.Lifecycle = LifecycleArchived
	i.syncActiveFlag()
	i.touch()
	i.AddDomainEvent(NewItemLifecycleChangedEvent(i, from, LifecycleArchived))
	return nil
}

// syncActiveFlag keeps the legacy is_active flag derived from the lifecycle
func (i *Item) syncActiveFlag() {
	i.IsActive = i.Lifecycle == LifecycleDraft || i.Lifecycle == LifecycleActive
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func errArchivedReadOnly() error {
	return shared.NewDomainError("ITEM_ARCHIVED", "Archived items are read-only")
}

// CanDelete reports whether the item may be hard-deleted: it must hold no
// stock, and must never have recorded a movement against a subscription or
// event (the caller supplies that ledger fact). Otherwise callers should
// discontinue the item instead.
func (i *Item) CanDelete(hasReferenceHistory bool) error {
	if i.TotalQuantity != 0 {
		return shared.NewDomainError("HAS_STOCK",
			"Cannot delete item that still holds stock; discontinue it instead")
	}
	if hasReferenceHistory {
		return shared.NewDomainError("HAS_REFERENCE_HISTORY",
			"Cannot delete item with subscription or event movement history; discontinue it instead")
	}
	return nil
}

// ===================== Movement gating =====================

// GateMovement checks whether a movement of the given category is permitted
// in the item's current lifecycle state.
func (i *Item) GateMovement(category MovementCategory) error {
	switch i.Lifecycle {
	case LifecycleArchived:
		return errArchivedReadOnly()
	case LifecycleDiscontinued:
		if category != MovementCategoryReturn && category != MovementCategoryWriteoff {
			return shared.NewDomainError("ITEM_DISCONTINUED",
				"Discontinued items accept only returns and writeoffs")
		}
	case LifecycleDraft:
		if category == MovementCategoryOutflow {
			return shared.NewDomainError("ITEM_NOT_ACTIVE",
				"Outflow requires an active item")
		}
	}
	return nil
}

// ===================== Balance effects =====================
//
// Each apply method validates pool sufficiency, mutates the pools, and stamps
// the movement time. Direction is always encoded by the category; quantities
// are positive. The ledger re-verifies CheckInvariant after every apply.

// ApplyInflow adds new stock to the available pool
func (i *Item) ApplyInflow(quantity int, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	i.AvailableQuantity += quantity
	i.TotalQuantity += quantity
	i.recordMovementAt(at)
	return nil
}

// ApplyOutflow moves stock from available to allocated. The first successful
// outflow confirms the opening balance and ends the setup phase.
func (i *Item) ApplyOutflow(quantity int, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	if i.AvailableQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient available stock: have %d, need %d", i.AvailableQuantity, quantity))
	}
	i.AvailableQuantity -= quantity
	i.AllocatedQuantity += quantity
	if !i.OpeningBalanceConfirmed {
		i.OpeningBalanceConfirmed = true
		i.AddDomainEvent(NewOpeningBalanceConfirmedEvent(i))
	}
	i.recordMovementAt(at)
	return nil
}

// ApplyReturn moves stock from allocated back to available (good condition)
// or into the damaged pool (damaged condition)
func (i *Item) ApplyReturn(quantity int, subtype MovementSubtype, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	if i.AllocatedQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient allocated stock: have %d, need %d", i.AllocatedQuantity, quantity))
	}
	switch subtype {
	case SubtypeReturnGood:
		i.AllocatedQuantity -= quantity
		i.AvailableQuantity += quantity
	case SubtypeReturnDamaged:
		i.AllocatedQuantity -= quantity
		i.DamagedQuantity += quantity
	default:
		return shared.NewDomainError("INVALID_SUBTYPE", "Invalid return subtype")
	}
	i.recordMovementAt(at)
	return nil
}

// ApplyWriteoff removes or reclassifies stock according to the enumerated
// writeoff subtype. customerHeld indicates whether the movement carries a
// subscription/event reference and therefore draws from the allocated pool.
func (i *Item) ApplyWriteoff(quantity int, subtype MovementSubtype, customerHeld bool, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	switch subtype {
	case SubtypeWriteoffHandlingDamage, SubtypeWriteoffStorageDamage:
		// in-house damage: stock stays in total, moves to the damaged pool
		if i.AvailableQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient available stock: have %d, need %d", i.AvailableQuantity, quantity))
		}
		i.AvailableQuantity -= quantity
		i.DamagedQuantity += quantity
	case SubtypeWriteoffClientDamage:
		// damage reported by the holding customer: draws from allocated
		if i.AllocatedQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient allocated stock: have %d, need %d", i.AllocatedQuantity, quantity))
		}
		i.AllocatedQuantity -= quantity
		i.DamagedQuantity += quantity
	case SubtypeWriteoffLoss:
		// loss removes stock from the pool that held it and from the total
		if customerHeld {
			if i.AllocatedQuantity < quantity {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("insufficient allocated stock: have %d, need %d", i.AllocatedQuantity, quantity))
			}
			i.AllocatedQuantity -= quantity
		} else {
			if i.AvailableQuantity < quantity {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("insufficient available stock: have %d, need %d", i.AvailableQuantity, quantity))
			}
			i.AvailableQuantity -= quantity
		}
		i.LostQuantity += quantity
		i.TotalQuantity -= quantity
	case SubtypeWriteoffDisposal:
		// disposal of already-damaged stock leaves the building entirely
		if i.DamagedQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient damaged stock: have %d, need %d", i.DamagedQuantity, quantity))
		}
		i.DamagedQuantity -= quantity
		i.TotalQuantity -= quantity
	default:
		return shared.NewDomainError("INVALID_SUBTYPE", "Invalid writeoff subtype")
	}
	i.recordMovementAt(at)
	return nil
}

// ApplyAdjustment applies a signed operator correction to the available pool
func (i *Item) ApplyAdjustment(quantity int, subtype MovementSubtype, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	switch subtype {
	case SubtypeAdjustmentIncrease:
		i.AvailableQuantity += quantity
		i.TotalQuantity += quantity
	case SubtypeAdjustmentDecrease:
		if i.AvailableQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient available stock: have %d, need %d", i.AvailableQuantity, quantity))
		}
		i.AvailableQuantity -= quantity
		i.TotalQuantity -= quantity
	default:
		return shared.NewDomainError("INVALID_SUBTYPE", "Invalid adjustment subtype")
	}
	i.recordMovementAt(at)
	return nil
}

// ApplyRepair moves stock between the damaged, in-repair and available pools
func (i *Item) ApplyRepair(quantity int, subtype MovementSubtype, at time.Time) error {
	if quantity <= 0 {
		return errNonPositiveQuantity()
	}
	switch subtype {
	case SubtypeRepairSend:
		if i.DamagedQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient damaged stock: have %d, need %d", i.DamagedQuantity, quantity))
		}
		i.DamagedQuantity -= quantity
		i.InRepairQuantity += quantity
	case SubtypeRepairRepaired:
		if i.InRepairQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient in-repair stock: have %d, need %d", i.InRepairQuantity, quantity))
		}
		i.InRepairQuantity -= quantity
		i.AvailableQuantity += quantity
	case SubtypeRepairIrreparable:
		if i.InRepairQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient in-repair stock: have %d, need %d", i.InRepairQuantity, quantity))
		}
		i.InRepairQuantity -= quantity
		i.TotalQuantity -= quantity
	default:
		return shared.NewDomainError("INVALID_SUBTYPE", "Invalid repair subtype")
	}
	i.recordMovementAt(at)
	return nil
}

func (i *Item) recordMovementAt(at time.Time) {
	t := at
	i.LastMovementAt = &t
	i.touch()
}

func errNonPositiveQuantity() error {
	return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
}

// ChargeAmount returns the replacement charge for the given quantity,
// exposed to the billing collaborator for loss and client-damage writeoffs
func (i *Item) ChargeAmount(quantity int) decimal.Decimal {
	return i.ReplacementCost.Mul(decimal.NewFromInt(int64(quantity)))
}
