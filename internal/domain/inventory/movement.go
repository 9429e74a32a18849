package inventory

import (
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementCategory classifies a ledger entry by its effect on stock
type MovementCategory string

const (
	// MovementCategoryInflow represents new stock entering the outlet (purchase, opening balance)
	MovementCategoryInflow MovementCategory = "INFLOW"
	// MovementCategoryOutflow represents stock allocated to a subscription or event
	MovementCategoryOutflow MovementCategory = "OUTFLOW"
	// MovementCategoryReturn represents allocated stock coming back from a customer
	MovementCategoryReturn MovementCategory = "RETURN"
	// MovementCategoryWriteoff represents stock damaged, lost or disposed of
	MovementCategoryWriteoff MovementCategory = "WRITEOFF"
	// MovementCategoryAdjustment represents a signed operator correction
	MovementCategoryAdjustment MovementCategory = "ADJUSTMENT"
	// MovementCategoryRepair represents stock moving to or back from repair
	MovementCategoryRepair MovementCategory = "REPAIR"
)

// String returns the string representation of MovementCategory
func (c MovementCategory) String() string {
	return string(c)
}

// IsValid returns true if the movement category is valid
func (c MovementCategory) IsValid() bool {
	switch c {
	case MovementCategoryInflow,
		MovementCategoryOutflow,
		MovementCategoryReturn,
		MovementCategoryWriteoff,
		MovementCategoryAdjustment,
		MovementCategoryRepair:
		return true
	}
	return false
}

// MovementSubtype narrows a category to one concrete effect branch.
// The subtype is an enumerated value, never a free-text reason string, so
// every behavior branch is routed by exhaustive matching.
type MovementSubtype string

const (
	// Return subtypes
	SubtypeReturnGood    MovementSubtype = "RETURN_GOOD"
	SubtypeReturnDamaged MovementSubtype = "RETURN_DAMAGED"

	// Writeoff subtypes
	SubtypeWriteoffHandlingDamage MovementSubtype = "HANDLING_DAMAGE"
	SubtypeWriteoffStorageDamage  MovementSubtype = "STORAGE_DAMAGE"
	SubtypeWriteoffClientDamage   MovementSubtype = "CLIENT_DAMAGE"
	SubtypeWriteoffLoss           MovementSubtype = "LOSS"
	SubtypeWriteoffDisposal       MovementSubtype = "DISPOSAL"

	// Adjustment subtypes
	SubtypeAdjustmentIncrease MovementSubtype = "ADJUSTMENT_INCREASE"
	SubtypeAdjustmentDecrease MovementSubtype = "ADJUSTMENT_DECREASE"

	// Repair subtypes
	SubtypeRepairSend        MovementSubtype = "SEND_TO_REPAIR"
	SubtypeRepairRepaired    MovementSubtype = "RETURN_REPAIRED"
	SubtypeRepairIrreparable MovementSubtype = "RETURN_IRREPARABLE"

	// SubtypeNone is used for categories without subtypes (inflow, outflow)
	SubtypeNone MovementSubtype = ""
)

// String returns the string representation of MovementSubtype
func (s MovementSubtype) String() string {
	return string(s)
}

// subtypesByCategory enumerates the valid subtypes per category.
// Inflow and outflow have no subtypes.
var subtypesByCategory = map[MovementCategory][]MovementSubtype{
	MovementCategoryInflow:  {SubtypeNone},
	MovementCategoryOutflow: {SubtypeNone},
	MovementCategoryReturn:  {SubtypeReturnGood, SubtypeReturnDamaged},
	MovementCategoryWriteoff: {
		SubtypeWriteoffHandlingDamage,
		SubtypeWriteoffStorageDamage,
		SubtypeWriteoffClientDamage,
		SubtypeWriteoffLoss,
		SubtypeWriteoffDisposal,
	},
	MovementCategoryAdjustment: {SubtypeAdjustmentIncrease, SubtypeAdjustmentDecrease},
	MovementCategoryRepair:     {SubtypeRepairSend, SubtypeRepairRepaired, SubtypeRepairIrreparable},
}

// BelongsTo returns true if the subtype is valid for the given category
func (s MovementSubtype) BelongsTo(category MovementCategory) bool {
	for _, valid := range subtypesByCategory[category] {
		if s == valid {
			return true
		}
	}
	return false
}

// IsDamageWriteoff returns true for writeoff subtypes that move stock into
// the damaged pool instead of removing it from the total
func (s MovementSubtype) IsDamageWriteoff() bool {
	return s == SubtypeWriteoffHandlingDamage ||
		s == SubtypeWriteoffStorageDamage ||
		s == SubtypeWriteoffClientDamage
}

// ReferenceType identifies what kind of entity a movement is attributed to
type ReferenceType string

const (
	// ReferenceTypeSubscription ties a movement to a customer subscription
	ReferenceTypeSubscription ReferenceType = "SUBSCRIPTION"
	// ReferenceTypeEvent ties a movement to a one-off catered event
	ReferenceTypeEvent ReferenceType = "EVENT"
	// ReferenceTypeManual ties a movement to an operator action (audit adjustments)
	ReferenceTypeManual ReferenceType = "MANUAL"
	// ReferenceTypeNone marks a movement with no external attribution
	ReferenceTypeNone ReferenceType = ""
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// ErrReferenceIDRequired is returned when a reference type is supplied
// without an accompanying ID
var ErrReferenceIDRequired = shared.NewDomainError("INVALID_REFERENCE",
	"Reference ID is required when a reference type is set")

// Reference is the tagged variant {Subscription(id) | Event(id) | Manual(id) | None}
// attached to a movement. Reference-specific validation matches on Type
// exhaustively; there is no nullable foreign-key pair.
type Reference struct {
	Type ReferenceType
	ID   uuid.UUID
}

// SubscriptionRef creates a subscription reference
func SubscriptionRef(id uuid.UUID) Reference {
	return Reference{Type: ReferenceTypeSubscription, ID: id}
}

// EventRef creates an event reference
func EventRef(id uuid.UUID) Reference {
	return Reference{Type: ReferenceTypeEvent, ID: id}
}

// ManualRef creates a manual reference (e.g. the audit that emitted a movement)
func ManualRef(id uuid.UUID) Reference {
	return Reference{Type: ReferenceTypeManual, ID: id}
}

// NoReference creates an empty reference
func NoReference() Reference {
	return Reference{}
}

// IsZero returns true if no reference is attached
func (r Reference) IsZero() bool {
	return r.Type == ReferenceTypeNone
}

// IsCustomerHeld returns true for references that represent stock held by a
// customer (subscription or event); these are the references allocations
// are tracked against.
func (r Reference) IsCustomerHeld() bool {
	return r.Type == ReferenceTypeSubscription || r.Type == ReferenceTypeEvent
}

// IsValid returns true if the reference is well-formed
func (r Reference) IsValid() bool {
	switch r.Type {
	case ReferenceTypeNone:
		return r.ID == uuid.Nil
	case ReferenceTypeSubscription, ReferenceTypeEvent, ReferenceTypeManual:
		return r.ID != uuid.Nil
	}
	return false
}

// Movement is an immutable, append-only record of a single stock-affecting
// fact. Once created, movements are never updated or deleted; corrections are
// made with new movements. All item balances are a fold over the movement
// ledger.
type Movement struct {
	shared.BaseEntity
	OutletID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_movement_outlet_time,priority:1"`
	ItemID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_movement_item"`
	Category      MovementCategory `gorm:"type:varchar(20);not null;index:idx_movement_category"`
	Subtype       MovementSubtype  `gorm:"type:varchar(30);not null;default:''"`
	Quantity      int              `gorm:"not null"` // always positive; direction is encoded by category/subtype
	ReferenceType ReferenceType    `gorm:"type:varchar(20);not null;default:'';index:idx_movement_reference,priority:1"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid;index:idx_movement_reference,priority:2"`
	ReasonCode    string           `gorm:"type:varchar(50)"`
	Notes         string           `gorm:"type:varchar(500)"`
	BalanceBefore int              `gorm:"not null"` // available quantity before apply
	BalanceAfter  int              `gorm:"not null"` // available quantity after apply
	ActorID       uuid.UUID        `gorm:"type:uuid;not null"`
	ActorRole     Role             `gorm:"type:varchar(20);not null"`
	OccurredAt    time.Time        `gorm:"not null;index:idx_movement_outlet_time,priority:2"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// NewMovement creates a new movement record. Balance snapshots are filled in
// by the ledger when the movement is applied.
func NewMovement(
	outletID, itemID uuid.UUID,
	category MovementCategory,
	subtype MovementSubtype,
	quantity int,
	ref Reference,
	actor Actor,
) (*Movement, error) {
	if outletID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OUTLET", "Outlet ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid movement category")
	}
	if !subtype.BelongsTo(category) {
		return nil, shared.NewDomainError("INVALID_SUBTYPE", "Subtype is not valid for category "+category.String())
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !ref.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference is malformed")
	}
	if actor.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	m := &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		OutletID:      outletID,
		ItemID:        itemID,
		Category:      category,
		Subtype:       subtype,
		Quantity:      quantity,
		ReferenceType: ref.Type,
		ReasonCode:    "",
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		OccurredAt:    time.Now(),
	}
	if !ref.IsZero() {
		id := ref.ID
		m.ReferenceID = &id
	}
	return m, nil
}

// WithReasonCode sets the reason code for the movement
func (m *Movement) WithReasonCode(code string) *Movement {
	m.ReasonCode = code
	return m
}

// WithNotes sets the free-text notes for the movement
func (m *Movement) WithNotes(notes string) *Movement {
	m.Notes = notes
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *Movement) WithOccurredAt(t time.Time) *Movement {
	m.OccurredAt = t
	return m
}

// Reference reconstructs the tagged reference variant
func (m *Movement) Reference() Reference {
	if m.ReferenceType == ReferenceTypeNone || m.ReferenceID == nil {
		return NoReference()
	}
	return Reference{Type: m.ReferenceType, ID: *m.ReferenceID}
}

// ResolvesAllocation returns true if this movement reduces the outstanding
// quantity of a customer-held allocation (returns and writeoffs against a
// subscription or event reference).
func (m *Movement) ResolvesAllocation() bool {
	if m.Category != MovementCategoryReturn && m.Category != MovementCategoryWriteoff {
		return false
	}
	return m.Reference().IsCustomerHeld()
}

// BeforeUpdate blocks any update to a persisted movement.
// The ledger is append-only; this is enforced at the ORM layer in addition
// to the service layer.
func (m *Movement) BeforeUpdate(_ *gorm.DB) error {
	return shared.NewDomainError("LEDGER_IMMUTABLE", "Movements cannot be updated")
}

// BeforeDelete blocks direct deletion of a persisted movement. Cascading
// deletes of a guarded parent item bypass hooks via raw SQL in the repository.
func (m *Movement) BeforeDelete(_ *gorm.DB) error {
	return shared.NewDomainError("LEDGER_IMMUTABLE", "Movements cannot be deleted")
}
