package inventory

import (
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeItem  = "Item"
	AggregateTypeAudit = "Audit"
)

// Event type constants
const (
	EventTypeItemCreated             = "ItemCreated"
	EventTypeItemLifecycleChanged    = "ItemLifecycleChanged"
	EventTypeOpeningBalanceConfirmed = "OpeningBalanceConfirmed"
	EventTypeMovementRecorded        = "MovementRecorded"
	EventTypeAllocationGranted       = "AllocationGranted"
	EventTypeAllocationReleased      = "AllocationReleased"
	EventTypeAuditCreated            = "AuditCreated"
	EventTypeAuditSubmitted          = "AuditSubmitted"
	EventTypeAuditApproved           = "AuditApproved"
	EventTypeAuditRejected           = "AuditRejected"
)

// ItemCreatedEvent is raised when a new item is registered in draft state
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID, item.OutletID),
		ItemID:          item.ID,
		Name:            item.Name,
		Category:        item.Category,
	}
}

// EventType returns the event type name
func (e *ItemCreatedEvent) EventType() string {
	return EventTypeItemCreated
}

// ItemLifecycleChangedEvent is raised on every lifecycle transition
type ItemLifecycleChangedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID       `json:"item_id"`
	From   LifecycleStatus `json:"from"`
	To     LifecycleStatus `json:"to"`
}

// NewItemLifecycleChangedEvent creates a new ItemLifecycleChangedEvent
func NewItemLifecycleChangedEvent(item *Item, from, to LifecycleStatus) *ItemLifecycleChangedEvent {
	return &ItemLifecycleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemLifecycleChanged, AggregateTypeItem, item.ID, item.OutletID),
		ItemID:          item.ID,
		From:            from,
		To:              to,
	}
}

// EventType returns the event type name
func (e *ItemLifecycleChangedEvent) EventType() string {
	return EventTypeItemLifecycleChanged
}

// OpeningBalanceConfirmedEvent is raised the first time an item participates
// in an outflow, freezing its opening balance
type OpeningBalanceConfirmedEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID `json:"item_id"`
	OpeningBalance int       `json:"opening_balance"`
}

// NewOpeningBalanceConfirmedEvent creates a new OpeningBalanceConfirmedEvent
func NewOpeningBalanceConfirmedEvent(item *Item) *OpeningBalanceConfirmedEvent {
	return &OpeningBalanceConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpeningBalanceConfirmed, AggregateTypeItem, item.ID, item.OutletID),
		ItemID:          item.ID,
		OpeningBalance:  item.TotalQuantity,
	}
}

// EventType returns the event type name
func (e *OpeningBalanceConfirmedEvent) EventType() string {
	return EventTypeOpeningBalanceConfirmed
}

// MovementRecordedEvent is raised after a ledger entry has been applied
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID    uuid.UUID        `json:"movement_id"`
	ItemID        uuid.UUID        `json:"item_id"`
	Category      MovementCategory `json:"category"`
	Subtype       MovementSubtype  `json:"subtype,omitempty"`
	Quantity      int              `json:"quantity"`
	ReferenceType ReferenceType    `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID       `json:"reference_id,omitempty"`
	BalanceAfter  int              `json:"balance_after"`
	OccurredOn    time.Time        `json:"occurred_on"`
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(item *Item, m *Movement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, AggregateTypeItem, item.ID, item.OutletID),
		MovementID:      m.ID,
		ItemID:          m.ItemID,
		Category:        m.Category,
		Subtype:         m.Subtype,
		Quantity:        m.Quantity,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		BalanceAfter:    m.BalanceAfter,
		OccurredOn:      m.OccurredAt,
	}
}

// EventType returns the event type name
func (e *MovementRecordedEvent) EventType() string {
	return EventTypeMovementRecorded
}

// AllocationGrantedEvent is raised when stock is handed to a customer-held reference
type AllocationGrantedEvent struct {
	shared.BaseDomainEvent
	AllocationID  uuid.UUID     `json:"allocation_id"`
	ItemID        uuid.UUID     `json:"item_id"`
	ReferenceType ReferenceType `json:"reference_type"`
	ReferenceID   uuid.UUID     `json:"reference_id"`
	Quantity      int           `json:"quantity"`
}

// NewAllocationGrantedEvent creates a new AllocationGrantedEvent
func NewAllocationGrantedEvent(alloc *Allocation, quantity int) *AllocationGrantedEvent {
	return &AllocationGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationGranted, AggregateTypeItem, alloc.ItemID, alloc.OutletID),
		AllocationID:    alloc.ID,
		ItemID:          alloc.ItemID,
		ReferenceType:   alloc.ReferenceType,
		ReferenceID:     alloc.ReferenceID,
		Quantity:        quantity,
	}
}

// EventType returns the event type name
func (e *AllocationGrantedEvent) EventType() string {
	return EventTypeAllocationGranted
}

// AllocationReleasedEvent is raised when an allocation reaches zero outstanding
// and is deactivated
type AllocationReleasedEvent struct {
	shared.BaseDomainEvent
	AllocationID  uuid.UUID     `json:"allocation_id"`
	ItemID        uuid.UUID     `json:"item_id"`
	ReferenceType ReferenceType `json:"reference_type"`
	ReferenceID   uuid.UUID     `json:"reference_id"`
}

// NewAllocationReleasedEvent creates a new AllocationReleasedEvent
func NewAllocationReleasedEvent(alloc *Allocation) *AllocationReleasedEvent {
	return &AllocationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReleased, AggregateTypeItem, alloc.ItemID, alloc.OutletID),
		AllocationID:    alloc.ID,
		ItemID:          alloc.ItemID,
		ReferenceType:   alloc.ReferenceType,
		ReferenceID:     alloc.ReferenceID,
	}
}

// EventType returns the event type name
func (e *AllocationReleasedEvent) EventType() string {
	return EventTypeAllocationReleased
}

// AuditCreatedEvent is raised when a physical-count audit is opened
type AuditCreatedEvent struct {
	shared.BaseDomainEvent
	AuditID uuid.UUID `json:"audit_id"`
	Period  string    `json:"period"`
}

// NewAuditCreatedEvent creates a new AuditCreatedEvent
func NewAuditCreatedEvent(audit *Audit) *AuditCreatedEvent {
	return &AuditCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuditCreated, AggregateTypeAudit, audit.ID, audit.OutletID),
		AuditID:         audit.ID,
		Period:          audit.Period,
	}
}

// EventType returns the event type name
func (e *AuditCreatedEvent) EventType() string {
	return EventTypeAuditCreated
}

// AuditSubmittedEvent is raised when an audit with shortages enters pending approval
type AuditSubmittedEvent struct {
	shared.BaseDomainEvent
	AuditID          uuid.UUID `json:"audit_id"`
	Period           string    `json:"period"`
	VariancePositive int       `json:"variance_positive"`
	VarianceNegative int       `json:"variance_negative"`
}

// NewAuditSubmittedEvent creates a new AuditSubmittedEvent
func NewAuditSubmittedEvent(audit *Audit) *AuditSubmittedEvent {
	return &AuditSubmittedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAuditSubmitted, AggregateTypeAudit, audit.ID, audit.OutletID),
		AuditID:          audit.ID,
		Period:           audit.Period,
		VariancePositive: audit.VariancePositive,
		VarianceNegative: audit.VarianceNegative,
	}
}

// EventType returns the event type name
func (e *AuditSubmittedEvent) EventType() string {
	return EventTypeAuditSubmitted
}

// AuditApprovedEvent is raised when an audit resolves as approved, whether
// automatically or by an administrator
type AuditApprovedEvent struct {
	shared.BaseDomainEvent
	AuditID      uuid.UUID `json:"audit_id"`
	Period       string    `json:"period"`
	ApprovedByID uuid.UUID `json:"approved_by_id"`
	AutoApproved bool      `json:"auto_approved"`
}

// NewAuditApprovedEvent creates a new AuditApprovedEvent
func NewAuditApprovedEvent(audit *Audit, approvedByID uuid.UUID, auto bool) *AuditApprovedEvent {
	return &AuditApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuditApproved, AggregateTypeAudit, audit.ID, audit.OutletID),
		AuditID:         audit.ID,
		Period:          audit.Period,
		ApprovedByID:    approvedByID,
		AutoApproved:    auto,
	}
}

// EventType returns the event type name
func (e *AuditApprovedEvent) EventType() string {
	return EventTypeAuditApproved
}

// AuditRejectedEvent is raised when a pending audit is rejected
type AuditRejectedEvent struct {
	shared.BaseDomainEvent
	AuditID      uuid.UUID `json:"audit_id"`
	Period       string    `json:"period"`
	RejectedByID uuid.UUID `json:"rejected_by_id"`
	Reason       string    `json:"reason"`
}

// NewAuditRejectedEvent creates a new AuditRejectedEvent
func NewAuditRejectedEvent(audit *Audit, rejectedByID uuid.UUID, reason string) *AuditRejectedEvent {
	return &AuditRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuditRejected, AggregateTypeAudit, audit.ID, audit.OutletID),
		AuditID:         audit.ID,
		Period:          audit.Period,
		RejectedByID:    rejectedByID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *AuditRejectedEvent) EventType() string {
	return EventTypeAuditRejected
}
