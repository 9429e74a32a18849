package inventory

import (
	"fmt"
	"time"

	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditStatus represents the status of a physical-count audit
type AuditStatus string

const (
	AuditStatusDraft           AuditStatus = "DRAFT"
	AuditStatusCounting        AuditStatus = "COUNTING"
	AuditStatusPendingApproval AuditStatus = "PENDING_APPROVAL"
	AuditStatusApproved        AuditStatus = "APPROVED"
	AuditStatusRejected        AuditStatus = "REJECTED"
)

// String returns the string representation of AuditStatus
func (s AuditStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid AuditStatus
func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusDraft, AuditStatusCounting, AuditStatusPendingApproval,
		AuditStatusApproved, AuditStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true for approved and rejected audits
func (s AuditStatus) IsTerminal() bool {
	return s == AuditStatusApproved || s == AuditStatusRejected
}

// InFlight returns true while the audit blocks new audits for the outlet
func (s AuditStatus) InFlight() bool {
	return s == AuditStatusDraft || s == AuditStatusCounting || s == AuditStatusPendingApproval
}

// CanTransitionTo checks if the status can transition to the target status
func (s AuditStatus) CanTransitionTo(target AuditStatus) bool {
	switch s {
	case AuditStatusDraft:
		return target == AuditStatusCounting
	case AuditStatusCounting:
		// submit either auto-approves (no shortages) or requests approval
		return target == AuditStatusPendingApproval || target == AuditStatusApproved
	case AuditStatusPendingApproval:
		return target == AuditStatusApproved || target == AuditStatusRejected
	case AuditStatusApproved, AuditStatusRejected:
		return false
	}
	return false
}

// AuditLineStatus tracks the review progress of a single line
type AuditLineStatus string

const (
	AuditLinePending  AuditLineStatus = "PENDING"
	AuditLineCounted  AuditLineStatus = "COUNTED"
	AuditLineReviewed AuditLineStatus = "REVIEWED"
)

// AuditLine is one row per (audit, item): the system-quantity snapshot taken
// at audit creation, the operator-entered physical count, and the generated
// variance. The variance is always computed, never entered.
type AuditLine struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuditID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_audit_line_item,priority:1"`
	ItemID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_audit_line_item,priority:2"`

	ItemName         string          `gorm:"type:varchar(150);not null"`
	SystemQuantity   int             `gorm:"not null"`
	PhysicalQuantity *int            `gorm:""`
	Variance         int             `gorm:"not null;default:0"` // physical - system
	VarianceAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReasonCode       string          `gorm:"type:varchar(50)"`
	Notes            string          `gorm:"type:varchar(500)"`
	Status           AuditLineStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (AuditLine) TableName() string {
	return "audit_lines"
}

// NewAuditLine snapshots an item's available quantity into an audit line
func NewAuditLine(auditID uuid.UUID, item *Item) *AuditLine {
	now := time.Now()
	return &AuditLine{
		ID:             uuid.New(),
		AuditID:        auditID,
		ItemID:         item.ID,
		ItemName:       item.Name,
		SystemQuantity: item.AvailableQuantity,
		Status:         AuditLinePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordCount enters the physical count; the variance is derived
func (l *AuditLine) RecordCount(physical int, reasonCode, notes string, replacementCost decimal.Decimal) error {
	if physical < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Physical quantity cannot be negative")
	}
	p := physical
	l.PhysicalQuantity = &p
	l.Variance = physical - l.SystemQuantity
	l.VarianceAmount = replacementCost.Mul(decimal.NewFromInt(int64(l.Variance)))
	l.ReasonCode = reasonCode
	l.Notes = notes
	l.Status = AuditLineCounted
	l.UpdatedAt = time.Now()
	return nil
}

// MarkReviewed marks a counted line as checked by a second operator
func (l *AuditLine) MarkReviewed() error {
	if l.Status == AuditLinePending {
		return shared.NewDomainError("LINE_NOT_COUNTED", "Line must be counted before review")
	}
	l.Status = AuditLineReviewed
	l.UpdatedAt = time.Now()
	return nil
}

// Counted returns true once a physical count has been entered
func (l *AuditLine) Counted() bool {
	return l.PhysicalQuantity != nil
}

// HasVariance returns true if the counted quantity differs from the system quantity
func (l *AuditLine) HasVariance() bool {
	return l.Counted() && l.Variance != 0
}

// Audit is the monthly physical-count reconciliation document for one outlet
// and calendar period. It is the aggregate root for the audit workflow.
type Audit struct {
	shared.OutletAggregateRoot
	// Uniqueness of (outlet_id, period) is enforced by a migration-level index.
	Period string      `gorm:"type:varchar(7);not null;index"` // YYYY-MM
	Status AuditStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	ItemsTotal   int `gorm:"not null;default:0"`
	ItemsCounted int `gorm:"not null;default:0"`

	VariancePositive int `gorm:"not null;default:0"` // sum of positive variances
	VarianceNegative int `gorm:"not null;default:0"` // sum of negative variances, stored non-positive

	CreatedByID     uuid.UUID  `gorm:"type:uuid;not null"`
	SubmittedAt     *time.Time
	ResolvedAt      *time.Time // when approved or rejected
	ResolvedByID    *uuid.UUID `gorm:"type:uuid"`
	AutoApproved    bool       `gorm:"not null;default:false"`
	RejectionReason string     `gorm:"type:varchar(500)"`

	Lines []AuditLine `gorm:"foreignKey:AuditID;references:ID"`
}

// TableName returns the table name for GORM
func (Audit) TableName() string {
	return "audits"
}

// ValidatePeriod checks the YYYY-MM period format
func ValidatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	return nil
}

// NewAudit creates an audit in draft state for one outlet and period
func NewAudit(outletID uuid.UUID, period string, createdByID uuid.UUID) (*Audit, error) {
	if outletID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OUTLET", "Outlet ID cannot be empty")
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if createdByID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	a := &Audit{
		OutletAggregateRoot: shared.NewOutletAggregateRoot(outletID),
		Period:              period,
		Status:              AuditStatusDraft,
		CreatedByID:         createdByID,
		Lines:               make([]AuditLine, 0),
	}
	a.SetCreatedBy(createdByID)
	a.AddDomainEvent(NewAuditCreatedEvent(a))
	return a, nil
}

// SnapshotItem adds an audit line capturing the item's current available
// quantity. Only permitted in draft state.
func (a *Audit) SnapshotItem(item *Item) error {
	if a.Status != AuditStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only snapshot items in DRAFT status")
	}
	for _, line := range a.Lines {
		if line.ItemID == item.ID {
			return shared.NewDomainError("DUPLICATE_ITEM", "Item already snapshotted in this audit")
		}
	}
	a.Lines = append(a.Lines, *NewAuditLine(a.ID, item))
	a.ItemsTotal++
	a.touch()
	return nil
}

// StartCounting moves the audit into the counting phase
func (a *Audit) StartCounting() error {
	if !a.Status.CanTransitionTo(AuditStatusCounting) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to COUNTING", a.Status))
	}
	if a.ItemsTotal == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot start counting with no items")
	}
	a.Status = AuditStatusCounting
	a.touch()
	return nil
}

// RecordCount enters the physical count for one line
func (a *Audit) RecordCount(itemID uuid.UUID, physical int, reasonCode, notes string, replacementCost decimal.Decimal) error {
	if a.Status != AuditStatusCounting {
		return shared.NewDomainError("INVALID_STATUS", "Can only record counts in COUNTING status")
	}
	for idx := range a.Lines {
		if a.Lines[idx].ItemID == itemID {
			wasCounted := a.Lines[idx].Counted()
			if err := a.Lines[idx].RecordCount(physical, reasonCode, notes, replacementCost); err != nil {
				return err
			}
			if !wasCounted {
				a.ItemsCounted++
			}
			a.touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Item not found in audit")
}

// ReviewLine marks a counted line as reviewed
func (a *Audit) ReviewLine(itemID uuid.UUID) error {
	if a.Status != AuditStatusCounting {
		return shared.NewDomainError("INVALID_STATUS", "Can only review lines in COUNTING status")
	}
	for idx := range a.Lines {
		if a.Lines[idx].ItemID == itemID {
			if err := a.Lines[idx].MarkReviewed(); err != nil {
				return err
			}
			a.touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Item not found in audit")
}

// Submit validates completeness and computes the variance totals. Returns
// true if the audit auto-approves: no shortages means no approval gate, and
// the caller emits positive adjustments immediately. Any shortage parks the
// audit in pending approval with no movements emitted.
func (a *Audit) Submit() (autoApproved bool, err error) {
	if a.Status != AuditStatusCounting {
		return false, shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Cannot submit audit in %s status", a.Status))
	}
	if a.ItemsCounted != a.ItemsTotal {
		return false, shared.NewDomainError("INCOMPLETE_COUNT",
			fmt.Sprintf("Not all items have been counted (%d/%d)", a.ItemsCounted, a.ItemsTotal))
	}
	for _, line := range a.Lines {
		if line.HasVariance() && line.ReasonCode == "" {
			return false, shared.NewDomainError("MISSING_REASON",
				fmt.Sprintf("Line for item %s has variance %d but no reason code", line.ItemName, line.Variance))
		}
	}

	a.VariancePositive = 0
	a.VarianceNegative = 0
	for _, line := range a.Lines {
		if line.Variance > 0 {
			a.VariancePositive += line.Variance
		} else if line.Variance < 0 {
			a.VarianceNegative += line.Variance
		}
	}

	now := time.Now()
	a.SubmittedAt = &now

	if a.VarianceNegative == 0 {
		a.Status = AuditStatusApproved
		a.AutoApproved = true
		a.ResolvedAt = &now
		a.touch()
		a.AddDomainEvent(NewAuditApprovedEvent(a, a.CreatedByID, true))
		return true, nil
	}

	a.Status = AuditStatusPendingApproval
	a.touch()
	a.AddDomainEvent(NewAuditSubmittedEvent(a))
	return false, nil
}

// Approve resolves a pending audit; the caller emits one adjustment movement
// per non-zero-variance line afterwards, in the same transaction.
func (a *Audit) Approve(approverID uuid.UUID) error {
	if !a.Status.CanTransitionTo(AuditStatusApproved) || a.Status != AuditStatusPendingApproval {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to APPROVED", a.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	now := time.Now()
	a.Status = AuditStatusApproved
	a.ResolvedAt = &now
	a.ResolvedByID = &approverID
	a.touch()
	a.AddDomainEvent(NewAuditApprovedEvent(a, approverID, false))
	return nil
}

// Reject resolves a pending audit without emitting any movements
func (a *Audit) Reject(approverID uuid.UUID, reason string) error {
	if !a.Status.CanTransitionTo(AuditStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to REJECTED", a.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	now := time.Now()
	a.Status = AuditStatusRejected
	a.ResolvedAt = &now
	a.ResolvedByID = &approverID
	a.RejectionReason = reason
	a.touch()
	a.AddDomainEvent(NewAuditRejectedEvent(a, approverID, reason))
	return nil
}

// VarianceLines returns the counted lines with a non-zero variance
func (a *Audit) VarianceLines() []AuditLine {
	result := make([]AuditLine, 0)
	for _, line := range a.Lines {
		if line.HasVariance() {
			result = append(result, line)
		}
	}
	return result
}

// UncountedLines returns the lines still waiting for a physical count
func (a *Audit) UncountedLines() []AuditLine {
	result := make([]AuditLine, 0)
	for _, line := range a.Lines {
		if !line.Counted() {
			result = append(result, line)
		}
	}
	return result
}

// Progress returns the counting progress as a percentage
func (a *Audit) Progress() float64 {
	if a.ItemsTotal == 0 {
		return 0
	}
	return float64(a.ItemsCounted) / float64(a.ItemsTotal) * 100
}

func (a *Audit) touch() {
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}
