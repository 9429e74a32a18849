package inventory

import (
	"time"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID                      uuid.UUID       `json:"id"`
	OutletID                uuid.UUID       `json:"outlet_id"`
	Name                    string          `json:"name"`
	Category                string          `json:"category"`
	Material                string          `json:"material"`
	Unit                    string          `json:"unit"`
	Lifecycle               string          `json:"lifecycle"`
	AvailableQuantity       int             `json:"available_quantity"`
	AllocatedQuantity       int             `json:"allocated_quantity"`
	DamagedQuantity         int             `json:"damaged_quantity"`
	InRepairQuantity        int             `json:"in_repair_quantity"`
	LostQuantity            int             `json:"lost_quantity"`
	TotalQuantity           int             `json:"total_quantity"`
	OpeningBalanceConfirmed bool            `json:"opening_balance_confirmed"`
	ReplacementCost         decimal.Decimal `json:"replacement_cost"`
	LastMovementAt          *time.Time      `json:"last_movement_at,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
	Version                 int             `json:"version"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:                      item.ID,
		OutletID:                item.OutletID,
		Name:                    item.Name,
		Category:                item.Category,
		Material:                item.Material,
		Unit:                    item.Unit,
		Lifecycle:               item.Lifecycle.String(),
		AvailableQuantity:       item.AvailableQuantity,
		AllocatedQuantity:       item.AllocatedQuantity,
		DamagedQuantity:         item.DamagedQuantity,
		InRepairQuantity:        item.InRepairQuantity,
		LostQuantity:            item.LostQuantity,
		TotalQuantity:           item.TotalQuantity,
		OpeningBalanceConfirmed: item.OpeningBalanceConfirmed,
		ReplacementCost:         item.ReplacementCost,
		LastMovementAt:          item.LastMovementAt,
		CreatedAt:               item.CreatedAt,
		UpdatedAt:               item.UpdatedAt,
		Version:                 item.Version,
	}
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search       string `form:"search"`
	Lifecycle    string `form:"lifecycle" binding:"omitempty,oneof=DRAFT ACTIVE DISCONTINUED ARCHIVED"`
	Category     string `form:"category"`
	Material     string `form:"material"`
	HasAvailable *bool  `form:"has_available"`
	HasDamaged   *bool  `form:"has_damaged"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateItemRequest represents a request to register a new item
type CreateItemRequest struct {
	Name            string           `json:"name" binding:"required,max=150"`
	Category        string           `json:"category" binding:"max=50"`
	Material        string           `json:"material" binding:"max=50"`
	Unit            string           `json:"unit" binding:"max=20"`
	ReplacementCost *decimal.Decimal `json:"replacement_cost"`
}

// UpdateItemRequest represents a request to update item master data
type UpdateItemRequest struct {
	Name            *string          `json:"name" binding:"omitempty,max=150"`
	Category        *string          `json:"category" binding:"omitempty,max=50"`
	Material        *string          `json:"material" binding:"omitempty,max=50"`
	Unit            *string          `json:"unit" binding:"omitempty,max=20"`
	ReplacementCost *decimal.Decimal `json:"replacement_cost"`
}

// RecordMovementRequest represents a request to append a ledger entry.
// Category and subtype are enumerated; the reference is optional and must be
// well-formed when present.
type RecordMovementRequest struct {
	ItemID         uuid.UUID  `json:"item_id" binding:"required"`
	Category       string     `json:"category" binding:"required,oneof=INFLOW OUTFLOW RETURN WRITEOFF ADJUSTMENT REPAIR"`
	Subtype        string     `json:"subtype"`
	Quantity       int        `json:"quantity" binding:"required,gt=0"`
	ReferenceType  string     `json:"reference_type" binding:"omitempty,oneof=SUBSCRIPTION EVENT MANUAL"`
	ReferenceID    *uuid.UUID `json:"reference_id"`
	ReasonCode     string     `json:"reason_code" binding:"max=50"`
	Notes          string     `json:"notes" binding:"max=500"`
	IdempotencyKey string     `json:"idempotency_key" binding:"max=100"`
}

// Reference builds the tagged reference variant from the request fields
func (r RecordMovementRequest) Reference() (inventory.Reference, error) {
	if r.ReferenceType == "" {
		return inventory.NoReference(), nil
	}
	if r.ReferenceID == nil {
		return inventory.Reference{}, inventory.ErrReferenceIDRequired
	}
	return inventory.Reference{
		Type: inventory.ReferenceType(r.ReferenceType),
		ID:   *r.ReferenceID,
	}, nil
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	OutletID      uuid.UUID  `json:"outlet_id"`
	ItemID        uuid.UUID  `json:"item_id"`
	Category      string     `json:"category"`
	Subtype       string     `json:"subtype,omitempty"`
	Quantity      int        `json:"quantity"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ReasonCode    string     `json:"reason_code,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	BalanceBefore int        `json:"balance_before"`
	BalanceAfter  int        `json:"balance_after"`
	ActorID       uuid.UUID  `json:"actor_id"`
	ActorRole     string     `json:"actor_role"`
	OccurredAt    time.Time  `json:"occurred_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain movement to a response DTO
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		OutletID:      m.OutletID,
		ItemID:        m.ItemID,
		Category:      m.Category.String(),
		Subtype:       m.Subtype.String(),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType.String(),
		ReferenceID:   m.ReferenceID,
		ReasonCode:    m.ReasonCode,
		Notes:         m.Notes,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ActorID:       m.ActorID,
		ActorRole:     m.ActorRole.String(),
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	ItemID        *uuid.UUID `form:"item_id"`
	Category      string     `form:"category" binding:"omitempty,oneof=INFLOW OUTFLOW RETURN WRITEOFF ADJUSTMENT REPAIR"`
	Subtype       string     `form:"subtype"`
	ReferenceType string     `form:"reference_type" binding:"omitempty,oneof=SUBSCRIPTION EVENT MANUAL"`
	ReferenceID   *uuid.UUID `form:"reference_id"`
	ActorID       *uuid.UUID `form:"actor_id"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RecordMovementResponse couples the accepted ledger entry with the item's
// balances after apply and the replacement charge, if any
type RecordMovementResponse struct {
	Movement     MovementResponse    `json:"movement"`
	Balances     inventory.Balances  `json:"balances"`
	ChargeAmount *decimal.Decimal    `json:"charge_amount,omitempty"`
	Allocation   *AllocationResponse `json:"allocation,omitempty"`
}

// BalancesResponse couples the materialized balances with the ledger-derived
// snapshot for drift inspection
type BalancesResponse struct {
	ItemID       uuid.UUID          `json:"item_id"`
	Materialized inventory.Balances `json:"materialized"`
	Replayed     inventory.Balances `json:"replayed"`
	InSync       bool               `json:"in_sync"`
}

// AllocationResponse represents an allocation with its derived outstanding
// quantity
type AllocationResponse struct {
	ID                uuid.UUID  `json:"id"`
	OutletID          uuid.UUID  `json:"outlet_id"`
	ItemID            uuid.UUID  `json:"item_id"`
	ReferenceType     string     `json:"reference_type"`
	ReferenceID       uuid.UUID  `json:"reference_id"`
	AllocatedQuantity int        `json:"allocated_quantity"`
	Outstanding       int        `json:"outstanding"`
	Active            bool       `json:"active"`
	DeactivatedAt     *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToAllocationResponse converts a domain allocation plus its ledger-derived
// outstanding quantity to a response DTO
func ToAllocationResponse(a *inventory.Allocation, outstanding int) AllocationResponse {
	return AllocationResponse{
		ID:                a.ID,
		OutletID:          a.OutletID,
		ItemID:            a.ItemID,
		ReferenceType:     a.ReferenceType.String(),
		ReferenceID:       a.ReferenceID,
		AllocatedQuantity: a.AllocatedQuantity,
		Outstanding:       outstanding,
		Active:            a.Active,
		DeactivatedAt:     a.DeactivatedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// OutstandingResponse summarizes what a reference still holds
type OutstandingResponse struct {
	ReferenceType string               `json:"reference_type"`
	ReferenceID   uuid.UUID            `json:"reference_id"`
	Items         []AllocationResponse `json:"items"`
	TotalHeld     int                  `json:"total_held"`
}

// CreateAuditRequest represents a request to open a physical-count audit
type CreateAuditRequest struct {
	Period  string      `json:"period" binding:"required,len=7"`
	ItemIDs []uuid.UUID `json:"item_ids"` // empty means every countable item
}

// RecordAuditCountRequest represents one physical count entry
type RecordAuditCountRequest struct {
	ItemID           uuid.UUID `json:"item_id" binding:"required"`
	PhysicalQuantity int       `json:"physical_quantity" binding:"min=0"`
	ReasonCode       string    `json:"reason_code" binding:"max=50"`
	Notes            string    `json:"notes" binding:"max=500"`
}

// RejectAuditRequest represents a rejection with its mandatory reason
type RejectAuditRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// AuditLineResponse represents one audit line
type AuditLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	ItemName         string          `json:"item_name"`
	SystemQuantity   int             `json:"system_quantity"`
	PhysicalQuantity *int            `json:"physical_quantity,omitempty"`
	Variance         int             `json:"variance"`
	VarianceAmount   decimal.Decimal `json:"variance_amount"`
	ReasonCode       string          `json:"reason_code,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Status           string          `json:"status"`
}

// AuditResponse represents an audit with its lines
type AuditResponse struct {
	ID               uuid.UUID           `json:"id"`
	OutletID         uuid.UUID           `json:"outlet_id"`
	Period           string              `json:"period"`
	Status           string              `json:"status"`
	ItemsTotal       int                 `json:"items_total"`
	ItemsCounted     int                 `json:"items_counted"`
	Progress         float64             `json:"progress"`
	VariancePositive int                 `json:"variance_positive"`
	VarianceNegative int                 `json:"variance_negative"`
	AutoApproved     bool                `json:"auto_approved"`
	CreatedByID      uuid.UUID           `json:"created_by_id"`
	SubmittedAt      *time.Time          `json:"submitted_at,omitempty"`
	ResolvedAt       *time.Time          `json:"resolved_at,omitempty"`
	ResolvedByID     *uuid.UUID          `json:"resolved_by_id,omitempty"`
	RejectionReason  string              `json:"rejection_reason,omitempty"`
	Lines            []AuditLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToAuditResponse converts a domain audit to a response DTO
func ToAuditResponse(a *inventory.Audit, includeLines bool) AuditResponse {
	resp := AuditResponse{
		ID:               a.ID,
		OutletID:         a.OutletID,
		Period:           a.Period,
		Status:           a.Status.String(),
		ItemsTotal:       a.ItemsTotal,
		ItemsCounted:     a.ItemsCounted,
		Progress:         a.Progress(),
		VariancePositive: a.VariancePositive,
		VarianceNegative: a.VarianceNegative,
		AutoApproved:     a.AutoApproved,
		CreatedByID:      a.CreatedByID,
		SubmittedAt:      a.SubmittedAt,
		ResolvedAt:       a.ResolvedAt,
		ResolvedByID:     a.ResolvedByID,
		RejectionReason:  a.RejectionReason,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if includeLines {
		resp.Lines = make([]AuditLineResponse, 0, len(a.Lines))
		for _, line := range a.Lines {
			resp.Lines = append(resp.Lines, AuditLineResponse{
				ID:               line.ID,
				ItemID:           line.ItemID,
				ItemName:         line.ItemName,
				SystemQuantity:   line.SystemQuantity,
				PhysicalQuantity: line.PhysicalQuantity,
				Variance:         line.Variance,
				VarianceAmount:   line.VarianceAmount,
				ReasonCode:       line.ReasonCode,
				Notes:            line.Notes,
				Status:           string(line.Status),
			})
		}
	}
	return resp
}

// AuditListFilter represents filter options for the audit list
type AuditListFilter struct {
	Status    string     `form:"status" binding:"omitempty,oneof=DRAFT COUNTING PENDING_APPROVAL APPROVED REJECTED"`
	Period    string     `form:"period"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
