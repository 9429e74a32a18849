package inventory

import (
	"context"
	"fmt"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditService drives the monthly physical-count workflow. Variances never
// touch balances directly: an approved audit emits ordinary adjustment
// movements through the ledger, one per variance line, inside the same
// transaction that resolves the audit.
type AuditService struct {
	scope          TransactionScope
	auditRepo      inventory.AuditRepository
	itemRepo       inventory.ItemRepository
	eventPublisher shared.EventPublisher
}

// NewAuditService creates a new AuditService
func NewAuditService(scope TransactionScope, auditRepo inventory.AuditRepository, itemRepo inventory.ItemRepository) *AuditService {
	return &AuditService{
		scope:     scope,
		auditRepo: auditRepo,
		itemRepo:  itemRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AuditService) publishDomainEvents(ctx context.Context, audit *inventory.Audit) {
	if s.eventPublisher == nil {
		audit.ClearDomainEvents()
		return
	}
	events := audit.GetDomainEvents()
	if len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	audit.ClearDomainEvents()
}

// Create opens a draft audit for the period and snapshots the system
// quantities of the selected items. At most one audit may be in flight per
// outlet, and periods are never audited twice.
func (s *AuditService) Create(ctx context.Context, outletID uuid.UUID, actor inventory.Actor, req CreateAuditRequest) (*AuditResponse, error) {
	var audit *inventory.Audit
	// the uniqueness checks run in the same transaction as the insert so two
	// concurrent creates cannot both pass them
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inFlight, err := repos.AuditRepo().FindInFlight(ctx, outletID)
		if err != nil {
			return err
		}
		if inFlight != nil {
			return shared.NewDomainError("AUDIT_IN_FLIGHT",
				"Another audit is already in progress for this outlet")
		}
		exists, err := repos.AuditRepo().ExistsForPeriod(ctx, outletID, req.Period)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS",
				"An audit already exists for this period")
		}

		audit, err = inventory.NewAudit(outletID, req.Period, actor.ID)
		if err != nil {
			return err
		}
		items, err := s.countableItems(ctx, outletID, req.ItemIDs)
		if err != nil {
			return err
		}
		for i := range items {
			if err := audit.SnapshotItem(&items[i]); err != nil {
				return err
			}
		}
		return repos.AuditRepo().SaveWithLines(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, audit)

	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// countableItems resolves which items enter the audit: the explicit
// selection, or every non-archived item of the outlet
func (s *AuditService) countableItems(ctx context.Context, outletID uuid.UUID, itemIDs []uuid.UUID) ([]inventory.Item, error) {
	if len(itemIDs) > 0 {
		items, err := s.itemRepo.FindByIDs(ctx, outletID, itemIDs)
		if err != nil {
			return nil, err
		}
		if len(items) != len(itemIDs) {
			return nil, shared.NewDomainError("INVALID_ITEM", "One or more selected items do not exist in the outlet")
		}
		for i := range items {
			if items[i].Lifecycle == inventory.LifecycleArchived {
				return nil, shared.NewDomainError("ITEM_ARCHIVED",
					"Archived items cannot be counted")
			}
		}
		return items, nil
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 10000
	return s.itemRepo.FindActive(ctx, outletID, filter)
}

// StartCounting moves a draft audit into the counting phase
func (s *AuditService) StartCounting(ctx context.Context, outletID, auditID uuid.UUID) (*AuditResponse, error) {
	audit, err := s.auditRepo.FindByIDForOutlet(ctx, outletID, auditID)
	if err != nil {
		return nil, err
	}
	if err := audit.StartCounting(); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLines(ctx, audit); err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// RecordCount enters one physical count. The variance amount is valued at
// the item's current replacement cost.
func (s *AuditService) RecordCount(ctx context.Context, outletID, auditID uuid.UUID, req RecordAuditCountRequest) (*AuditResponse, error) {
	audit, err := s.auditRepo.FindByIDForOutlet(ctx, outletID, auditID)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if err := audit.RecordCount(req.ItemID, req.PhysicalQuantity, req.ReasonCode, req.Notes, item.ReplacementCost); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLines(ctx, audit); err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// ReviewLine marks a counted line as double-checked
func (s *AuditService) ReviewLine(ctx context.Context, outletID, auditID, itemID uuid.UUID) (*AuditResponse, error) {
	audit, err := s.auditRepo.FindByIDForOutlet(ctx, outletID, auditID)
	if err != nil {
		return nil, err
	}
	if err := audit.ReviewLine(itemID); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLines(ctx, audit); err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// Submit finalizes the counting phase. Without shortages the audit
// auto-approves and its surplus adjustments hit the ledger immediately; any
// shortage parks it in pending approval with no movements emitted.
func (s *AuditService) Submit(ctx context.Context, outletID, auditID uuid.UUID, actor inventory.Actor) (*AuditResponse, error) {
	var audit *inventory.Audit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		audit, err = repos.AuditRepo().FindByIDForOutlet(ctx, outletID, auditID)
		if err != nil {
			return err
		}
		autoApproved, err := audit.Submit()
		if err != nil {
			return err
		}
		if autoApproved {
			if err := s.emitVarianceAdjustments(ctx, repos, audit, actor); err != nil {
				return err
			}
		}
		return repos.AuditRepo().SaveWithLines(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, audit)

	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// Approve resolves a pending audit. Admin only; the shortage and surplus
// adjustments are emitted through the ledger in the same transaction.
func (s *AuditService) Approve(ctx context.Context, outletID, auditID uuid.UUID, actor inventory.Actor) (*AuditResponse, error) {
	if !inventory.CanApproveAudit(actor) {
		return nil, shared.NewDomainError("FORBIDDEN", "Audit approval requires an admin")
	}

	var audit *inventory.Audit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		audit, err = repos.AuditRepo().FindByIDForOutlet(ctx, outletID, auditID)
		if err != nil {
			return err
		}
		if err := audit.Approve(actor.ID); err != nil {
			return err
		}
		if err := s.emitVarianceAdjustments(ctx, repos, audit, actor); err != nil {
			return err
		}
		return repos.AuditRepo().SaveWithLines(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, audit)

	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// Reject resolves a pending audit without touching balances. Admin only.
func (s *AuditService) Reject(ctx context.Context, outletID, auditID uuid.UUID, actor inventory.Actor, req RejectAuditRequest) (*AuditResponse, error) {
	if !inventory.CanApproveAudit(actor) {
		return nil, shared.NewDomainError("FORBIDDEN", "Audit rejection requires an admin")
	}

	audit, err := s.auditRepo.FindByIDForOutlet(ctx, outletID, auditID)
	if err != nil {
		return nil, err
	}
	if err := audit.Reject(actor.ID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.auditRepo.SaveWithLines(ctx, audit); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, audit)

	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// emitVarianceAdjustments converts every variance line into an ordinary
// adjustment movement referencing the audit, applied through the same
// validate-then-apply path as any other movement.
func (s *AuditService) emitVarianceAdjustments(
	ctx context.Context,
	repos TransactionalRepositories,
	audit *inventory.Audit,
	actor inventory.Actor,
) error {
	for _, line := range audit.VarianceLines() {
		subtype := inventory.SubtypeAdjustmentIncrease
		quantity := line.Variance
		if line.Variance < 0 {
			subtype = inventory.SubtypeAdjustmentDecrease
			quantity = -line.Variance
		}

		movement, err := inventory.NewMovement(
			audit.OutletID, line.ItemID,
			inventory.MovementCategoryAdjustment, subtype,
			quantity, inventory.ManualRef(audit.ID), actor,
		)
		if err != nil {
			return err
		}
		movement.WithReasonCode(line.ReasonCode).
			WithNotes(fmt.Sprintf("Variance adjustment from the %s audit", audit.Period))

		item, err := repos.ItemRepo().FindByIDForUpdate(ctx, audit.OutletID, line.ItemID)
		if err != nil {
			return err
		}
		if err := item.GateMovement(inventory.MovementCategoryAdjustment); err != nil {
			return err
		}
		if err := appendMovement(ctx, repos, item, movement); err != nil {
			return err
		}
		item.ClearDomainEvents()
	}
	return nil
}

// GetByID retrieves an audit with its lines
func (s *AuditService) GetByID(ctx context.Context, outletID, auditID uuid.UUID) (*AuditResponse, error) {
	audit, err := s.auditRepo.FindByIDForOutlet(ctx, outletID, auditID)
	if err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit, true)
	return &resp, nil
}

// List retrieves audits with filtering and pagination
func (s *AuditService) List(ctx context.Context, outletID uuid.UUID, filter AuditListFilter) ([]AuditResponse, int64, error) {
	domainFilter := toAuditDomainFilter(filter)

	audits, err := s.auditRepo.FindAllForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.CountForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AuditResponse, 0, len(audits))
	for i := range audits {
		responses = append(responses, ToAuditResponse(&audits[i], false))
	}
	return responses, total, nil
}

func toAuditDomainFilter(filter AuditListFilter) inventory.AuditFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "period"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := inventory.AuditFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Filters:  make(map[string]interface{}),
		},
		Period:    filter.Period,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	if filter.Status != "" {
		st := inventory.AuditStatus(filter.Status)
		domainFilter.Status = &st
	}
	return domainFilter
}
