package inventory

import (
	"context"
	"fmt"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceDirectory resolves whether a referenced subscription or event
// exists within the outlet. The ledger validates references at the boundary;
// the directory is the port to the CRM collaborator that owns them.
type ReferenceDirectory interface {
	// Exists reports whether the referenced entity exists in the outlet
	Exists(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) (bool, error)
}

// AllowAllReferences accepts every reference. Used when the CRM collaborator
// is not deployed alongside the ledger.
type AllowAllReferences struct{}

// Exists always reports true.
func (AllowAllReferences) Exists(context.Context, uuid.UUID, inventory.Reference) (bool, error) {
	return true, nil
}

// LedgerService owns the single write path into the movement ledger. Every
// stock change across the system funnels through RecordMovement: validation,
// the append, the balance apply, the invariant check and the allocation
// bookkeeping all happen inside one database transaction.
type LedgerService struct {
	scope          TransactionScope
	movementRepo   inventory.MovementRepository
	itemRepo       inventory.ItemRepository
	refDirectory   ReferenceDirectory
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	movementRepo inventory.MovementRepository,
	itemRepo inventory.ItemRepository,
	refDirectory ReferenceDirectory,
) *LedgerService {
	if refDirectory == nil {
		refDirectory = AllowAllReferences{}
	}
	return &LedgerService{
		scope:          scope,
		movementRepo:   movementRepo,
		itemRepo:       itemRepo,
		refDirectory:   refDirectory,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables idempotency-key deduplication for movements
func (s *LedgerService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idempotencyCfg = cfg
}

// RecordMovement validates and appends one ledger entry, applying its effect
// to the item's balances atomically. This is the only path that mutates
// stock; rejected movements leave no trace.
func (s *LedgerService) RecordMovement(
	ctx context.Context,
	outletID uuid.UUID,
	actor inventory.Actor,
	req RecordMovementRequest,
) (*RecordMovementResponse, error) {
	category := inventory.MovementCategory(req.Category)
	subtype := inventory.MovementSubtype(req.Subtype)

	ref, err := req.Reference()
	if err != nil {
		return nil, err
	}
	if err := s.checkActorPermissions(subtype, actor); err != nil {
		return nil, err
	}
	if category == inventory.MovementCategoryAdjustment {
		if req.ReasonCode == "" {
			return nil, shared.NewDomainError("MISSING_REASON", "Adjustments require a reason code")
		}
		if req.Notes == "" {
			return nil, shared.NewDomainError("MISSING_NOTES", "Adjustments require explanatory notes")
		}
	}
	if ref.IsCustomerHeld() {
		exists, err := s.refDirectory.Exists(ctx, outletID, ref)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.ErrInvalidReference
		}
	}
	if err := s.claimIdempotencyKey(ctx, outletID, req.IdempotencyKey); err != nil {
		return nil, err
	}

	movement, err := inventory.NewMovement(outletID, req.ItemID, category, subtype, req.Quantity, ref, actor)
	if err != nil {
		return nil, err
	}
	movement.WithReasonCode(req.ReasonCode).WithNotes(req.Notes)

	var (
		item       *inventory.Item
		allocation *inventory.Allocation
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err = repos.ItemRepo().FindByIDForUpdate(ctx, outletID, req.ItemID)
		if err != nil {
			return err
		}
		if err := item.GateMovement(category); err != nil {
			return err
		}
		if item.OpeningBalanceConfirmed && category == inventory.MovementCategoryAdjustment &&
			!inventory.CanAdjustConfirmedItem(actor) {
			return shared.NewDomainError("FORBIDDEN",
				"Adjustments after opening balance confirmation require an admin")
		}
		held, err := s.guardResolution(ctx, repos, item, movement)
		if err != nil {
			return err
		}
		if err := appendMovement(ctx, repos, item, movement); err != nil {
			return err
		}
		allocation, err = s.syncAllocation(ctx, repos, item, movement, held)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishMovementEvents(ctx, item, movement, allocation)

	resp := &RecordMovementResponse{
		Movement: ToMovementResponse(movement),
		Balances: inventory.BalancesOf(item),
	}
	if charge := replacementCharge(item, movement); charge != nil {
		resp.ChargeAmount = charge
	}
	if allocation != nil {
		outstanding, err := s.movementRepo.SumOutstandingForReference(ctx, outletID, item.ID, allocation.Reference())
		if err == nil {
			ar := ToAllocationResponse(allocation, outstanding)
			resp.Allocation = &ar
		}
	}
	return resp, nil
}

// appendMovement performs the validate-then-apply sequence shared by direct
// movement recording and audit approval: snapshot the balance, apply the
// fold step, re-check the invariant, append the ledger row and persist the
// item under its optimistic version check.
func appendMovement(
	ctx context.Context,
	repos TransactionalRepositories,
	item *inventory.Item,
	movement *inventory.Movement,
) error {
	movement.BalanceBefore = item.AvailableQuantity
	if err := inventory.ApplyMovement(item, movement); err != nil {
		return err
	}
	movement.BalanceAfter = item.AvailableQuantity
	if err := item.CheckInvariant(); err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return err
	}
	return repos.ItemRepo().SaveWithLock(ctx, item)
}

// guardResolution validates a return or writeoff against a customer-held
// reference before the movement is appended: the pair must hold an active
// allocation, and the quantity must be covered by the ledger-derived
// outstanding. Computed pre-append, so a reference can never give back more
// than it took out.
func (s *LedgerService) guardResolution(
	ctx context.Context,
	repos TransactionalRepositories,
	item *inventory.Item,
	movement *inventory.Movement,
) (*inventory.Allocation, error) {
	if !movement.ResolvesAllocation() {
		return nil, nil
	}
	ref := movement.Reference()

	alloc, err := repos.AllocationRepo().FindActiveByItemAndReference(ctx, movement.OutletID, item.ID, ref)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		// a return or writeoff against a reference that never took an
		// outflow for this item
		return nil, shared.NewDomainError("NO_ALLOCATION",
			fmt.Sprintf("Reference %s holds no allocation for this item", ref.ID))
	}
	outstanding, err := repos.MovementRepo().SumOutstandingForReference(ctx, movement.OutletID, item.ID, ref)
	if err != nil {
		return nil, err
	}
	if movement.Quantity > outstanding {
		return nil, shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Reference %s holds %d units of this item; cannot resolve %d",
				ref.ID, outstanding, movement.Quantity))
	}
	return alloc, nil
}

// syncAllocation keeps the allocation row for a customer-held reference in
// step with the ledger. Outflows grant; returns and writeoffs resolve, and
// the allocation deactivates once the ledger-derived outstanding hits zero.
// For resolving movements the active allocation was already loaded and
// validated by guardResolution.
func (s *LedgerService) syncAllocation(
	ctx context.Context,
	repos TransactionalRepositories,
	item *inventory.Item,
	movement *inventory.Movement,
	held *inventory.Allocation,
) (*inventory.Allocation, error) {
	ref := movement.Reference()
	if !ref.IsCustomerHeld() {
		return nil, nil
	}

	switch {
	case movement.Category == inventory.MovementCategoryOutflow:
		alloc, err := repos.AllocationRepo().FindActiveByItemAndReference(ctx, movement.OutletID, item.ID, ref)
		if err != nil {
			return nil, err
		}
		if alloc == nil {
			alloc, err = inventory.NewAllocation(movement.OutletID, item.ID, ref, movement.Quantity)
			if err != nil {
				return nil, err
			}
		} else if err := alloc.Grant(movement.Quantity); err != nil {
			return nil, err
		}
		if err := repos.AllocationRepo().Save(ctx, alloc); err != nil {
			return nil, err
		}
		return alloc, nil

	case movement.ResolvesAllocation():
		outstanding, err := repos.MovementRepo().SumOutstandingForReference(ctx, movement.OutletID, item.ID, ref)
		if err != nil {
			return nil, err
		}
		if outstanding <= 0 {
			held.Deactivate()
			if err := repos.AllocationRepo().Save(ctx, held); err != nil {
				return nil, err
			}
		}
		return held, nil
	}
	return nil, nil
}

// checkActorPermissions enforces role gating before any state is touched
func (s *LedgerService) checkActorPermissions(subtype inventory.MovementSubtype, actor inventory.Actor) error {
	if !actor.Role.IsValid() {
		return shared.NewDomainError("INVALID_ACTOR", "Actor role is not recognized")
	}
	if subtype == inventory.SubtypeAdjustmentDecrease && !inventory.CanRecordNegativeAdjustment(actor) {
		return shared.NewDomainError("FORBIDDEN", "Negative adjustments require an admin")
	}
	return nil
}

// claimIdempotencyKey reserves the request key. A duplicate key means the
// movement was already accepted; the caller gets a conflict, not a second
// ledger entry.
func (s *LedgerService) claimIdempotencyKey(ctx context.Context, outletID uuid.UUID, key string) error {
	if key == "" || s.idempotency == nil || !s.idempotencyCfg.Enabled {
		return nil
	}
	scoped := fmt.Sprintf("movement:%s:%s", outletID, key)
	fresh, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyCfg.TTL)
	if err != nil {
		return err
	}
	if !fresh {
		return shared.NewDomainError("DUPLICATE_REQUEST", "A movement with this idempotency key was already recorded")
	}
	return nil
}

func (s *LedgerService) publishMovementEvents(
	ctx context.Context,
	item *inventory.Item,
	movement *inventory.Movement,
	allocation *inventory.Allocation,
) {
	if s.eventPublisher == nil {
		item.ClearDomainEvents()
		return
	}
	events := append([]shared.DomainEvent{}, item.GetDomainEvents()...)
	events = append(events, inventory.NewMovementRecordedEvent(item, movement))
	if allocation != nil {
		if movement.Category == inventory.MovementCategoryOutflow {
			events = append(events, inventory.NewAllocationGrantedEvent(allocation, movement.Quantity))
		} else if !allocation.Active {
			events = append(events, inventory.NewAllocationReleasedEvent(allocation))
		}
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}

// replacementCharge computes the billable amount for losses and client
// damage against customer-held stock
func replacementCharge(item *inventory.Item, movement *inventory.Movement) *decimal.Decimal {
	if movement.Subtype != inventory.SubtypeWriteoffLoss &&
		movement.Subtype != inventory.SubtypeWriteoffClientDamage {
		return nil
	}
	if !movement.Reference().IsCustomerHeld() {
		return nil
	}
	charge := item.ChargeAmount(movement.Quantity)
	return &charge
}

// GetMovement retrieves a single ledger entry
func (s *LedgerService) GetMovement(ctx context.Context, outletID, movementID uuid.UUID) (*MovementResponse, error) {
	m, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m.OutletID != outletID {
		return nil, shared.ErrNotFound
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// ListMovements retrieves ledger entries for an outlet with filtering
func (s *LedgerService) ListMovements(ctx context.Context, outletID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := toMovementDomainFilter(filter)

	movements, err := s.movementRepo.FindForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// ListItemMovements retrieves the ledger history of one item
func (s *LedgerService) ListItemMovements(ctx context.Context, outletID, itemID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if _, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID); err != nil {
		return nil, 0, err
	}
	filter.ItemID = &itemID
	return s.ListMovements(ctx, outletID, filter)
}

// GetBalances returns the materialized balances next to a fresh ledger
// replay so callers can see whether the projection has drifted
func (s *LedgerService) GetBalances(ctx context.Context, outletID, itemID uuid.UUID) (*BalancesResponse, error) {
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}
	history, err := s.movementRepo.FindByItemChronological(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}
	replayed, err := inventory.ReplayLedger(item, movementPtrs(history))
	if err != nil {
		return nil, err
	}
	materialized := inventory.BalancesOf(item)
	return &BalancesResponse{
		ItemID:       itemID,
		Materialized: materialized,
		Replayed:     replayed,
		InSync:       materialized.Equal(replayed),
	}, nil
}

// RebuildBalances re-derives an item's balances from its full ledger history
// and overwrites the materialized pools when they have drifted. The slow
// path for recovery after a projection bug.
func (s *LedgerService) RebuildBalances(ctx context.Context, outletID, itemID uuid.UUID) (*BalancesResponse, error) {
	var resp *BalancesResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForUpdate(ctx, outletID, itemID)
		if err != nil {
			return err
		}
		history, err := repos.MovementRepo().FindByItemChronological(ctx, outletID, itemID)
		if err != nil {
			return err
		}
		replayed, err := inventory.ReplayLedger(item, movementPtrs(history))
		if err != nil {
			return err
		}
		materialized := inventory.BalancesOf(item)
		inSync := materialized.Equal(replayed)
		if !inSync {
			item.AvailableQuantity = replayed.Available
			item.AllocatedQuantity = replayed.Allocated
			item.DamagedQuantity = replayed.Damaged
			item.InRepairQuantity = replayed.InRepair
			item.LostQuantity = replayed.Lost
			item.TotalQuantity = replayed.Total
			if err := item.CheckInvariant(); err != nil {
				return err
			}
			item.Touch()
			item.IncrementVersion()
			if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
				return err
			}
		}
		resp = &BalancesResponse{
			ItemID:       itemID,
			Materialized: materialized,
			Replayed:     replayed,
			InSync:       inSync,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func movementPtrs(movements []inventory.Movement) []*inventory.Movement {
	ptrs := make([]*inventory.Movement, 0, len(movements))
	for i := range movements {
		ptrs = append(ptrs, &movements[i])
	}
	return ptrs
}

func toMovementDomainFilter(filter MovementListFilter) inventory.MovementFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "occurred_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := inventory.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Filters:  make(map[string]interface{}),
		},
		ItemID:      filter.ItemID,
		ReferenceID: filter.ReferenceID,
		ActorID:     filter.ActorID,
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
	}
	if filter.Category != "" {
		c := inventory.MovementCategory(filter.Category)
		domainFilter.Category = &c
	}
	if filter.Subtype != "" {
		st := inventory.MovementSubtype(filter.Subtype)
		domainFilter.Subtype = &st
	}
	if filter.ReferenceType != "" {
		rt := inventory.ReferenceType(filter.ReferenceType)
		domainFilter.ReferenceType = &rt
	}
	return domainFilter
}
