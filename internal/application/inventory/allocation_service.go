package inventory

import (
	"context"
	"fmt"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationService answers holdership questions. The outstanding quantity
// is never read from a stored counter: every response derives it from the
// movement ledger, so the ledger stays the single source of truth.
type AllocationService struct {
	allocationRepo inventory.AllocationRepository
	movementRepo   inventory.MovementRepository
	itemRepo       inventory.ItemRepository
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	allocationRepo inventory.AllocationRepository,
	movementRepo inventory.MovementRepository,
	itemRepo inventory.ItemRepository,
) *AllocationService {
	return &AllocationService{
		allocationRepo: allocationRepo,
		movementRepo:   movementRepo,
		itemRepo:       itemRepo,
	}
}

// OutstandingForReference reports what one subscription or event still
// holds, item by item
func (s *AllocationService) OutstandingForReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) (*OutstandingResponse, error) {
	if !ref.IsCustomerHeld() {
		return nil, shared.NewDomainError("INVALID_REFERENCE",
			"Outstanding is only tracked for subscription and event references")
	}

	allocations, err := s.allocationRepo.FindActiveByReference(ctx, outletID, ref)
	if err != nil {
		return nil, err
	}

	resp := &OutstandingResponse{
		ReferenceType: ref.Type.String(),
		ReferenceID:   ref.ID,
		Items:         make([]AllocationResponse, 0, len(allocations)),
	}
	for i := range allocations {
		alloc := &allocations[i]
		outstanding, err := s.movementRepo.SumOutstandingForReference(ctx, outletID, alloc.ItemID, ref)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, ToAllocationResponse(alloc, outstanding))
		resp.TotalHeld += outstanding
	}
	return resp, nil
}

// OutstandingForItem lists the active allocations of one item with their
// ledger-derived outstanding quantities
func (s *AllocationService) OutstandingForItem(ctx context.Context, outletID, itemID uuid.UUID) ([]AllocationResponse, error) {
	if _, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID); err != nil {
		return nil, err
	}

	allocations, err := s.allocationRepo.FindActiveByItem(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}

	responses := make([]AllocationResponse, 0, len(allocations))
	for i := range allocations {
		alloc := &allocations[i]
		outstanding, err := s.movementRepo.SumOutstandingForReference(ctx, outletID, itemID, alloc.Reference())
		if err != nil {
			return nil, err
		}
		responses = append(responses, ToAllocationResponse(alloc, outstanding))
	}
	return responses, nil
}

// CheckReferenceClosable reports whether a subscription or event can be
// terminated: it is closable only when nothing remains outstanding. The CRM
// collaborator calls this before cancelling.
func (s *AllocationService) CheckReferenceClosable(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) (bool, int, error) {
	resp, err := s.OutstandingForReference(ctx, outletID, ref)
	if err != nil {
		return false, 0, err
	}
	return resp.TotalHeld == 0, resp.TotalHeld, nil
}

// CloseReference finalizes a cancelled subscription or event by deactivating
// every allocation row it still has active. Rejected while anything remains
// outstanding; the CRM collaborator calls this after a successful
// cancellation. Returns the number of rows closed. Normally resolution has
// already deactivated each row at outstanding zero, so this is usually a
// no-op sweep.
func (s *AllocationService) CloseReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) (int, error) {
	if !ref.IsCustomerHeld() {
		return 0, shared.NewDomainError("INVALID_REFERENCE",
			"Only subscription and event references can be closed")
	}

	allocations, err := s.allocationRepo.FindActiveByReference(ctx, outletID, ref)
	if err != nil {
		return 0, err
	}
	for i := range allocations {
		outstanding, err := s.movementRepo.SumOutstandingForReference(ctx, outletID, allocations[i].ItemID, ref)
		if err != nil {
			return 0, err
		}
		if outstanding > 0 {
			return 0, shared.NewDomainError("REFERENCE_NOT_CLOSABLE",
				fmt.Sprintf("Reference %s still holds %d units", ref.ID, outstanding))
		}
	}

	closed := 0
	for i := range allocations {
		alloc := &allocations[i]
		alloc.Deactivate()
		if err := s.allocationRepo.Save(ctx, alloc); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
