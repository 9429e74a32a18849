package inventory

import (
	"context"
	"time"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemService handles item registry operations: master data, lifecycle
// transitions and the deletion guard. Balance changes never go through here;
// they belong to the LedgerService.
type ItemService struct {
	itemRepo       inventory.ItemRepository
	movementRepo   inventory.MovementRepository
	eventPublisher shared.EventPublisher
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo inventory.ItemRepository, movementRepo inventory.MovementRepository) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ItemService) publishDomainEvents(ctx context.Context, item *inventory.Item) {
	if s.eventPublisher == nil {
		item.ClearDomainEvents()
		return
	}
	events := item.GetDomainEvents()
	if len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	item.ClearDomainEvents()
}

// Create registers a new item in draft state
func (s *ItemService) Create(ctx context.Context, outletID, actorID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	taken, err := s.itemRepo.ExistsByName(ctx, outletID, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An item with this name already exists in the outlet")
	}

	item, err := inventory.NewItem(outletID, req.Name, req.Category, req.Material, req.Unit)
	if err != nil {
		return nil, err
	}
	item.SetCreatedBy(actorID)
	if req.ReplacementCost != nil {
		if err := item.SetReplacementCost(*req.ReplacementCost); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	resp := ToItemResponse(item)
	return &resp, nil
}

// Update changes item master data. Archived items are read-only.
func (s *ItemService) Update(ctx context.Context, outletID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Lifecycle == inventory.LifecycleArchived {
		return nil, shared.NewDomainError("ITEM_ARCHIVED", "Archived items are read-only")
	}

	if req.Name != nil && *req.Name != item.Name {
		taken, err := s.itemRepo.ExistsByName(ctx, outletID, *req.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An item with this name already exists in the outlet")
		}
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Material != nil {
		item.Material = *req.Material
	}
	if req.Unit != nil && *req.Unit != "" {
		item.Unit = *req.Unit
	}
	if req.ReplacementCost != nil {
		if err := item.SetReplacementCost(*req.ReplacementCost); err != nil {
			return nil, err
		}
	}
	item.Touch()
	item.IncrementVersion()

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, outletID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, outletID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := toItemDomainFilter(filter)

	items, err := s.itemRepo.FindAllForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountForOutlet(ctx, outletID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToItemResponse(&items[i]))
	}
	return responses, total, nil
}

// Activate transitions an item to active
func (s *ItemService) Activate(ctx context.Context, outletID, itemID uuid.UUID) (*ItemResponse, error) {
	return s.transition(ctx, outletID, itemID, func(item *inventory.Item) error {
		return item.Activate()
	})
}

// Discontinue withdraws an item from new allocations
func (s *ItemService) Discontinue(ctx context.Context, outletID, itemID uuid.UUID) (*ItemResponse, error) {
	return s.transition(ctx, outletID, itemID, func(item *inventory.Item) error {
		return item.Discontinue()
	})
}

// Archive makes an item permanently read-only
func (s *ItemService) Archive(ctx context.Context, outletID, itemID uuid.UUID) (*ItemResponse, error) {
	return s.transition(ctx, outletID, itemID, func(item *inventory.Item) error {
		return item.Archive(time.Now())
	})
}

func (s *ItemService) transition(ctx context.Context, outletID, itemID uuid.UUID, apply func(*inventory.Item) error) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}
	if err := apply(item); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)
	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete hard-deletes an item. Only permitted when the item holds no stock
// and has never moved against a subscription or event; otherwise the item
// must be discontinued so its ledger history stays resolvable.
func (s *ItemService) Delete(ctx context.Context, outletID, itemID uuid.UUID) error {
	item, err := s.itemRepo.FindByIDForOutlet(ctx, outletID, itemID)
	if err != nil {
		return err
	}
	hasHistory, err := s.movementRepo.HasReferenceMovements(ctx, itemID)
	if err != nil {
		return err
	}
	if err := item.CanDelete(hasHistory); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, itemID)
}

// ArchiveIdleItems archives every discontinued item that has held zero stock
// and seen no movement for twelve months. Returns the number archived.
// Intended for a periodic maintenance job.
func (s *ItemService) ArchiveIdleItems(ctx context.Context, outletID uuid.UUID) (int, error) {
	now := time.Now()
	cutoff := now.Add(-12 * 30 * 24 * time.Hour)
	candidates, err := s.itemRepo.FindArchiveCandidates(ctx, outletID, cutoff)
	if err != nil {
		return 0, err
	}

	archived := 0
	for i := range candidates {
		item := &candidates[i]
		if err := item.Archive(now); err != nil {
			continue
		}
		if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
			return archived, err
		}
		s.publishDomainEvents(ctx, item)
		archived++
	}
	return archived, nil
}

func toItemDomainFilter(filter ItemListFilter) inventory.ItemFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := inventory.ItemFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
			Filters:  make(map[string]interface{}),
		},
		Category: filter.Category,
		Material: filter.Material,
		Search:   filter.Search,
	}
	if filter.Lifecycle != "" {
		lc := inventory.LifecycleStatus(filter.Lifecycle)
		domainFilter.Lifecycle = &lc
	}
	if filter.HasAvailable != nil && *filter.HasAvailable {
		domainFilter.HasAvailable = true
	}
	if filter.HasDamaged != nil && *filter.HasDamaged {
		domainFilter.HasDamaged = true
	}
	return domainFilter
}
