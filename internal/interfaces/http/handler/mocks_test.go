package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Mock implementations for inventory repositories

type mockItemRepository struct {
	items     map[uuid.UUID]*inventory.Item
	returnErr error
}

func newMockItemRepository() *mockItemRepository {
	return &mockItemRepository{items: make(map[uuid.UUID]*inventory.Item)}
}

func (m *mockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockItemRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if item, ok := m.items[id]; ok && item.OutletID == outletID {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockItemRepository) FindByIDForUpdate(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	return m.FindByIDForOutlet(ctx, outletID, id)
}

func (m *mockItemRepository) FindByName(ctx context.Context, outletID uuid.UUID, name string) (*inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, item := range m.items {
		if item.OutletID == outletID && item.Name == name {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockItemRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) ([]inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Item
	for _, item := range m.items {
		if item.OutletID != outletID {
			continue
		}
		if filter.Lifecycle != nil && item.Lifecycle != *filter.Lifecycle {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockItemRepository) FindByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Item
	for _, id := range ids {
		if item, ok := m.items[id]; ok && item.OutletID == outletID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockItemRepository) FindActive(ctx context.Context, outletID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Item
	for _, item := range m.items {
		if item.OutletID == outletID && item.Lifecycle != inventory.LifecycleArchived {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockItemRepository) FindArchiveCandidates(ctx context.Context, outletID uuid.UUID, idleSince time.Time) ([]inventory.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Item
	for _, item := range m.items {
		if item.OutletID != outletID || item.Lifecycle != inventory.LifecycleDiscontinued {
			continue
		}
		if item.TotalQuantity != 0 {
			continue
		}
		if item.LastMovementAt != nil && item.LastMovementAt.After(idleSince) {
			continue
		}
		result = append(result, *item)
	}
	return result, nil
}

func (m *mockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	return m.Save(ctx, item)
}

func (m *mockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) (int64, error) {
	items, err := m.FindAllForOutlet(ctx, outletID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (m *mockItemRepository) ExistsByName(ctx context.Context, outletID uuid.UUID, name string) (bool, error) {
	if m.returnErr != nil {
		return false, m.returnErr
	}
	for _, item := range m.items {
		if item.OutletID == outletID && item.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type mockMovementRepository struct {
	movements []*inventory.Movement
	returnErr error
}

func newMockMovementRepository() *mockMovementRepository {
	return &mockMovementRepository{}
}

func (m *mockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, mv := range m.movements {
		if mv.ID == id {
			return mv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockMovementRepository) FindByItem(ctx context.Context, outletID, itemID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Movement
	for _, mv := range m.movements {
		if mv.OutletID == outletID && mv.ItemID == itemID {
			result = append(result, *mv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.After(result[j].OccurredAt) })
	return result, nil
}

func (m *mockMovementRepository) FindByItemChronological(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Movement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Movement
	for _, mv := range m.movements {
		if mv.OutletID == outletID && mv.ItemID == itemID {
			result = append(result, *mv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.Before(result[j].OccurredAt) })
	return result, nil
}

func (m *mockMovementRepository) FindByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Movement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Movement
	for _, mv := range m.movements {
		if mv.OutletID == outletID && mv.Reference() == ref {
			result = append(result, *mv)
		}
	}
	return result, nil
}

func (m *mockMovementRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Movement
	for _, mv := range m.movements {
		if mv.OutletID != outletID {
			continue
		}
		if filter.ItemID != nil && mv.ItemID != *filter.ItemID {
			continue
		}
		if filter.Category != nil && mv.Category != *filter.Category {
			continue
		}
		result = append(result, *mv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.After(result[j].OccurredAt) })
	return result, nil
}

func (m *mockMovementRepository) Create(ctx context.Context, mv *inventory.Movement) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.movements = append(m.movements, mv)
	return nil
}

func (m *mockMovementRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) (int64, error) {
	result, err := m.FindForOutlet(ctx, outletID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(result)), nil
}

func (m *mockMovementRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	var count int64
	for _, mv := range m.movements {
		if mv.ItemID == itemID {
			count++
		}
	}
	return count, nil
}

func (m *mockMovementRepository) HasReferenceMovements(ctx context.Context, itemID uuid.UUID) (bool, error) {
	if m.returnErr != nil {
		return false, m.returnErr
	}
	for _, mv := range m.movements {
		if mv.ItemID == itemID && mv.Reference().IsCustomerHeld() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMovementRepository) SumOutstandingForReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (int, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	sum := 0
	for _, mv := range m.movements {
		if mv.OutletID != outletID || mv.ItemID != itemID || mv.Reference() != ref {
			continue
		}
		switch mv.Category {
		case inventory.MovementCategoryOutflow:
			sum += mv.Quantity
		case inventory.MovementCategoryReturn, inventory.MovementCategoryWriteoff:
			sum -= mv.Quantity
		}
	}
	return sum, nil
}

type mockAllocationRepository struct {
	allocations map[uuid.UUID]*inventory.Allocation
	returnErr   error
}

func newMockAllocationRepository() *mockAllocationRepository {
	return &mockAllocationRepository{allocations: make(map[uuid.UUID]*inventory.Allocation)}
}

func (m *mockAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if alloc, ok := m.allocations[id]; ok {
		return alloc, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAllocationRepository) FindActiveByItemAndReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (*inventory.Allocation, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, alloc := range m.allocations {
		if alloc.OutletID == outletID && alloc.ItemID == itemID && alloc.Active && alloc.Reference() == ref {
			return alloc, nil
		}
	}
	return nil, nil
}

func (m *mockAllocationRepository) FindActiveByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Allocation, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Allocation
	for _, alloc := range m.allocations {
		if alloc.OutletID == outletID && alloc.Active && alloc.Reference() == ref {
			result = append(result, *alloc)
		}
	}
	return result, nil
}

func (m *mockAllocationRepository) FindActiveByItem(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Allocation, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Allocation
	for _, alloc := range m.allocations {
		if alloc.OutletID == outletID && alloc.ItemID == itemID && alloc.Active {
			result = append(result, *alloc)
		}
	}
	return result, nil
}

func (m *mockAllocationRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AllocationFilter) ([]inventory.Allocation, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Allocation
	for _, alloc := range m.allocations {
		if alloc.OutletID != outletID {
			continue
		}
		if filter.ActiveOnly && !alloc.Active {
			continue
		}
		result = append(result, *alloc)
	}
	return result, nil
}

func (m *mockAllocationRepository) Save(ctx context.Context, alloc *inventory.Allocation) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.allocations[alloc.ID] = alloc
	return nil
}

func (m *mockAllocationRepository) CountActiveForOutlet(ctx context.Context, outletID uuid.UUID) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	var count int64
	for _, alloc := range m.allocations {
		if alloc.OutletID == outletID && alloc.Active {
			count++
		}
	}
	return count, nil
}

type mockAuditRepository struct {
	audits    map[uuid.UUID]*inventory.Audit
	returnErr error
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{audits: make(map[uuid.UUID]*inventory.Audit)}
}

func (m *mockAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if audit, ok := m.audits[id]; ok {
		return audit, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAuditRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if audit, ok := m.audits[id]; ok && audit.OutletID == outletID {
		return audit, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAuditRepository) FindByPeriod(ctx context.Context, outletID uuid.UUID, period string) (*inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, audit := range m.audits {
		if audit.OutletID == outletID && audit.Period == period {
			return audit, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockAuditRepository) FindByStatus(ctx context.Context, outletID uuid.UUID, status inventory.AuditStatus, filter shared.Filter) ([]inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Audit
	for _, audit := range m.audits {
		if audit.OutletID == outletID && audit.Status == status {
			result = append(result, *audit)
		}
	}
	return result, nil
}

func (m *mockAuditRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) ([]inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.Audit
	for _, audit := range m.audits {
		if audit.OutletID != outletID {
			continue
		}
		if filter.Status != nil && audit.Status != *filter.Status {
			continue
		}
		if filter.Period != "" && audit.Period != filter.Period {
			continue
		}
		result = append(result, *audit)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period > result[j].Period })
	return result, nil
}

func (m *mockAuditRepository) FindInFlight(ctx context.Context, outletID uuid.UUID) (*inventory.Audit, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, audit := range m.audits {
		if audit.OutletID == outletID && audit.Status.InFlight() {
			return audit, nil
		}
	}
	return nil, nil
}

func (m *mockAuditRepository) SaveWithLines(ctx context.Context, audit *inventory.Audit) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.audits[audit.ID] = audit
	return nil
}

func (m *mockAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	delete(m.audits, id)
	return nil
}

func (m *mockAuditRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) (int64, error) {
	result, err := m.FindAllForOutlet(ctx, outletID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(result)), nil
}

func (m *mockAuditRepository) ExistsForPeriod(ctx context.Context, outletID uuid.UUID, period string) (bool, error) {
	if m.returnErr != nil {
		return false, m.returnErr
	}
	for _, audit := range m.audits {
		if audit.OutletID == outletID && audit.Period == period {
			return true, nil
		}
	}
	return false, nil
}
