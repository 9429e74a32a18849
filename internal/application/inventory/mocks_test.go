package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dishware/backend/internal/domain/inventory"
	"github.com/dishware/backend/internal/domain/shared"
)

// MockItemRepository is a mock implementation of inventory.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDForUpdate(ctx context.Context, outletID, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByName(ctx context.Context, outletID uuid.UUID, name string) (*inventory.Item, error) {
	args := m.Called(ctx, outletID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) ([]inventory.Item, error) {
	args := m.Called(ctx, outletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	args := m.Called(ctx, outletID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindActive(ctx context.Context, outletID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	args := m.Called(ctx, outletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindArchiveCandidates(ctx context.Context, outletID uuid.UUID, idleSince time.Time) ([]inventory.Item, error) {
	args := m.Called(ctx, outletID, idleSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.ItemFilter) (int64, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) ExistsByName(ctx context.Context, outletID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, outletID, name)
	return args.Bool(0), args.Error(1)
}

// MockMovementRepository is a mock implementation of inventory.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByItem(ctx context.Context, outletID, itemID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	args := m.Called(ctx, outletID, itemID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByItemChronological(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Movement, error) {
	args := m.Called(ctx, outletID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Movement, error) {
	args := m.Called(ctx, outletID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	args := m.Called(ctx, outletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.MovementFilter) (int64, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovementRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovementRepository) HasReferenceMovements(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMovementRepository) SumOutstandingForReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (int, error) {
	args := m.Called(ctx, outletID, itemID, ref)
	return args.Int(0), args.Error(1)
}

// MockAllocationRepository is a mock implementation of inventory.AllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActiveByItemAndReference(ctx context.Context, outletID, itemID uuid.UUID, ref inventory.Reference) (*inventory.Allocation, error) {
	args := m.Called(ctx, outletID, itemID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActiveByReference(ctx context.Context, outletID uuid.UUID, ref inventory.Reference) ([]inventory.Allocation, error) {
	args := m.Called(ctx, outletID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActiveByItem(ctx context.Context, outletID, itemID uuid.UUID) ([]inventory.Allocation, error) {
	args := m.Called(ctx, outletID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AllocationFilter) ([]inventory.Allocation, error) {
	args := m.Called(ctx, outletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) Save(ctx context.Context, alloc *inventory.Allocation) error {
	args := m.Called(ctx, alloc)
	return args.Error(0)
}

func (m *MockAllocationRepository) CountActiveForOutlet(ctx context.Context, outletID uuid.UUID) (int64, error) {
	args := m.Called(ctx, outletID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of inventory.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindByIDForOutlet(ctx context.Context, outletID, id uuid.UUID) (*inventory.Audit, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindByPeriod(ctx context.Context, outletID uuid.UUID, period string) (*inventory.Audit, error) {
	args := m.Called(ctx, outletID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindByStatus(ctx context.Context, outletID uuid.UUID, status inventory.AuditStatus, filter shared.Filter) ([]inventory.Audit, error) {
	args := m.Called(ctx, outletID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindAllForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) ([]inventory.Audit, error) {
	args := m.Called(ctx, outletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindInFlight(ctx context.Context, outletID uuid.UUID) (*inventory.Audit, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Audit), args.Error(1)
}

func (m *MockAuditRepository) SaveWithLines(ctx context.Context, audit *inventory.Audit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAuditRepository) CountForOutlet(ctx context.Context, outletID uuid.UUID, filter inventory.AuditFilter) (int64, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) ExistsForPeriod(ctx context.Context, outletID uuid.UUID, period string) (bool, error) {
	args := m.Called(ctx, outletID, period)
	return args.Bool(0), args.Error(1)
}

// Interface checks
var (
	_ inventory.ItemRepository       = (*MockItemRepository)(nil)
	_ inventory.MovementRepository   = (*MockMovementRepository)(nil)
	_ inventory.AllocationRepository = (*MockAllocationRepository)(nil)
	_ inventory.AuditRepository      = (*MockAuditRepository)(nil)
)
