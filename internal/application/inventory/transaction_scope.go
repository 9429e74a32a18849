package inventory

import (
	"context"

	"github.com/dishware/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Every ledger write path runs under a scope: the movement
// insert, the balance update, the allocation bookkeeping and the invariant
// check are a single unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within one transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() inventory.ItemRepository
	// MovementRepo returns the ledger repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() inventory.AllocationRepository
	// AuditRepo returns the audit repository scoped to the current transaction
	AuditRepo() inventory.AuditRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful in tests where the backing store is already isolated.
type NoOpTransactionScope struct {
	itemRepo       inventory.ItemRepository
	movementRepo   inventory.MovementRepository
	allocationRepo inventory.AllocationRepository
	auditRepo      inventory.AuditRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	itemRepo inventory.ItemRepository,
	movementRepo inventory.MovementRepository,
	allocationRepo inventory.AllocationRepository,
	auditRepo inventory.AuditRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:       itemRepo,
		movementRepo:   movementRepo,
		allocationRepo: allocationRepo,
		auditRepo:      auditRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository.
func (s *NoOpTransactionScope) ItemRepo() inventory.ItemRepository {
	return s.itemRepo
}

// MovementRepo returns the ledger repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// AllocationRepo returns the allocation repository.
func (s *NoOpTransactionScope) AllocationRepo() inventory.AllocationRepository {
	return s.allocationRepo
}

// AuditRepo returns the audit repository.
func (s *NoOpTransactionScope) AuditRepo() inventory.AuditRepository {
	return s.auditRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
