package inventory

import "github.com/google/uuid"

// Role is the authorization level of the actor performing an operation
type Role string

const (
	// RoleOperator is an ordinary outlet staff member
	RoleOperator Role = "OPERATOR"
	// RoleAdmin is an elevated actor permitted to approve audits and record
	// negative adjustments
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is valid
func (r Role) IsValid() bool {
	return r == RoleOperator || r == RoleAdmin
}

// Actor identifies who performs a ledger or audit operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates an actor with the given role
func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// IsElevated returns true for admin actors
func (a Actor) IsElevated() bool {
	return a.Role == RoleAdmin
}

// Named capability predicates. Role gating is an explicit check at the start
// of each admin-gated method, not a database-level policy.

// CanApproveAudit reports whether the actor may approve or reject an audit
func CanApproveAudit(a Actor) bool {
	return a.IsElevated()
}

// CanRecordNegativeAdjustment reports whether the actor may record a
// decrease-direction adjustment movement
func CanRecordNegativeAdjustment(a Actor) bool {
	return a.IsElevated()
}

// CanAdjustConfirmedItem reports whether the actor may record any adjustment
// against an item whose opening balance has been confirmed
func CanAdjustConfirmedItem(a Actor) bool {
	return a.IsElevated()
}
