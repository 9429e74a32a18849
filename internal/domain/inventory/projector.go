package inventory

import (
	"sort"

	"github.com/dishware/backend/internal/domain/shared"
)

// Balances is a snapshot of an item's quantity pools
type Balances struct {
	Available int `json:"available"`
	Allocated int `json:"allocated"`
	Damaged   int `json:"damaged"`
	InRepair  int `json:"in_repair"`
	Lost      int `json:"lost"`
	Total     int `json:"total"`
}

// BalancesOf extracts the balance snapshot from an item
func BalancesOf(item *Item) Balances {
	return Balances{
		Available: item.AvailableQuantity,
		Allocated: item.AllocatedQuantity,
		Damaged:   item.DamagedQuantity,
		InRepair:  item.InRepairQuantity,
		Lost:      item.LostQuantity,
		Total:     item.TotalQuantity,
	}
}

// Equal reports whether two balance snapshots match exactly
func (b Balances) Equal(other Balances) bool {
	return b == other
}

// ApplyMovement projects a single movement onto the item's balances. It is
// the deterministic fold step: given the item's current pools and a valid
// movement, it produces the new pools. Executed atomically with the ledger
// insert; also reusable for full re-derivation from the ledger.
func ApplyMovement(item *Item, m *Movement) error {
	switch m.Category {
	case MovementCategoryInflow:
		return item.ApplyInflow(m.Quantity, m.OccurredAt)
	case MovementCategoryOutflow:
		return item.ApplyOutflow(m.Quantity, m.OccurredAt)
	case MovementCategoryReturn:
		return item.ApplyReturn(m.Quantity, m.Subtype, m.OccurredAt)
	case MovementCategoryWriteoff:
		return item.ApplyWriteoff(m.Quantity, m.Subtype, m.Reference().IsCustomerHeld(), m.OccurredAt)
	case MovementCategoryAdjustment:
		return item.ApplyAdjustment(m.Quantity, m.Subtype, m.OccurredAt)
	case MovementCategoryRepair:
		return item.ApplyRepair(m.Quantity, m.Subtype, m.OccurredAt)
	}
	return shared.NewDomainError("INVALID_CATEGORY", "Invalid movement category")
}

// ReplayLedger recomputes an item's balances purely from its movement
// history. The input item's pools are reset to zero before the fold; the
// returned snapshot is the slow-path derivation used for reconciliation and
// drift detection.
func ReplayLedger(item *Item, movements []*Movement) (Balances, error) {
	replica := &Item{
		OutletAggregateRoot: item.OutletAggregateRoot,
		Name:                item.Name,
		Lifecycle:           item.Lifecycle,
	}
	// draft lifecycle so gating never blocks historical movements
	replica.Lifecycle = LifecycleDraft
	replica.OpeningBalanceConfirmed = false

	ordered := make([]*Movement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].OccurredAt.Before(ordered[b].OccurredAt)
	})

	for _, m := range ordered {
		if err := ApplyMovement(replica, m); err != nil {
			return Balances{}, err
		}
	}
	if err := replica.CheckInvariant(); err != nil {
		return Balances{}, err
	}
	return BalancesOf(replica), nil
}
