package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ItemSortFields contains allowed sort fields for dishware items
var ItemSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"name":               true,
	"category":           true,
	"material":           true,
	"lifecycle":          true,
	"available_quantity": true,
	"allocated_quantity": true,
	"damaged_quantity":   true,
	"in_repair_quantity": true,
	"total_quantity":     true,
	"replacement_cost":   true,
	"last_movement_at":   true,
}

// MovementSortFields contains allowed sort fields for ledger movements
var MovementSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"occurred_at":    true,
	"category":       true,
	"subtype":        true,
	"quantity":       true,
	"reference_type": true,
}

// AllocationSortFields contains allowed sort fields for allocations
var AllocationSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"allocated_quantity": true,
	"reference_type":     true,
	"deactivated_at":     true,
}

// AuditSortFields contains allowed sort fields for audits
var AuditSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"period":        true,
	"status":        true,
	"items_total":   true,
	"items_counted": true,
	"submitted_at":  true,
	"resolved_at":   true,
}
