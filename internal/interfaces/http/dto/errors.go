package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeConsistency is used when a stored balance fails its invariant check
	ErrCodeConsistency = "ERR_CONSISTENCY"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key was already consumed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientStock is used when a pool cannot cover the movement
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeLedgerImmutable is used when a ledger entry mutation is attempted
	ErrCodeLedgerImmutable = "ERR_LEDGER_IMMUTABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeConsistency: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeLedgerImmutable:   http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized API codes.
// Domain code names stay close to the business rule they guard; the API
// surface collapses them into a small set of categories.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":       ErrCodeNotFound,
	"LINE_NOT_FOUND":  ErrCodeNotFound,
	"ALREADY_EXISTS":  ErrCodeAlreadyExists,
	"DUPLICATE_ITEM":  ErrCodeAlreadyExists,
	"AUDIT_IN_FLIGHT": ErrCodeConflict,

	"OPTIMISTIC_LOCK_FAILED": ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"DUPLICATE_REQUEST":      ErrCodeDuplicateRequest,

	"UNAUTHORIZED": ErrCodeUnauthorized,
	"FORBIDDEN":    ErrCodeForbidden,

	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_NAME":     ErrCodeInvalidInput,
	"INVALID_QUANTITY": ErrCodeInvalidInput,
	"INVALID_COST":     ErrCodeInvalidInput,
	"INVALID_PERIOD":   ErrCodeInvalidInput,
	"INVALID_OUTLET":   ErrCodeInvalidInput,
	"INVALID_CREATOR":  ErrCodeInvalidInput,
	"INVALID_APPROVER": ErrCodeInvalidInput,
	"INVALID_REASON":   ErrCodeInvalidInput,
	"INVALID_ACTOR":    ErrCodeInvalidInput,
	"INVALID_ITEM":     ErrCodeInvalidInput,
	"INVALID_CATEGORY": ErrCodeInvalidInput,
	"INVALID_SUBTYPE":  ErrCodeInvalidInput,

	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_STATUS":     ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidState,
	"ITEM_NOT_ACTIVE":    ErrCodeInvalidState,
	"ITEM_ARCHIVED":      ErrCodeInvalidState,
	"ITEM_DISCONTINUED":  ErrCodeInvalidState,

	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,
	"LEDGER_IMMUTABLE":   ErrCodeLedgerImmutable,

	"INVALID_REFERENCE":       ErrCodeBusinessRule,
	"ALLOCATION_INACTIVE":     ErrCodeBusinessRule,
	"NO_ALLOCATION":           ErrCodeBusinessRule,
	"EXCEEDS_OUTSTANDING":     ErrCodeBusinessRule,
	"REFERENCE_NOT_CLOSABLE":  ErrCodeBusinessRule,
	"MISSING_NOTES":           ErrCodeBusinessRule,
	"NO_ITEMS":                ErrCodeBusinessRule,
	"INCOMPLETE_COUNT":        ErrCodeBusinessRule,
	"MISSING_REASON":          ErrCodeBusinessRule,
	"LINE_NOT_COUNTED":        ErrCodeBusinessRule,
	"HAS_STOCK":               ErrCodeBusinessRule,
	"HAS_REFERENCE_HISTORY":   ErrCodeBusinessRule,
	"OUTSTANDING_ALLOCATIONS": ErrCodeBusinessRule,
	"RECENT_MOVEMENT":         ErrCodeBusinessRule,

	"CONSISTENCY":           ErrCodeConsistency,
	"CONSISTENCY_VIOLATION": ErrCodeConsistency,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
