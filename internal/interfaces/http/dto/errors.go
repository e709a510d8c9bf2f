package dto

import (
	"net/http"
	"strings"
)

// Transport error codes, raised by the HTTP layer itself. Domain errors keep
// the code of the shared.DomainError that produced them.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTooLarge     = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General
	ErrCodeInternal: http.StatusInternalServerError,
	"DB_ERROR":      http.StatusInternalServerError,

	// Input
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	"NO_LINES":         http.StatusBadRequest,
	"MISSING_COLUMNS":  http.StatusBadRequest,
	"EMPTY_FILE":       http.StatusBadRequest,
	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	"FILE_TOO_LARGE":   http.StatusRequestEntityTooLarge,

	// Authentication
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"INVALID_PORTAL_TOKEN": http.StatusUnauthorized,
	"INVALID_SIGNATURE":    http.StatusUnauthorized,
	"TOKEN_EXPIRED":        http.StatusUnauthorized,
	"TOKEN_INVALID":        http.StatusUnauthorized,
	"TOKEN_REVOKED":        http.StatusUnauthorized,
	"ACCOUNT_DISABLED":     http.StatusForbidden,

	// Authorization and tenancy
	ErrCodeForbidden:       http.StatusForbidden,
	"TENANT_MISMATCH":      http.StatusForbidden,
	"TENANT_SUSPENDED":     http.StatusForbidden,
	"CANNOT_DISABLE_OWNER": http.StatusForbidden,

	// Resources
	ErrCodeNotFound:           http.StatusNotFound,
	"ALREADY_EXISTS":          http.StatusConflict,
	"EMAIL_TAKEN":             http.StatusConflict,
	"SIRET_TAKEN":             http.StatusConflict,
	ErrCodeConflict:           http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"VERSION_CONFLICT":        http.StatusConflict,
	"OPTIMISTIC_LOCK_FAILED":  http.StatusConflict,
	"LOCK_BUSY":               http.StatusConflict,
	"SCHEDULE_CONFLICT":       http.StatusConflict,
	"ALREADY_REVIEWED":        http.StatusConflict,
	"DUPLICATE_PAYMENT":       http.StatusConflict,
	"HAS_ORDERS":              http.StatusConflict,
	"HAS_INVOICES":            http.StatusConflict,
	"HAS_PAYMENTS":            http.StatusConflict,
	"HAS_USERS":               http.StatusConflict,

	// Business rules
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING":   http.StatusUnprocessableEntity,
	"UNBALANCED_ENTRY":      http.StatusUnprocessableEntity,
	"QUOTE_EXPIRED":         http.StatusUnprocessableEntity,
	"QUOTE_STILL_VALID":     http.StatusUnprocessableEntity,
	"NOT_OVERDUE":           http.StatusUnprocessableEntity,
	"NO_CONTACT":            http.StatusUnprocessableEntity,
	"DOCUMENT_NOT_RENDERED": http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":        http.StatusUnprocessableEntity,
	"ALREADY_SUSPENDED":     http.StatusUnprocessableEntity,
	"ALREADY_DISABLED":      http.StatusUnprocessableEntity,
	"UNSUPPORTED_FORMAT":    http.StatusUnsupportedMediaType,

	// Rate limiting
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unlisted
// INVALID_* codes are input errors (400); any other unlisted code is a
// business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
