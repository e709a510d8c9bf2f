package spreadsheet

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	ErrCodeRequired        = "REQUIRED"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeInvalidValue    = "INVALID_VALUE"
	ErrCodeTooLong         = "TOO_LONG"
	ErrCodeDuplicateInFile = "DUPLICATE_IN_FILE"
)

var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when the content cannot be decoded
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the first row is missing
	ErrMissingHeader = errors.New("file missing header row")

	// ErrNoDataRows is returned when only the header row is present
	ErrNoDataRows = errors.New("file contains no data rows")

	// ErrTooManyRows is returned when a file exceeds the row limit
	ErrTooManyRows = errors.New("file exceeds maximum number of rows")

	// ErrNoSheet is returned for a workbook without worksheet
	ErrNoSheet = errors.New("workbook contains no sheet")
)

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// ErrorCollection keeps the first maxErrors errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(errs ...RowError) {
	for _, err := range errs {
		ec.totalCount++
		if len(ec.errors) < ec.maxErrors {
			ec.errors = append(ec.errors, err)
		}
	}
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including those not collected
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were not collected due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}
