package dataexchange

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// MaxStoredErrors bounds the row errors kept on an import run
const MaxStoredErrors = 50

// Format is a spreadsheet file format
type Format string

const (
	FormatCSV  Format = "CSV"
	FormatXLSX Format = "XLSX"
)

// ParseFormat accepts "csv", "xlsx" or a file name with one of these extensions
func ParseFormat(s string) (Format, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if i := strings.LastIndex(v, "."); i >= 0 {
		v = v[i+1:]
	}
	switch Format(v) {
	case FormatCSV, FormatXLSX:
		return Format(v), nil
	}
	return "", shared.NewDomainError("UNSUPPORTED_FORMAT", fmt.Sprintf("Unsupported file format: %s", s))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension without dot
func (f Format) Extension() string {
	return strings.ToLower(string(f))
}

// Mode tells whether an import writes data
type Mode string

const (
	ModeValidate Mode = "VALIDATE"
	ModeCommit   Mode = "COMMIT"
)

// IsValid checks if the mode is valid
func (m Mode) IsValid() bool {
	return m == ModeValidate || m == ModeCommit
}

// RunStatus is the state of an import run
type RunStatus string

const (
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// RowError describes why one row was skipped
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// RowErrors is stored as JSONB
type RowErrors []RowError

// Value implements driver.Valuer
func (e RowErrors) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner
func (e *RowErrors) Scan(value interface{}) error {
	if value == nil {
		*e = RowErrors{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RowErrors: unsupported type")
	}
	return json.Unmarshal(bytes, e)
}

// Result is the outcome of an import
type Result struct {
	Total    int       `json:"total"`
	Imported int       `json:"imported"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Errors   RowErrors `json:"errors"`
}

// AddError records a skipped row
func (r *Result) AddError(line int, field, message string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Line: line, Field: field, Message: message})
}

// ImportRun records one client import
type ImportRun struct {
	shared.TenantAggregateRoot
	FileName    string
	Format      Format
	Mode        Mode
	Status      RunStatus
	Total       int
	Imported    int
	Updated     int
	Skipped     int
	Errors      RowErrors
	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewImportRun starts an import run
func NewImportRun(tenantID uuid.UUID, fileName string, format Format, mode Mode) (*ImportRun, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("Invalid import mode: %s", mode))
	}
	return &ImportRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FileName:            fileName,
		Format:              format,
		Mode:                mode,
		Status:              RunStatusProcessing,
		Errors:              RowErrors{},
		StartedAt:           time.Now(),
	}, nil
}

// Complete stores the result. A run where every row failed is FAILED.
func (r *ImportRun) Complete(res Result) error {
	if r.Status != RunStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete import in %s status", r.Status))
	}
	r.Total = res.Total
	r.Imported = res.Imported
	r.Updated = res.Updated
	r.Skipped = res.Skipped
	r.Errors = res.Errors
	if len(r.Errors) > MaxStoredErrors {
		r.Errors = r.Errors[:MaxStoredErrors]
	}
	r.Status = RunStatusCompleted
	if res.Total > 0 && res.Imported+res.Updated == 0 {
		r.Status = RunStatusFailed
	}
	now := time.Now()
	r.CompletedAt = &now
	r.Touch()
	return nil
}

// Fail marks a run aborted before any row was processed (unreadable file)
func (r *ImportRun) Fail(reason string) {
	r.Status = RunStatusFailed
	r.Errors = RowErrors{{Message: reason}}
	now := time.Now()
	r.CompletedAt = &now
	r.Touch()
}

// Duration returns how long the run took
func (r *ImportRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
