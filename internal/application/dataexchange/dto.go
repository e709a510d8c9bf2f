package dataexchangeapp

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/dataexchange"
)

// ImportRequest is an uploaded client file
type ImportRequest struct {
	FileName string
	// Format overrides the format derived from the file name
	Format string
	Mode   dataexchange.Mode
	Data   io.Reader
}

// ImportResponse is the outcome of an import together with its history entry
type ImportResponse struct {
	RunID  uuid.UUID              `json:"run_id"`
	Mode   dataexchange.Mode      `json:"mode"`
	Status dataexchange.RunStatus `json:"status"`
	dataexchange.Result
}

// ImportRunResponse is an entry of the import history
type ImportRunResponse struct {
	ID          uuid.UUID              `json:"id"`
	FileName    string                 `json:"file_name"`
	Format      dataexchange.Format    `json:"format"`
	Mode        dataexchange.Mode      `json:"mode"`
	Status      dataexchange.RunStatus `json:"status"`
	Total       int                    `json:"total"`
	Imported    int                    `json:"imported"`
	Updated     int                    `json:"updated"`
	Skipped     int                    `json:"skipped"`
	Errors      dataexchange.RowErrors `json:"errors"`
	CreatedBy   *uuid.UUID             `json:"created_by,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// ToImportRunResponse converts a domain ImportRun to its response
func ToImportRunResponse(r *dataexchange.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ID:          r.ID,
		FileName:    r.FileName,
		Format:      r.Format,
		Mode:        r.Mode,
		Status:      r.Status,
		Total:       r.Total,
		Imported:    r.Imported,
		Updated:     r.Updated,
		Skipped:     r.Skipped,
		Errors:      r.Errors,
		CreatedBy:   r.CreatedBy,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Export is a generated spreadsheet
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}
