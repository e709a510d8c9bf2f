package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// LineRequest is one movement of a manual entry
type LineRequest struct {
	Account string          `json:"account" binding:"required,numeric,min=3,max=8"`
	Label   string          `json:"label" binding:"max=200"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// ManualEntryRequest creates an entry typed in by the artisan
type ManualEntryRequest struct {
	Journal string        `json:"journal" binding:"required,oneof=SALES PURCHASES BANK MISC"`
	Date    *time.Time    `json:"date"`
	Label   string        `json:"label" binding:"required,max=200"`
	Lines   []LineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseRequest cancels an entry with its mirror
type ReverseRequest struct {
	Label string     `json:"label" binding:"max=200"`
	Date  *time.Time `json:"date"`
}

// ListFilter narrows entry listings
type ListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	Journal    string     `form:"journal" binding:"omitempty,oneof=SALES PURCHASES BANK MISC"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	SourceType string     `form:"source_type"`
	SourceID   *uuid.UUID `form:"-"`
}

// PeriodRequest bounds a trial balance; both ends are optional
type PeriodRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// EntryResponse is the API view of a journal entry
type EntryResponse struct {
	ID          uuid.UUID              `json:"id"`
	Journal     accounting.Journal     `json:"journal"`
	Date        time.Time              `json:"date"`
	Label       string                 `json:"label"`
	SourceType  string                 `json:"source_type,omitempty"`
	SourceID    *uuid.UUID             `json:"source_id,omitempty"`
	ReversalOf  *uuid.UUID             `json:"reversal_of,omitempty"`
	Lines       []accounting.EntryLine `json:"lines"`
	TotalDebit  decimal.Decimal        `json:"total_debit"`
	TotalCredit decimal.Decimal        `json:"total_credit"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *accounting.JournalEntry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Journal:     e.Journal,
		Date:        e.Date,
		Label:       e.Label,
		SourceType:  e.SourceType,
		SourceID:    e.SourceID,
		ReversalOf:  e.ReversalOf,
		Lines:       e.Lines,
		TotalDebit:  e.TotalDebit(),
		TotalCredit: e.TotalCredit(),
		CreatedAt:   e.CreatedAt,
	}
}
