package accounting

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Journal identifies the book an entry belongs to
type Journal string

const (
	JournalSales     Journal = "SALES"
	JournalPurchases Journal = "PURCHASES"
	JournalBank      Journal = "BANK"
	JournalMisc      Journal = "MISC"
)

// IsValid checks if the journal is valid
func (j Journal) IsValid() bool {
	switch j {
	case JournalSales, JournalPurchases, JournalBank, JournalMisc:
		return true
	}
	return false
}

// EntryLine is one debit or credit movement on an account
type EntryLine struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// EntryLines is stored as JSONB
type EntryLines []EntryLine

// Value implements driver.Valuer
func (l EntryLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *EntryLines) Scan(value interface{}) error {
	if value == nil {
		*l = EntryLines{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan EntryLines: unsupported type")
	}
	return json.Unmarshal(bytes, l)
}

// Debit builds a debit line
func Debit(account string, amount decimal.Decimal, label string) EntryLine {
	return EntryLine{Account: account, Label: label, Debit: amount, Credit: decimal.Zero}
}

// Credit builds a credit line
func Credit(account string, amount decimal.Decimal, label string) EntryLine {
	return EntryLine{Account: account, Label: label, Debit: decimal.Zero, Credit: amount}
}

// JournalEntry is a balanced accounting record. Entries are immutable once
// created; corrections are made with a reversing entry.
type JournalEntry struct {
	shared.TenantAggregateRoot
	Journal    Journal
	Date       time.Time
	Label      string
	SourceType string
	SourceID   *uuid.UUID
	Lines      EntryLines
	ReversalOf *uuid.UUID
}

// NewJournalEntry validates and builds an entry. Zero-amount lines are dropped.
func NewJournalEntry(tenantID uuid.UUID, journal Journal, date time.Time, label string, lines []EntryLine) (*JournalEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !journal.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOURNAL", "Invalid journal")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Entry label cannot be empty")
	}
	kept := make(EntryLines, 0, len(lines))
	for _, l := range lines {
		if l.Debit.IsZero() && l.Credit.IsZero() {
			continue
		}
		kept = append(kept, l)
	}
	if err := ValidateLines(kept); err != nil {
		return nil, err
	}
	e := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Journal:             journal,
		Date:                date,
		Label:               label,
		Lines:               kept,
	}
	return e, nil
}

// ValidateLines enforces double-entry rules: at least two lines, each line
// either a debit or a credit, amounts in cents, and debits equal credits.
func ValidateLines(lines []EntryLine) error {
	if len(lines) < 2 {
		return shared.NewDomainError("INVALID_ENTRY", "An entry needs at least two lines")
	}
	for i, l := range lines {
		if !IsValidAccount(l.Account) {
			return shared.NewDomainError("INVALID_ACCOUNT", fmt.Sprintf("line %d: invalid account %q", i+1, l.Account))
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("line %d: amounts cannot be negative", i+1))
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("line %d: exactly one of debit or credit must be set", i+1))
		}
		if !l.Debit.Equal(l.Debit.Round(2)) || !l.Credit.Equal(l.Credit.Round(2)) {
			return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("line %d: amounts must be in cents", i+1))
		}
	}
	debit, credit := sumLines(lines)
	if !debit.Equal(credit) {
		return shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("Entry is not balanced: debit %s, credit %s", debit.StringFixed(2), credit.StringFixed(2)))
	}
	return nil
}

func sumLines(lines []EntryLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// TotalDebit returns the sum of debits
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	d, _ := sumLines(e.Lines)
	return d
}

// TotalCredit returns the sum of credits
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	_, c := sumLines(e.Lines)
	return c
}

// IsBalanced re-checks the balance invariant
func (e *JournalEntry) IsBalanced() bool {
	d, c := sumLines(e.Lines)
	return d.Equal(c)
}

// FromSource links the entry to the document that produced it
func (e *JournalEntry) FromSource(sourceType string, id uuid.UUID) *JournalEntry {
	e.SourceType = sourceType
	e.SourceID = &id
	return e
}

// Reverse builds the mirror entry cancelling this one
func (e *JournalEntry) Reverse(date time.Time, label string) (*JournalEntry, error) {
	lines := make([]EntryLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLine{Account: l.Account, Label: l.Label, Debit: l.Credit, Credit: l.Debit}
	}
	rev, err := NewJournalEntry(e.TenantID, e.Journal, date, label, lines)
	if err != nil {
		return nil, err
	}
	id := e.ID
	rev.ReversalOf = &id
	rev.SourceType = e.SourceType
	rev.SourceID = e.SourceID
	return rev, nil
}
