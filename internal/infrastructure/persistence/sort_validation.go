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

func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Sort whitelists per table. Anything else falls back to created_at.
var (
	ClientSortFields        = withCommon("last_name", "company_name", "email")
	QuoteSortFields         = withCommon("number", "status", "valid_until", "total_ttc", "sent_at")
	InvoiceSortFields       = withCommon("number", "status", "issue_date", "due_date", "total_ttc", "paid_amount")
	InterventionSortFields  = withCommon("scheduled_start", "status", "title")
	SupplierSortFields      = withCommon("name")
	SupplierOrderSortFields = withCommon("number", "status", "expected_at", "total_ttc")
	ReviewSortFields        = withCommon("rating", "status", "published_at")
	NotificationSortFields  = withCommon("status", "channel", "sent_at")
	JournalEntrySortFields  = withCommon("date", "journal", "total_debit")
	ImportRunSortFields     = withCommon("started_at", "status")
)
