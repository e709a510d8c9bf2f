package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types sent by payment providers
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body, prefixed by "sha256="
const SignatureHeader = "X-Signature"

// WebhookEvent is the body posted by a payment provider
type WebhookEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reason    string          `json:"reason,omitempty"`
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}
