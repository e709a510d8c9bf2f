package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for SupplierOrder
const AggregateTypeSupplierOrder = "SupplierOrder"

// EventTypeSupplierOrderReceived is published when goods are delivered
const EventTypeSupplierOrderReceived = "SupplierOrderReceived"

// SupplierOrderReceivedEvent carries the amounts to post the purchase entry
type SupplierOrderReceivedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	ReceivedAt time.Time       `json:"received_at"`
	TotalHT    decimal.Decimal `json:"total_ht"`
	TotalVAT   decimal.Decimal `json:"total_vat"`
	TotalTTC   decimal.Decimal `json:"total_ttc"`
}

func (e *SupplierOrderReceivedEvent) EventType() string { return EventTypeSupplierOrderReceived }

// NewSupplierOrderReceivedEvent creates a new SupplierOrderReceivedEvent
func NewSupplierOrderReceivedEvent(o *SupplierOrder) *SupplierOrderReceivedEvent {
	return &SupplierOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierOrderReceived, AggregateTypeSupplierOrder, o.ID, o.TenantID),
		Number:          o.Number,
		SupplierID:      o.SupplierID,
		ReceivedAt:      *o.ReceivedAt,
		TotalHT:         o.Totals.TotalHT,
		TotalVAT:        o.Totals.TotalVAT,
		TotalTTC:        o.Totals.TotalTTC,
	}
}
