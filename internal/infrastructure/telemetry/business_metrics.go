package telemetry

import (
	"context"
	"errors"

	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics counts commercial activity per tenant. It subscribes to
// domain events so services stay free of metrics calls.
type BusinessMetrics struct {
	quotesSent             *Counter
	quotesAccepted         *Counter
	quotesRejected         *Counter
	invoicesIssued         *Counter
	invoicedAmount         *AmountCounter
	paymentsReceived       *Counter
	paymentAmount          *AmountCounter
	invoicesOverdue        *Counter
	interventionsCompleted *Counter
}

// NewBusinessMetrics creates the business counters on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	counters := []struct {
		dst  **Counter
		name string
		desc string
		unit string
	}{
		{&bm.quotesSent, "monartisan_quotes_sent_total", "Quotes sent to clients", "{quotes}"},
		{&bm.quotesAccepted, "monartisan_quotes_accepted_total", "Quotes accepted by clients", "{quotes}"},
		{&bm.quotesRejected, "monartisan_quotes_rejected_total", "Quotes rejected by clients", "{quotes}"},
		{&bm.invoicesIssued, "monartisan_invoices_issued_total", "Invoices issued", "{invoices}"},
		{&bm.paymentsReceived, "monartisan_payments_received_total", "Payments recorded on invoices", "{payments}"},
		{&bm.invoicesOverdue, "monartisan_invoices_overdue_total", "Invoices that became overdue", "{invoices}"},
		{&bm.interventionsCompleted, "monartisan_interventions_completed_total", "Interventions completed", "{interventions}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	if bm.invoicedAmount, err = NewAmountCounter(meter, "monartisan_invoiced_amount_total", "Issued invoice totals including VAT", "EUR"); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewAmountCounter(meter, "monartisan_payment_amount_total", "Amounts received", "EUR"); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler.
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		quote.EventTypeQuoteSent,
		quote.EventTypeQuoteAccepted,
		quote.EventTypeQuoteRejected,
		invoice.EventTypeInvoiceIssued,
		invoice.EventTypePaymentReceived,
		invoice.EventTypeInvoiceOverdue,
		intervention.EventTypeInterventionCompleted,
	}
}

// Handle implements shared.EventHandler.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *quote.QuoteSentEvent:
		bm.quotesSent.Inc(ctx, tenant)
	case *quote.QuoteAcceptedEvent:
		bm.quotesAccepted.Inc(ctx, tenant)
	case *quote.QuoteRejectedEvent:
		bm.quotesRejected.Inc(ctx, tenant)
	case *invoice.InvoiceIssuedEvent:
		bm.invoicesIssued.Inc(ctx, tenant)
		bm.invoicedAmount.Add(ctx, e.TotalTTC.InexactFloat64(), tenant)
	case *invoice.PaymentReceivedEvent:
		method := AttrPaymentMethod.String(string(e.Method))
		bm.paymentsReceived.Inc(ctx, tenant, method)
		bm.paymentAmount.Add(ctx, e.Amount.InexactFloat64(), tenant, method)
	case *invoice.InvoiceOverdueEvent:
		bm.invoicesOverdue.Inc(ctx, tenant)
	case *intervention.InterventionCompletedEvent:
		bm.interventionsCompleted.Inc(ctx, tenant)
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
