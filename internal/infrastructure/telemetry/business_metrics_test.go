package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestBusinessMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(nil)
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBusinessMetrics_Handle(t *testing.T) {
	bm, reader := newTestBusinessMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	issued := &invoice.InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(invoice.EventTypeInvoiceIssued, invoice.AggregateTypeInvoice, uuid.New(), tenantID),
		TotalTTC:        decimal.RequireFromString("1200.50"),
	}
	paid := &invoice.PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(invoice.EventTypePaymentReceived, invoice.AggregateTypeInvoice, uuid.New(), tenantID),
		Amount:          decimal.RequireFromString("400"),
		Method:          invoice.PaymentMethodCard,
	}
	accepted := &quote.QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(quote.EventTypeQuoteAccepted, quote.AggregateTypeQuote, uuid.New(), tenantID),
	}

	for _, e := range []shared.DomainEvent{issued, paid, paid, accepted} {
		require.NoError(t, bm.Handle(ctx, e))
	}

	data := collect(t, reader)

	issuedSum, ok := data["monartisan_invoices_issued_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, issuedSum.DataPoints, 1)
	assert.Equal(t, int64(1), issuedSum.DataPoints[0].Value)
	v, found := issuedSum.DataPoints[0].Attributes.Value(AttrTenantID)
	require.True(t, found)
	assert.Equal(t, tenantID.String(), v.AsString())

	amount, ok := data["monartisan_invoiced_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.InDelta(t, 1200.50, amount.DataPoints[0].Value, 0.001)

	payments, ok := data["monartisan_payments_received_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), payments.DataPoints[0].Value)
	method, _ := payments.DataPoints[0].Attributes.Value(AttrPaymentMethod)
	assert.Equal(t, "CARD", method.AsString())

	paidAmount, ok := data["monartisan_payment_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.InDelta(t, 800.0, paidAmount.DataPoints[0].Value, 0.001)

	acceptedSum, ok := data["monartisan_quotes_accepted_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), acceptedSum.DataPoints[0].Value)
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, _ := newTestBusinessMetrics(t)
	assert.Contains(t, bm.EventTypes(), invoice.EventTypeInvoiceIssued)
	assert.Contains(t, bm.EventTypes(), quote.EventTypeQuoteAccepted)
	assert.NotContains(t, bm.EventTypes(), invoice.EventTypeInvoiceCreated)
}
