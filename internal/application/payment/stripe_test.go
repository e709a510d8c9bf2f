package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
)

func stripeEvent(id, eventType string, created int64, object string) []byte {
	return fmt.Appendf(nil, `{"id":%q,"object":"event","type":%q,"created":%d,"data":{"object":%s}}`,
		id, eventType, created, object)
}

func signStripe(t *testing.T, body []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestProcessWebhook_StripePaymentIntentSucceeded(t *testing.T) {
	svc, invoices, _ := newService(t)
	ctx := context.Background()
	tenantID, invoiceID := uuid.New(), uuid.New()
	created := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	body := stripeEvent("evt_3Q", "payment_intent.succeeded", created.Unix(), fmt.Sprintf(
		`{"id":"pi_3Q","object":"payment_intent","amount_received":117000,"currency":"eur","metadata":{"tenant_id":%q,"invoice_id":%q}}`,
		tenantID, invoiceID))

	invoices.On("RecordPayment", ctx, tenantID, invoiceID, mock.MatchedBy(func(req invoiceapp.PaymentRequest) bool {
		return req.Method == "ONLINE" && req.Amount.String() == "1170" && req.Reference == "pi_3Q" && req.PaidAt.Equal(created)
	})).Return(&invoiceapp.InvoiceResponse{ID: invoiceID, Status: invoice.InvoiceStatusPaid}, nil).Once()

	result, err := svc.ProcessWebhook(ctx, ProviderStripe, body, signStripe(t, body, stripeSecret))
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "evt_3Q", result.EventID)
	assert.Equal(t, EventPaymentSucceeded, result.EventType)

	result, err = svc.ProcessWebhook(ctx, ProviderStripe, body, signStripe(t, body, stripeSecret))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	invoices.AssertExpectations(t)
}

func TestProcessWebhook_StripeRejections(t *testing.T) {
	ctx := context.Background()
	body := stripeEvent("evt_1", "payment_intent.succeeded", time.Now().Unix(), `{"id":"pi_1","object":"payment_intent"}`)

	t.Run("signed with another secret", func(t *testing.T) {
		svc, _, _ := newService(t)
		result, err := svc.ProcessWebhook(ctx, ProviderStripe, body, signStripe(t, body, "whsec_other"))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("generic HMAC is not accepted for stripe", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.ProcessWebhook(ctx, ProviderStripe, body, Sign(body, secret))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("stripe not configured", func(t *testing.T) {
		svc := NewWebhookService(WebhookServiceConfig{Secret: secret})
		_, err := svc.ProcessWebhook(ctx, ProviderStripe, body, signStripe(t, body, ""))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestProcessWebhook_StripeOtherEventsAreAcknowledged(t *testing.T) {
	svc, invoices, _ := newService(t)
	body := stripeEvent("evt_9", "charge.refunded", time.Now().Unix(), `{"id":"ch_1","object":"charge"}`)

	result, err := svc.ProcessWebhook(context.Background(), ProviderStripe, body, signStripe(t, body, stripeSecret))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", result.EventType)
	assert.Equal(t, "Event type not handled", result.Message)
	invoices.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhook_StripePaymentFailed(t *testing.T) {
	svc, invoices, _ := newService(t)
	body := stripeEvent("evt_f", "payment_intent.payment_failed", time.Now().Unix(),
		`{"id":"pi_f","object":"payment_intent","currency":"eur","last_payment_error":{"message":"Your card was declined."}}`)

	result, err := svc.ProcessWebhook(context.Background(), ProviderStripe, body, signStripe(t, body, stripeSecret))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, result.EventType)
	assert.True(t, result.Processed)
	invoices.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
