package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// ProviderStripe is the :provider path value of Stripe notifications
const ProviderStripe = "stripe"

// StripeSignatureHeader is the header Stripe signs its webhooks with
const StripeSignatureHeader = "Stripe-Signature"

// Metadata keys set on the PaymentIntent when the checkout is created
const (
	stripeMetaTenantID  = "tenant_id"
	stripeMetaInvoiceID = "invoice_id"
)

// decodeStripe verifies a Stripe-Signature header and maps the PaymentIntent
// events onto a WebhookEvent. Other Stripe event types come back with their
// own type and are acknowledged without effect.
func (s *WebhookService) decodeStripe(payload []byte, signature string) (*WebhookEvent, error) {
	if s.stripeSecret == "" {
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.stripeSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.logger.Warn("Stripe signature verification failed", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	out := &WebhookEvent{EventID: event.ID, Type: string(event.Type)}

	var eventType string
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		eventType = EventPaymentSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed:
		eventType = EventPaymentFailed
	default:
		return out, nil
	}

	if event.Data == nil {
		return nil, ErrInvalidPayload
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, ErrInvalidPayload
	}

	out.Type = eventType
	out.TenantID, _ = uuid.Parse(intent.Metadata[stripeMetaTenantID])
	out.InvoiceID, _ = uuid.Parse(intent.Metadata[stripeMetaInvoiceID])
	// Stripe amounts are in the smallest currency unit
	out.Amount = decimal.New(intent.AmountReceived, -2)
	out.Currency = string(intent.Currency)
	out.Reference = intent.ID
	paidAt := time.Unix(event.Created, 0).UTC()
	out.PaidAt = &paidAt
	if intent.LastPaymentError != nil {
		out.Reason = intent.LastPaymentError.Msg
	}
	return out, nil
}
