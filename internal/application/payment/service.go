// Package payment processes online payment notifications sent by payment
// providers and records them on the matching invoice.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultIdempotencyTTL = 72 * time.Hour

var (
	ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	ErrInvalidPayload   = shared.NewDomainError("INVALID_PAYLOAD", "Webhook payload is malformed")
)

// InvoicePayments records payments on invoices
type InvoicePayments interface {
	RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.PaymentRequest) (*invoiceapp.InvoiceResponse, error)
}

// WebhookService verifies and applies payment provider webhooks
type WebhookService struct {
	secret       []byte
	stripeSecret string
	currency     string
	ttl          time.Duration
	invoices     InvoicePayments
	store        shared.IdempotencyStore
	logger       *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	// StripeSecret is the whsec_ signing secret of the Stripe endpoint
	StripeSecret   string
	Secret         string
	Currency       string
	IdempotencyTTL time.Duration
	Invoices       InvoicePayments
	Store          shared.IdempotencyStore
	Logger         *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	return &WebhookService{
		secret:       []byte(cfg.Secret),
		stripeSecret: cfg.StripeSecret,
		currency:     strings.ToUpper(cfg.Currency),
		ttl:          cfg.IdempotencyTTL,
		invoices:     cfg.Invoices,
		store:        cfg.Store,
		logger:       cfg.Logger,
	}
}

// Sign returns the signature header value for a payload
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the X-Signature header against the raw body
func (s *WebhookService) VerifySignature(payload []byte, signature string) error {
	if len(s.secret) == 0 {
		return ErrInvalidSignature
	}
	hexSum, ok := strings.CutPrefix(strings.TrimSpace(signature), "sha256=")
	if !ok {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(hexSum)
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// ProcessWebhook verifies, deduplicates and applies one provider event.
// A nil result means the request itself was rejected (bad signature or body).
// Domain failures are reported in the result and acknowledged; only
// infrastructure failures release the event ID so the provider can retry.
func (s *WebhookService) ProcessWebhook(ctx context.Context, provider string, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.decode(provider, payload, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			s.logger.Warn("Rejected payment webhook with invalid signature",
				zap.String("provider", provider))
		}
		return nil, err
	}
	if event.EventID == "" || event.Type == "" {
		return nil, ErrInvalidPayload
	}

	result := &WebhookResult{
		EventID:   event.EventID,
		EventType: event.Type,
		Processed: true,
	}

	key := "payment:" + provider + ":" + event.EventID
	fresh, err := s.store.MarkProcessed(ctx, key, s.ttl)
	if err != nil {
		return result, err
	}
	if !fresh {
		s.logger.Info("Duplicate payment webhook ignored",
			zap.String("provider", provider),
			zap.String("event_id", event.EventID))
		result.Duplicate = true
		result.Message = "Event already processed"
		return result, nil
	}

	s.logger.Info("Processing payment webhook",
		zap.String("provider", provider),
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.Type))

	switch event.Type {
	case EventPaymentSucceeded:
		err = s.handleSucceeded(ctx, provider, event)
	case EventPaymentFailed:
		s.logger.Warn("Online payment failed",
			zap.String("provider", provider),
			zap.String("tenant_id", event.TenantID.String()),
			zap.String("invoice_id", event.InvoiceID.String()),
			zap.String("reason", event.Reason))
	default:
		result.Message = "Event type not handled"
	}

	if err != nil {
		result.Processed = false
		result.Message = err.Error()

		var de *shared.DomainError
		if errors.As(err, &de) {
			s.logger.Warn("Payment webhook not applied",
				zap.String("event_id", event.EventID),
				zap.String("code", de.Code),
				zap.String("reason", de.Message))
			return result, nil
		}
		if ferr := s.store.Forget(ctx, key); ferr != nil {
			s.logger.Error("Failed to release webhook event", zap.String("event_id", event.EventID), zap.Error(ferr))
		}
		s.logger.Error("Failed to process payment webhook",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return result, err
	}
	return result, nil
}

// decode authenticates the body with the scheme of the provider
func (s *WebhookService) decode(provider string, payload []byte, signature string) (*WebhookEvent, error) {
	if provider == ProviderStripe {
		return s.decodeStripe(payload, signature)
	}
	if err := s.VerifySignature(payload, signature); err != nil {
		return nil, err
	}
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	return &event, nil
}

func (s *WebhookService) handleSucceeded(ctx context.Context, provider string, e *WebhookEvent) error {
	if !strings.EqualFold(e.Currency, s.currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Only "+s.currency+" payments are accepted")
	}
	if e.TenantID == uuid.Nil || e.InvoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Tenant and invoice are required")
	}
	reference := e.Reference
	if reference == "" {
		reference = provider + ":" + e.EventID
	}
	resp, err := s.invoices.RecordPayment(ctx, e.TenantID, e.InvoiceID, invoiceapp.PaymentRequest{
		Amount:    e.Amount,
		Method:    string(invoice.PaymentMethodOnline),
		Reference: reference,
		PaidAt:    e.PaidAt,
	})
	if err != nil {
		return err
	}
	s.logger.Info("Online payment recorded",
		zap.String("provider", provider),
		zap.String("tenant_id", e.TenantID.String()),
		zap.String("invoice_id", e.InvoiceID.String()),
		zap.String("amount", e.Amount.StringFixed(2)),
		zap.String("status", string(resp.Status)))
	return nil
}
