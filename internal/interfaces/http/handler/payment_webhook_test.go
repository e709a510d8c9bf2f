package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/application/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWebhookProcessor struct{ mock.Mock }

func (m *mockWebhookProcessor) ProcessWebhook(ctx context.Context, provider string, payload []byte, signature string) (*payment.WebhookResult, error) {
	args := m.Called(ctx, provider, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookResult), args.Error(1)
}

func serveWebhook(t *testing.T, processor PaymentWebhookProcessor, body []byte, signature string) (*httptest.ResponseRecorder, PaymentWebhookResponse) {
	t.Helper()
	r := gin.New()
	r.POST("/webhooks/payments/:provider", NewPaymentWebhookHandler(processor).HandlePaymentWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/payplug", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp PaymentWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestPaymentWebhookHandler(t *testing.T) {
	body := []byte(`{"event_id":"evt_42","type":"payment.succeeded"}`)
	sig := payment.Sign(body, "whsec_test")

	t.Run("processed", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		p.On("ProcessWebhook", mock.Anything, "payplug", body, sig).
			Return(&payment.WebhookResult{EventID: "evt_42", EventType: "payment.succeeded", Processed: true}, nil)

		w, resp := serveWebhook(t, p, body, sig)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Received)
		assert.Equal(t, "evt_42", resp.EventID)
		assert.False(t, resp.Duplicate)
	})

	t.Run("duplicate is acknowledged", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		p.On("ProcessWebhook", mock.Anything, "payplug", body, sig).
			Return(&payment.WebhookResult{EventID: "evt_42", Processed: true, Duplicate: true, Message: "Event already processed"}, nil)

		w, resp := serveWebhook(t, p, body, sig)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Duplicate)
	})

	t.Run("missing signature", func(t *testing.T) {
		p := new(mockWebhookProcessor)

		w, _ := serveWebhook(t, p, body, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		p.AssertNotCalled(t, "ProcessWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		p.On("ProcessWebhook", mock.Anything, "payplug", body, "sha256=00").Return(nil, payment.ErrInvalidSignature)

		w, resp := serveWebhook(t, p, body, "sha256=00")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, resp.Received)
	})

	t.Run("malformed payload", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		p.On("ProcessWebhook", mock.Anything, "payplug", mock.Anything, mock.Anything).Return(nil, payment.ErrInvalidPayload)

		w, _ := serveWebhook(t, p, []byte(`{`), sig)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("infrastructure failure asks for retry", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		p.On("ProcessWebhook", mock.Anything, "payplug", body, sig).
			Return(&payment.WebhookResult{EventID: "evt_42"}, errors.New("connection refused"))

		w, resp := serveWebhook(t, p, body, sig)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "evt_42", resp.EventID)
		assert.NotContains(t, resp.Message, "connection refused")
	})

	t.Run("payload too large", func(t *testing.T) {
		p := new(mockWebhookProcessor)
		big := []byte(`{"pad":"` + strings.Repeat("x", maxWebhookPayloadSize) + `"}`)

		w, _ := serveWebhook(t, p, big, sig)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		p.AssertNotCalled(t, "ProcessWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentWebhookHandler_StripeHeader(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	r := gin.New()

	p := new(mockWebhookProcessor)
	p.On("ProcessWebhook", mock.Anything, payment.ProviderStripe, body, "t=1,v1=abc").
		Return(&payment.WebhookResult{EventID: "evt_1", EventType: payment.EventPaymentSucceeded, Processed: true}, nil).Once()
	r.POST("/webhooks/payments/:provider", NewPaymentWebhookHandler(p).HandlePaymentWebhook)

	t.Run("reads Stripe-Signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/stripe", bytes.NewReader(body))
		req.Header.Set(payment.StripeSignatureHeader, "t=1,v1=abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("X-Signature is not accepted for stripe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/stripe", bytes.NewReader(body))
		req.Header.Set(SignatureHeader, "sha256=00")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), payment.StripeSignatureHeader)
	})

	p.AssertExpectations(t)
}
