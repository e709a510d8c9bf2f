package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/application/payment"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Maximum webhook payload size (64KB - provider notifications are small)
const maxWebhookPayloadSize = 65536

// SignatureHeader carries the HMAC-SHA256 of the raw body
const SignatureHeader = "X-Signature"

// PaymentWebhookProcessor applies provider notifications
type PaymentWebhookProcessor interface {
	ProcessWebhook(ctx context.Context, provider string, payload []byte, signature string) (*payment.WebhookResult, error)
}

// PaymentWebhookHandler receives online payment notifications.
// These endpoints are called by the payment provider and do not require authentication.
type PaymentWebhookHandler struct {
	BaseHandler
	webhookService PaymentWebhookProcessor
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(webhookService PaymentWebhookProcessor) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{webhookService: webhookService}
}

// PaymentWebhookResponse represents the response for a payment webhook
//
//	@Description	Payment webhook response
type PaymentWebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1234567890"`
	EventType string `json:"event_type,omitempty" example:"payment.succeeded"`
	Duplicate bool   `json:"duplicate,omitempty" example:"false"`
	Message   string `json:"message,omitempty" example:"Webhook processed successfully"`
}

// HandlePaymentWebhook godoc
//
//	@ID				handlePaymentWebhook
//	@Summary		Handle a payment provider webhook
//	@Description	Verifies the signature, then records the payment on the invoice. Events are applied once.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			provider	path		string					true	"Payment provider"
//	@Param			X-Signature	header		string					false	"sha256=<hex HMAC of the body>"
//	@Param			Stripe-Signature	header	string				false	"Stripe signature, provider stripe only"
//	@Success		200			{object}	PaymentWebhookResponse	"Webhook processed"
//	@Failure		400			{object}	PaymentWebhookResponse	"Invalid payload"
//	@Failure		401			{object}	PaymentWebhookResponse	"Invalid signature"
//	@Failure		413			{object}	PaymentWebhookResponse	"Payload too large"
//	@Failure		500			{object}	PaymentWebhookResponse	"Processing failed, retry later"
//	@Router			/webhooks/payments/{provider} [post]
func (h *PaymentWebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	// The signature covers the raw body, so it is read before any decoding
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, PaymentWebhookResponse{Message: "Failed to read request body"})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, PaymentWebhookResponse{Message: "Payload too large"})
		return
	}

	provider := c.Param("provider")
	header := SignatureHeader
	if provider == payment.ProviderStripe {
		header = payment.StripeSignatureHeader
	}
	signature := c.GetHeader(header)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, PaymentWebhookResponse{Message: "Missing " + header + " header"})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), provider, payload, signature)
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, PaymentWebhookResponse{Message: "Webhook signature verification failed"})
		return
	case errors.Is(err, payment.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, PaymentWebhookResponse{Message: "Webhook payload is malformed"})
		return
	case err != nil:
		logger.FromContext(c.Request.Context()).Error("Payment webhook failed",
			zap.String("provider", provider),
			zap.Error(err))
		resp := PaymentWebhookResponse{Message: "Webhook could not be processed"}
		if result != nil {
			resp.EventID = result.EventID
			resp.EventType = result.EventType
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, PaymentWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Duplicate: result.Duplicate,
		Message:   result.Message,
	})
}
