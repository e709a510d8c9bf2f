package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventHandler turns business events into notifications. Clients are told
// about quotes, invoices and appointments; the artisan gets in-app notices
// for payments and reviews.
type EventHandler struct {
	svc *Service
}

// NewEventHandler creates the handler
func NewEventHandler(svc *Service) *EventHandler {
	return &EventHandler{svc: svc}
}

// EventTypes returns the event types this handler is interested in
func (h *EventHandler) EventTypes() []string {
	return []string{
		quote.EventTypeQuoteSent,
		invoice.EventTypeInvoiceIssued,
		invoice.EventTypePaymentReceived,
		intervention.EventTypeInterventionScheduled,
		review.EventTypeReviewSubmitted,
	}
}

// Handle creates the notification matching the event
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *quote.QuoteSentEvent:
		return h.onQuoteSent(ctx, e)
	case *invoice.InvoiceIssuedEvent:
		return h.onInvoiceIssued(ctx, e)
	case *invoice.PaymentReceivedEvent:
		return h.onPaymentReceived(ctx, e)
	case *intervention.InterventionScheduledEvent:
		return h.onInterventionScheduled(ctx, e)
	case *review.ReviewSubmittedEvent:
		return h.onReviewSubmitted(ctx, e)
	}
	return fmt.Errorf("unexpected event type: %s", event.EventType())
}

func (h *EventHandler) onQuoteSent(ctx context.Context, e *quote.QuoteSentEvent) error {
	return h.toClient(ctx, e, e.ClientID, quote.AggregateTypeQuote, func(c *client.Client, channel notification.Channel) (message, error) {
		a, err := h.svc.artisanRepo.FindByID(ctx, e.TenantID())
		if err != nil {
			return message{}, err
		}
		return quoteSent(a, c, e.Number, e.TotalTTC, h.svc.portalLink(c), channel), nil
	})
}

func (h *EventHandler) onInvoiceIssued(ctx context.Context, e *invoice.InvoiceIssuedEvent) error {
	return h.toClient(ctx, e, e.ClientID, invoice.AggregateTypeInvoice, func(c *client.Client, channel notification.Channel) (message, error) {
		a, err := h.svc.artisanRepo.FindByID(ctx, e.TenantID())
		if err != nil {
			return message{}, err
		}
		return invoiceIssued(a, c, e.Number, e.TotalTTC, e.DueDate, h.svc.portalLink(c), channel), nil
	})
}

func (h *EventHandler) onInterventionScheduled(ctx context.Context, e *intervention.InterventionScheduledEvent) error {
	return h.toClient(ctx, e, e.ClientID, intervention.AggregateTypeIntervention, func(c *client.Client, channel notification.Channel) (message, error) {
		a, err := h.svc.artisanRepo.FindByID(ctx, e.TenantID())
		if err != nil {
			return message{}, err
		}
		return interventionScheduled(a, c, e.Title, e.Start, channel), nil
	})
}

func (h *EventHandler) onPaymentReceived(ctx context.Context, e *invoice.PaymentReceivedEvent) error {
	c, err := h.svc.clientRepo.FindByIDForTenant(ctx, e.TenantID(), e.ClientID)
	if err != nil {
		return err
	}
	msg := paymentReceived(c, e.Number, e.Amount, e.Outstanding, e.FullyPaid)
	return h.svc.notify(ctx, e.TenantID(), notification.ChannelInApp, "", msg, invoice.AggregateTypeInvoice, e.AggregateID())
}

func (h *EventHandler) onReviewSubmitted(ctx context.Context, e *review.ReviewSubmittedEvent) error {
	c, err := h.svc.clientRepo.FindByIDForTenant(ctx, e.TenantID(), e.ClientID)
	if err != nil {
		return err
	}
	msg := reviewSubmitted(c, e.Rating)
	return h.svc.notify(ctx, e.TenantID(), notification.ChannelInApp, "", msg, review.AggregateTypeReview, e.AggregateID())
}

// toClient notifies the client on their preferred channel. Clients without
// any contact are skipped.
func (h *EventHandler) toClient(
	ctx context.Context,
	e shared.DomainEvent,
	clientID uuid.UUID,
	relatedType string,
	compose func(c *client.Client, channel notification.Channel) (message, error),
) error {
	c, err := h.svc.clientRepo.FindByIDForTenant(ctx, e.TenantID(), clientID)
	if err != nil {
		return err
	}
	channel, recipient, ok := clientChannel(c)
	if !ok {
		h.svc.logger.Info("Client has no contact, notification skipped",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("client_id", clientID.String()),
			zap.String("event_type", e.EventType()))
		return nil
	}
	msg, err := compose(c, channel)
	if err != nil {
		return err
	}
	return h.svc.notify(ctx, e.TenantID(), channel, recipient, msg, relatedType, e.AggregateID())
}

var _ shared.EventHandler = (*EventHandler)(nil)
