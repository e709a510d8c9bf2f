package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDedupTTL is how long a handled event ID is remembered
const DefaultDedupTTL = 24 * time.Hour

// HandlerStats counts what an IdempotentHandler did
type HandlerStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler wraps an EventHandler so that an event redelivered with
// the same ID is handled once. Keys are namespaced per handler name, so two
// wrapped handlers both see the same event.
type IdempotentHandler struct {
	name    string
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler wraps handler. A zero ttl uses DefaultDedupTTL.
func NewIdempotentHandler(name string, handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &IdempotentHandler{
		name:    name,
		handler: handler,
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

func (h *IdempotentHandler) key(event shared.DomainEvent) string {
	return "event:" + h.name + ":" + event.EventID().String()
}

// Handle processes the event unless its ID was already handled
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.key(event)

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		// store down: a duplicate notification beats a lost one
		h.logger.Warn("idempotency check failed, handling anyway",
			zap.String("handler", h.name),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	} else if !isNew {
		h.duplicate.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("handler", h.name),
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if ferr := h.store.Forget(ctx, key); ferr != nil {
			h.logger.Warn("failed to release idempotency key",
				zap.String("handler", h.name),
				zap.String("event_id", event.EventID().String()),
				zap.Error(ferr),
			)
		}
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns a snapshot of the counters
func (h *IdempotentHandler) Stats() HandlerStats {
	return HandlerStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
