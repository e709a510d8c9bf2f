package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseDomainEvent(t *testing.T) {
	quoteID, tenantID := uuid.New(), uuid.New()
	before := time.Now()

	e := NewBaseDomainEvent("QuoteAccepted", "Quote", quoteID, tenantID)
	var event DomainEvent = &e

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "QuoteAccepted", event.EventType())
	assert.Equal(t, "Quote", event.AggregateType())
	assert.Equal(t, quoteID, event.AggregateID())
	assert.Equal(t, tenantID, event.TenantID())
	assert.False(t, event.OccurredAt().Before(before))

	other := NewBaseDomainEvent("QuoteAccepted", "Quote", quoteID, tenantID)
	assert.NotEqual(t, e.EventID(), other.EventID(), "each event gets its own id")
}
