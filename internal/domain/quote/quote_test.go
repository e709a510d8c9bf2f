package quote

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLines(t *testing.T) []pricing.LineItem {
	t.Helper()
	l1, err := pricing.NewLineItem("Remplacement chauffe-eau 200L", decimal.NewFromInt(1), decimal.RequireFromString("890.00"), decimal.NewFromInt(10), decimal.Zero, "u")
	require.NoError(t, err)
	l2, err := pricing.NewLineItem("Main d'oeuvre", decimal.NewFromInt(3), decimal.RequireFromString("55.00"), decimal.NewFromInt(10), decimal.Zero, "h")
	require.NoError(t, err)
	return []pricing.LineItem{l1, l2}
}

func newTestQuote(t *testing.T) *Quote {
	t.Helper()
	q, err := NewQuote(uuid.New(), uuid.New(), "Chauffe-eau", testLines(t), nil)
	require.NoError(t, err)
	return q
}

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from QuoteStatus
		to   QuoteStatus
		want bool
	}{
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusDraft, QuoteStatusCancelled, true},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusRejected, true},
		{QuoteStatusSent, QuoteStatusExpired, true},
		{QuoteStatusSent, QuoteStatusInvoiced, false},
		{QuoteStatusAccepted, QuoteStatusInvoiced, true},
		{QuoteStatusAccepted, QuoteStatusCancelled, false},
		{QuoteStatusRejected, QuoteStatusAccepted, false},
		{QuoteStatusInvoiced, QuoteStatusDraft, false},
		{QuoteStatusExpired, QuoteStatusSent, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewQuote(t *testing.T) {
	q := newTestQuote(t)

	assert.Equal(t, QuoteStatusDraft, q.Status)
	assert.Empty(t, q.Number)
	assert.True(t, decimal.RequireFromString("1055.00").Equal(q.Totals.TotalHT))
	assert.True(t, decimal.RequireFromString("105.50").Equal(q.Totals.TotalVAT))
	assert.True(t, decimal.RequireFromString("1160.50").Equal(q.Totals.TotalTTC))
	assert.WithinDuration(t, time.Now().AddDate(0, 0, DefaultValidityDays), q.ValidUntil, time.Minute)
	assert.Len(t, q.GetDomainEvents(), 1)

	t.Run("requires lines", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), uuid.New(), "Vide", nil, nil)
		assert.Error(t, err)
	})
	t.Run("requires title", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), uuid.New(), " ", testLines(t), nil)
		assert.Error(t, err)
	})
	t.Run("rejects past validity", func(t *testing.T) {
		past := time.Now().AddDate(0, 0, -3)
		_, err := NewQuote(uuid.New(), uuid.New(), "X", testLines(t), &past)
		assert.Error(t, err)
	})
}

func TestQuote_Lifecycle(t *testing.T) {
	q := newTestQuote(t)

	require.NoError(t, q.Send("DEV-2026-00001"))
	assert.Equal(t, "DEV-2026-00001", q.Number)
	assert.NotNil(t, q.SentAt)

	assert.Error(t, q.Update("Modifié", testLines(t), nil, ""), "sent quotes are frozen")

	require.NoError(t, q.Accept())
	assert.Equal(t, QuoteStatusAccepted, q.Status)

	invoiceID := uuid.New()
	require.NoError(t, q.MarkInvoiced(invoiceID))
	assert.Equal(t, QuoteStatusInvoiced, q.Status)
	assert.Equal(t, invoiceID, *q.InvoiceID)

	assert.Error(t, q.Cancel())
}

func TestQuote_SendRequiresNumber(t *testing.T) {
	q := newTestQuote(t)
	assert.Error(t, q.Send(""))
	assert.Equal(t, QuoteStatusDraft, q.Status)
}

func TestQuote_Reject(t *testing.T) {
	q := newTestQuote(t)
	assert.Error(t, q.Reject("trop cher"), "drafts cannot be rejected")

	require.NoError(t, q.Send("DEV-2026-00002"))
	require.NoError(t, q.Reject("  trop cher "))
	assert.Equal(t, "trop cher", q.RejectionReason)
	assert.Error(t, q.Accept())
}

func TestQuote_Expire(t *testing.T) {
	q := newTestQuote(t)
	require.NoError(t, q.Send("DEV-2026-00003"))

	assert.Error(t, q.Expire(time.Now()), "still valid")

	later := q.ValidUntil.AddDate(0, 0, 1)
	require.NoError(t, q.Expire(later))
	assert.Equal(t, QuoteStatusExpired, q.Status)
}

func TestQuote_AcceptAfterValidity(t *testing.T) {
	q := newTestQuote(t)
	require.NoError(t, q.Send("DEV-2026-00004"))
	q.ValidUntil = time.Now().AddDate(0, 0, -2)

	err := q.Accept()
	require.Error(t, err)
	assert.Equal(t, QuoteStatusSent, q.Status)
}

func TestQuote_Duplicate(t *testing.T) {
	q := newTestQuote(t)
	require.NoError(t, q.Send("DEV-2026-00005"))

	dup, err := q.Duplicate()
	require.NoError(t, err)
	assert.NotEqual(t, q.ID, dup.ID)
	assert.Equal(t, QuoteStatusDraft, dup.Status)
	assert.Empty(t, dup.Number)
	assert.True(t, q.Totals.TotalTTC.Equal(dup.Totals.TotalTTC))
}
