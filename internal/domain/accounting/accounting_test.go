package accounting

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewJournalEntry_Balance(t *testing.T) {
	tenantID := uuid.New()

	t.Run("balanced entry", func(t *testing.T) {
		e, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "Frais bancaires", []EntryLine{
			Debit("627", d("12.50"), "Frais"),
			Credit(AccountBank, d("12.50"), "Frais"),
		})
		require.NoError(t, err)
		assert.True(t, e.IsBalanced())
		assert.True(t, d("12.50").Equal(e.TotalDebit()))
	})

	t.Run("unbalanced entry by one cent", func(t *testing.T) {
		_, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "Erreur", []EntryLine{
			Debit("627", d("12.50"), ""),
			Credit(AccountBank, d("12.49"), ""),
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "UNBALANCED_ENTRY", de.Code)
	})

	t.Run("single line", func(t *testing.T) {
		_, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "X", []EntryLine{Debit("627", d("1"), "")})
		assert.Error(t, err)
	})

	t.Run("line with both debit and credit", func(t *testing.T) {
		_, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "X", []EntryLine{
			{Account: "627", Debit: d("1"), Credit: d("1")},
			Credit(AccountBank, d("0"), ""),
			Debit(AccountBank, d("0"), ""),
		})
		assert.Error(t, err)
	})

	t.Run("sub-cent amounts", func(t *testing.T) {
		_, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "X", []EntryLine{
			Debit("627", d("1.005"), ""),
			Credit(AccountBank, d("1.005"), ""),
		})
		assert.Error(t, err)
	})

	t.Run("invalid account", func(t *testing.T) {
		_, err := NewJournalEntry(tenantID, JournalMisc, time.Now(), "X", []EntryLine{
			Debit("9ABC", d("1"), ""),
			Credit(AccountBank, d("1"), ""),
		})
		assert.Error(t, err)
	})

	t.Run("zero lines are dropped", func(t *testing.T) {
		e, err := NewJournalEntry(tenantID, JournalSales, time.Now(), "Facture auto-liquidée", []EntryLine{
			Debit(AccountClients, d("100"), ""),
			Credit(AccountSalesWorks, d("100"), ""),
			Credit(AccountVATCollect, d("0"), ""),
		})
		require.NoError(t, err)
		assert.Len(t, e.Lines, 2)
	})
}

func TestSalesEntry(t *testing.T) {
	e, err := SalesEntry(uuid.New(), uuid.New(), "FAC-2026-00001", time.Now(), d("78.87"), d("13.88"), d("92.75"))
	require.NoError(t, err)
	assert.Equal(t, JournalSales, e.Journal)
	assert.Equal(t, SourceInvoice, e.SourceType)
	require.Len(t, e.Lines, 3)
	assert.True(t, e.IsBalanced())
	assert.True(t, d("92.75").Equal(e.TotalDebit()))

	_, err = SalesEntry(uuid.New(), uuid.New(), "FAC-2026-00002", time.Now(), d("78.87"), d("13.88"), d("92.76"))
	assert.Error(t, err, "inconsistent totals cannot be posted")
}

func TestPaymentEntry(t *testing.T) {
	bank, err := PaymentEntry(uuid.New(), uuid.New(), "FAC-2026-00001", time.Now(), d("50"), false)
	require.NoError(t, err)
	assert.Equal(t, AccountBank, bank.Lines[0].Account)

	cash, err := PaymentEntry(uuid.New(), uuid.New(), "FAC-2026-00001", time.Now(), d("50"), true)
	require.NoError(t, err)
	assert.Equal(t, JournalBank, cash.Journal)
	assert.Equal(t, AccountCash, cash.Lines[0].Account)
	assert.Equal(t, "50.00", cash.Lines[0].Debit.StringFixed(2))
	assert.Equal(t, AccountClients, cash.Lines[1].Account)
	assert.Equal(t, "50.00", cash.Lines[1].Credit.StringFixed(2))
}

func TestJournalEntry_Reverse(t *testing.T) {
	e, err := SalesEntry(uuid.New(), uuid.New(), "FAC-2026-00003", time.Now(), d("100"), d("20"), d("120"))
	require.NoError(t, err)

	rev, err := e.Reverse(time.Now(), "Annulation")
	require.NoError(t, err)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, e.ID, *rev.ReversalOf)

	tb := ComputeTrialBalance([]JournalEntry{*e, *rev}, nil, nil)
	assert.True(t, tb.Balanced)
	for _, ab := range tb.Accounts {
		assert.True(t, ab.Balance.IsZero(), ab.Account)
	}
}

func TestComputeTrialBalance(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()

	sale, err := SalesEntry(tenantID, invoiceID, "FAC-2026-00001", time.Now(), d("1000"), d("200"), d("1200"))
	require.NoError(t, err)
	pay, err := PaymentEntry(tenantID, invoiceID, "FAC-2026-00001", time.Now(), d("700"), false)
	require.NoError(t, err)
	buy, err := PurchaseEntry(tenantID, uuid.New(), "CMD-2026-00001", time.Now(), d("300"), d("60"), d("360"))
	require.NoError(t, err)

	tb := ComputeTrialBalance([]JournalEntry{*sale, *pay, *buy}, nil, nil)

	assert.True(t, tb.Balanced)
	assert.False(t, tb.Critical)
	assert.True(t, tb.Difference.IsZero())
	assert.Equal(t, 3, tb.EntryCount)
	assert.True(t, d("2260").Equal(tb.TotalDebit), tb.TotalDebit.String())
	assert.True(t, d("2260").Equal(tb.TotalCredit))

	assert.True(t, d("500").Equal(tb.BalanceOf(AccountClients)), "client still owes 500")
	assert.True(t, d("700").Equal(tb.BalanceOf(AccountBank)))
	assert.True(t, d("-200").Equal(tb.BalanceOf(AccountVATCollect)))
	assert.True(t, d("60").Equal(tb.BalanceOf(AccountVATOnBuys)))
	assert.True(t, d("-360").Equal(tb.BalanceOf(AccountSuppliers)))
	assert.True(t, tb.BalanceOf("999").IsZero())

	assert.Equal(t, AccountSuppliers, tb.Accounts[0].Account, "sorted by account number")
}

func TestComputeTrialBalance_DetectsCorruptedEntry(t *testing.T) {
	e := JournalEntry{Lines: EntryLines{
		Debit(AccountClients, d("100"), ""),
		Credit(AccountSalesWorks, d("90"), ""),
	}}
	tb := ComputeTrialBalance([]JournalEntry{e}, nil, nil)
	assert.False(t, tb.Balanced)
	assert.True(t, tb.Critical)
	assert.True(t, d("10").Equal(tb.Difference))
}
