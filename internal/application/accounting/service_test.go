package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService() (*Service, *testutil.MockJournalEntryRepository) {
	repo := new(testutil.MockJournalEntryRepository)
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestService_CreateManualEntry(t *testing.T) {
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	t.Run("balanced entry", func(t *testing.T) {
		svc, repo := newService()
		repo.On("Create", ctx, mock.AnythingOfType("*accounting.JournalEntry")).Return(nil)

		resp, err := svc.CreateManualEntry(ctx, tenantID, userID, ManualEntryRequest{
			Journal: "misc",
			Label:   "Frais bancaires octobre",
			Lines: []LineRequest{
				{Account: "658", Debit: d("12.40")},
				{Account: "512", Credit: d("12.40")},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, accounting.JournalMisc, resp.Journal)
		assert.Equal(t, accounting.SourceManual, resp.SourceType)
		assert.True(t, resp.TotalDebit.Equal(d("12.40")))
		assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), resp.Date)
	})

	t.Run("unbalanced entry", func(t *testing.T) {
		svc, repo := newService()
		_, err := svc.CreateManualEntry(ctx, tenantID, userID, ManualEntryRequest{
			Journal: "MISC",
			Label:   "Erreur",
			Lines: []LineRequest{
				{Account: "658", Debit: d("10")},
				{Account: "512", Credit: d("9.99")},
			},
		})
		assertCode(t, err, "UNBALANCED_ENTRY")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("line with both sides", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateManualEntry(ctx, tenantID, userID, ManualEntryRequest{
			Journal: "BANK",
			Label:   "Erreur",
			Lines: []LineRequest{
				{Account: "512", Debit: d("10"), Credit: d("10")},
				{Account: "411", Credit: d("10")},
			},
		})
		assertCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("unknown journal", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateManualEntry(ctx, tenantID, userID, ManualEntryRequest{
			Journal: "PAYROLL",
			Label:   "Salaires",
			Lines: []LineRequest{
				{Account: "641", Debit: d("10")},
				{Account: "512", Credit: d("10")},
			},
		})
		assertCode(t, err, "INVALID_JOURNAL")
	})
}

func TestService_ReverseEntry(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, repo := newService()
	entry, err := accounting.PaymentEntry(tenantID, uuid.New(), "FAC-2026-00004", time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), d("150"), false)
	require.NoError(t, err)
	repo.On("FindByIDForTenant", ctx, tenantID, entry.ID).Return(entry, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	rev, err := svc.ReverseEntry(ctx, tenantID, entry.ID, ReverseRequest{})
	require.NoError(t, err)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, entry.ID, *rev.ReversalOf)
	assert.Equal(t, "Extourne : "+entry.Label, rev.Label)
	for i, l := range rev.Lines {
		assert.True(t, l.Debit.Equal(entry.Lines[i].Credit))
		assert.True(t, l.Credit.Equal(entry.Lines[i].Debit))
	}

	created := repo.Calls[len(repo.Calls)-1].Arguments.Get(1).(*accounting.JournalEntry)
	repo.On("FindByIDForTenant", ctx, tenantID, created.ID).Return(created, nil)
	_, err = svc.ReverseEntry(ctx, tenantID, created.ID, ReverseRequest{})
	assertCode(t, err, "INVALID_STATE")
}

func TestService_TrialBalance(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, repo := newService()
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	sale, err := accounting.SalesEntry(tenantID, uuid.New(), "FAC-2026-00001", day, d("1000"), d("200"), d("1200"))
	require.NoError(t, err)
	paid, err := accounting.PaymentEntry(tenantID, uuid.New(), "FAC-2026-00001", day, d("1200"), false)
	require.NoError(t, err)
	buy, err := accounting.PurchaseEntry(tenantID, uuid.New(), "CMD-2026-00001", day, d("300"), d("60"), d("360"))
	require.NoError(t, err)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	repo.On("FindForPeriod", ctx, tenantID, &from, &to).
		Return([]accounting.JournalEntry{*sale, *paid, *buy}, nil)

	tb, err := svc.TrialBalance(ctx, tenantID, PeriodRequest{From: &from, To: &to})
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.False(t, tb.Critical)
	assert.Equal(t, 3, tb.EntryCount)
	assert.True(t, tb.TotalDebit.Equal(d("2760")), tb.TotalDebit.String())
	assert.True(t, tb.BalanceOf(accounting.AccountClients).IsZero())
	assert.True(t, tb.BalanceOf(accounting.AccountBank).Equal(d("1200")))
	assert.True(t, tb.BalanceOf(accounting.AccountVATCollect).Equal(d("-200")))
	assert.True(t, tb.BalanceOf(accounting.AccountSuppliers).Equal(d("-360")))
	assert.Equal(t, "401", tb.Accounts[0].Account)
}

func TestService_TrialBalance_InvalidRange(t *testing.T) {
	svc, repo := newService()
	from := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.TrialBalance(context.Background(), uuid.New(), PeriodRequest{From: &from, To: &to})
	assertCode(t, err, "INVALID_RANGE")
	repo.AssertNotCalled(t, "FindForPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ListEntries_MapsFilter(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, repo := newService()
	repo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f accounting.EntryFilter) bool {
		return f.Journal != nil && *f.Journal == accounting.JournalSales &&
			f.SourceType == accounting.SourceInvoice && f.Page == 1 && f.PageSize == 20 && f.OrderBy == "date"
	})).Return([]accounting.JournalEntry{}, int64(0), nil)

	page, err := svc.ListEntries(ctx, tenantID, ListFilter{Journal: "sales", SourceType: "invoice"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
