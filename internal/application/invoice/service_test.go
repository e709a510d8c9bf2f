package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	"github.com/monartisan/backend/internal/application/numbering"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderInvoice(_ context.Context, inv *invoice.Invoice) (*documentapp.Rendered, error) {
	return &documentapp.Rendered{
		Key:  documentapp.Key(inv.TenantID, documentapp.KindInvoice, inv.ID),
		Data: []byte("%PDF-1.7"),
	}, nil
}

type fixture struct {
	invoices *testutil.MockInvoiceRepository
	clients  *testutil.MockClientRepository
	artisans *testutil.MockArtisanRepository
	journal  *testutil.MockJournalEntryRepository
	tx       *testutil.FakeTxManager
	events   *testutil.RecordingPublisher
	svc      *Service
	artisan  *identity.Artisan
	clientID uuid.UUID
	userID   uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	artisan, err := identity.NewArtisan("Électricité Morel", "contact@morel-elec.fr")
	require.NoError(t, err)
	artisan.ClearDomainEvents()

	f := &fixture{
		invoices: new(testutil.MockInvoiceRepository),
		clients:  new(testutil.MockClientRepository),
		artisans: new(testutil.MockArtisanRepository),
		journal:  new(testutil.MockJournalEntryRepository),
		tx:       &testutil.FakeTxManager{},
		events:   &testutil.RecordingPublisher{},
		artisan:  artisan,
		clientID: uuid.New(),
		userID:   uuid.New(),
		now:      time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC),
	}
	seq := numbering.NewSequencer(f.artisans, f.tx, nil)
	f.svc = NewService(f.invoices, f.clients, f.artisans, f.journal, seq, f.tx, fakeRenderer{}, f.events, nil)
	f.svc.now = func() time.Time { return f.now }
	f.artisans.On("FindByID", mock.Anything, artisan.ID).Return(artisan, nil)
	return f
}

// draft is 1000 HT at 20%: 1200 TTC
func (f *fixture) draft(t *testing.T) *invoice.Invoice {
	t.Helper()
	line, err := pricing.NewLineItem("Mise aux normes tableau électrique", decimal.NewFromInt(1), decimal.NewFromInt(1000), pricing.VATRateStandard, decimal.Zero, "forfait")
	require.NoError(t, err)
	inv, err := invoice.NewInvoice(f.artisan.ID, f.clientID, "Tableau électrique", []pricing.LineItem{line})
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func (f *fixture) issued(t *testing.T) *invoice.Invoice {
	t.Helper()
	inv := f.draft(t)
	require.NoError(t, inv.Issue("FAC-2026-00001", f.now.AddDate(0, 0, -10), 30))
	inv.ClearDomainEvents()
	return inv
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func journalEntry(t *testing.T, m *testutil.MockJournalEntryRepository, i int) *accounting.JournalEntry {
	t.Helper()
	calls := 0
	for _, c := range m.Calls {
		if c.Method != "Create" {
			continue
		}
		if calls == i {
			return c.Arguments.Get(1).(*accounting.JournalEntry)
		}
		calls++
	}
	t.Fatalf("journal entry %d was not created", i)
	return nil
}

func lineFor(e *accounting.JournalEntry, account string) accounting.EntryLine {
	for _, l := range e.Lines {
		if l.Account == account {
			return l
		}
	}
	return accounting.EntryLine{}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clients.On("FindByIDForTenant", ctx, f.artisan.ID, f.clientID).Return(&client.Client{}, nil)
	f.invoices.On("Save", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	resp, err := f.svc.Create(ctx, f.artisan.ID, f.userID, InvoiceRequest{
		ClientID: f.clientID,
		Title:    "Dépannage",
		Lines: []pricing.LineInput{
			{Description: "Déplacement", Quantity: decimal.NewFromInt(1), UnitPriceHT: decimal.NewFromInt(45)},
			{Description: "Main d'oeuvre", Quantity: decimal.RequireFromString("1.5"), UnitPriceHT: decimal.NewFromInt(55)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceStatusDraft, resp.Status)
	assert.Empty(t, resp.Number)
	assert.Equal(t, "127.50", resp.Totals.TotalHT.StringFixed(2))
	assert.Equal(t, "153.00", resp.Totals.TotalTTC.StringFixed(2))
	assert.Equal(t, "153.00", resp.Outstanding.StringFixed(2))
	assert.Equal(t, []string{invoice.EventTypeInvoiceCreated}, f.events.EventTypes())
}

func TestService_Issue_NumbersAndPostsSalesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.draft(t)
	f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)
	f.artisans.On("NextDocumentNumber", ctx, f.artisan.ID, identity.DocumentKindInvoice, mock.AnythingOfType("int")).Return(12, nil)
	f.invoices.On("SaveWithLock", ctx, inv).Return(nil)
	f.journal.On("Create", ctx, mock.AnythingOfType("*accounting.JournalEntry")).Return(nil)

	resp, err := f.svc.Issue(ctx, f.artisan.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceStatusIssued, resp.Status)
	assert.Regexp(t, `^FAC-\d{4}-00012$`, resp.Number)
	require.NotNil(t, resp.IssueDate)
	require.NotNil(t, resp.DueDate)
	assert.Equal(t, resp.IssueDate.AddDate(0, 0, f.artisan.PaymentTermsDays), *resp.DueDate)
	assert.Equal(t, []string{invoice.EventTypeInvoiceIssued}, f.events.EventTypes())

	entry := journalEntry(t, f.journal, 0)
	assert.Equal(t, accounting.JournalSales, entry.Journal)
	assert.Equal(t, accounting.SourceInvoice, entry.SourceType)
	assert.Equal(t, "1200.00", lineFor(entry, accounting.AccountClients).Debit.StringFixed(2))
	assert.Equal(t, "1000.00", lineFor(entry, accounting.AccountSalesWorks).Credit.StringFixed(2))
	assert.Equal(t, "200.00", lineFor(entry, accounting.AccountVATCollect).Credit.StringFixed(2))
	assert.True(t, entry.IsBalanced())
}

func TestService_Issue_JournalFailureAbortsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.draft(t)
	f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)
	f.artisans.On("NextDocumentNumber", ctx, f.artisan.ID, identity.DocumentKindInvoice, mock.AnythingOfType("int")).Return(13, nil)
	f.invoices.On("SaveWithLock", ctx, inv).Return(nil)
	f.journal.On("Create", ctx, mock.Anything).Return(shared.NewDomainError("DB_ERROR", "down"))

	_, err := f.svc.Issue(ctx, f.artisan.ID, inv.ID)
	assertCode(t, err, "DB_ERROR")
	assert.Empty(t, f.events.EventTypes())
}

func TestService_RecordPayment(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.issued(t)
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)
		f.invoices.On("SaveWithLock", ctx, inv).Return(nil)
		f.journal.On("Create", ctx, mock.AnythingOfType("*accounting.JournalEntry")).Return(nil)

		resp, err := f.svc.RecordPayment(ctx, f.artisan.ID, inv.ID, PaymentRequest{
			Amount: decimal.NewFromInt(200), Method: "CHEQUE", Reference: "CHQ-881",
		})
		require.NoError(t, err)
		assert.Equal(t, invoice.InvoiceStatusPartiallyPaid, resp.Status)
		assert.Equal(t, "1000.00", resp.Outstanding.StringFixed(2))

		resp, err = f.svc.RecordPayment(ctx, f.artisan.ID, inv.ID, PaymentRequest{
			Amount: decimal.NewFromInt(1000), Method: "CASH",
		})
		require.NoError(t, err)
		assert.Equal(t, invoice.InvoiceStatusPaid, resp.Status)
		assert.True(t, resp.Outstanding.IsZero())
		assert.Len(t, resp.Payments, 2)

		assert.Equal(t, "200.00", lineFor(journalEntry(t, f.journal, 0), accounting.AccountBank).Debit.StringFixed(2))
		cash := journalEntry(t, f.journal, 1)
		assert.Equal(t, accounting.JournalBank, cash.Journal)
		assert.Equal(t, "1000.00", lineFor(cash, accounting.AccountCash).Debit.StringFixed(2))
		assert.Equal(t, "1000.00", lineFor(cash, accounting.AccountClients).Credit.StringFixed(2))
		assert.Equal(t, []string{invoice.EventTypePaymentReceived, invoice.EventTypePaymentReceived}, f.events.EventTypes())
	})

	t.Run("overpayment", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.issued(t)
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)

		_, err := f.svc.RecordPayment(ctx, f.artisan.ID, inv.ID, PaymentRequest{
			Amount: decimal.RequireFromString("1200.01"), Method: "BANK_TRANSFER",
		})
		assertCode(t, err, "EXCEEDS_OUTSTANDING")
		f.journal.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("on a draft", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.draft(t)
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)

		_, err := f.svc.RecordPayment(ctx, f.artisan.ID, inv.ID, PaymentRequest{
			Amount: decimal.NewFromInt(10), Method: "CARD",
		})
		assertCode(t, err, "INVALID_STATE")
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("posts reversal", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.issued(t)
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)
		f.invoices.On("SaveWithLock", ctx, inv).Return(nil)
		f.journal.On("Create", ctx, mock.AnythingOfType("*accounting.JournalEntry")).Return(nil)

		resp, err := f.svc.Cancel(ctx, f.artisan.ID, inv.ID, "Erreur de client")
		require.NoError(t, err)
		assert.Equal(t, invoice.InvoiceStatusCancelled, resp.Status)
		assert.Equal(t, "Erreur de client", resp.CancelledReason)

		entry := journalEntry(t, f.journal, 0)
		assert.Equal(t, "1200.00", lineFor(entry, accounting.AccountClients).Credit.StringFixed(2))
		assert.Equal(t, "1000.00", lineFor(entry, accounting.AccountSalesWorks).Debit.StringFixed(2))
		assert.Equal(t, []string{invoice.EventTypeInvoiceCancelled}, f.events.EventTypes())
	})

	t.Run("refused on overdue with payments", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.draft(t)
		require.NoError(t, inv.Issue("FAC-2026-00002", f.now.AddDate(0, 0, -45), 30))
		require.NoError(t, inv.MarkOverdue(f.now))
		_, err := inv.RecordPayment(decimal.NewFromInt(100), invoice.PaymentMethodCard, "", f.now)
		require.NoError(t, err)
		require.Equal(t, invoice.InvoiceStatusOverdue, inv.Status)
		inv.ClearDomainEvents()
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)

		_, err = f.svc.Cancel(ctx, f.artisan.ID, inv.ID, "Litige")
		assertCode(t, err, "HAS_PAYMENTS")
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.journal.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refused when partially paid", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		inv := f.issued(t)
		_, err := inv.RecordPayment(decimal.NewFromInt(100), invoice.PaymentMethodCard, "", f.now)
		require.NoError(t, err)
		require.Equal(t, invoice.InvoiceStatusPartiallyPaid, inv.Status)
		f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)

		_, err = f.svc.Cancel(ctx, f.artisan.ID, inv.ID, "Litige")
		assertCode(t, err, "INVALID_STATE")
	})
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.draft(t)
	issued := f.issued(t)
	f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, draft.ID).Return(draft, nil)
	f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, issued.ID).Return(issued, nil)
	f.invoices.On("DeleteForTenant", ctx, f.artisan.ID, draft.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.artisan.ID, draft.ID))
	assertCode(t, f.svc.Delete(ctx, f.artisan.ID, issued.ID), "INVALID_STATE")
	f.invoices.AssertNumberOfCalls(t, "DeleteForTenant", 1)
}

func TestService_MarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late := f.draft(t)
	require.NoError(t, late.Issue("FAC-2026-00002", f.now.AddDate(0, 0, -45), 30))
	late.ClearDomainEvents()
	onTime := f.issued(t)

	f.invoices.On("FindOverdueCandidates", ctx, f.now, overdueBatchSize).Return([]invoice.Invoice{*late, *onTime}, nil).Once()
	f.invoices.On("SaveWithLock", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	count, err := f.svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.invoices.AssertNumberOfCalls(t, "SaveWithLock", 1)
	assert.Equal(t, []string{invoice.EventTypeInvoiceOverdue}, f.events.EventTypes())
}

func TestService_RenderPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issued(t)
	f.invoices.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)
	f.invoices.On("SaveWithLock", ctx, inv).Return(nil)

	rendered, err := f.svc.RenderPDF(ctx, f.artisan.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, rendered.Key, inv.DocumentKey)
}
