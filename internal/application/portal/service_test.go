package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuotes struct{ mock.Mock }

func (m *mockQuotes) Accept(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quoteapp.QuoteResponse), args.Error(1)
}

func (m *mockQuotes) Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*quoteapp.QuoteResponse, error) {
	args := m.Called(ctx, tenantID, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quoteapp.QuoteResponse), args.Error(1)
}

func (m *mockQuotes) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.Rendered), args.Error(1)
}

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.Rendered), args.Error(1)
}

type mockReviews struct{ mock.Mock }

func (m *mockReviews) Submit(ctx context.Context, tenantID, clientID uuid.UUID, req reviewapp.SubmitRequest) (*reviewapp.ReviewResponse, error) {
	args := m.Called(ctx, tenantID, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewapp.ReviewResponse), args.Error(1)
}

func (m *mockReviews) Stats(ctx context.Context, tenantID uuid.UUID) (review.Stats, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(review.Stats), args.Error(1)
}

type stubLinker struct{ keys []string }

func (l *stubLinker) Link(_ context.Context, key string) (*documentapp.Link, error) {
	l.keys = append(l.keys, key)
	return &documentapp.Link{URL: "https://s3.example/" + key, ExpiresAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}, nil
}

type fixture struct {
	clients       *testutil.MockClientRepository
	artisans      *testutil.MockArtisanRepository
	quoteRepo     *testutil.MockQuoteRepository
	invoiceRepo   *testutil.MockInvoiceRepository
	interventions *testutil.MockInterventionRepository
	quotes        *mockQuotes
	invoices      *mockInvoices
	reviews       *mockReviews
	linker        *stubLinker
	svc           *Service
	artisan       *identity.Artisan
	client        *client.Client
	token         string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	artisan, err := identity.NewArtisan("Électricité Moreau", "contact@moreau-elec.fr")
	require.NoError(t, err)
	c, err := client.NewClient(artisan.ID, client.Details{
		Type: client.ClientTypeIndividual, FirstName: "Paul", LastName: "Girard", Email: "paul.girard@example.fr",
	})
	require.NoError(t, err)
	token, err := c.EnablePortal()
	require.NoError(t, err)

	f := &fixture{
		clients:       new(testutil.MockClientRepository),
		artisans:      new(testutil.MockArtisanRepository),
		quoteRepo:     new(testutil.MockQuoteRepository),
		invoiceRepo:   new(testutil.MockInvoiceRepository),
		interventions: new(testutil.MockInterventionRepository),
		quotes:        new(mockQuotes),
		invoices:      new(mockInvoices),
		reviews:       new(mockReviews),
		linker:        &stubLinker{},
		artisan:       artisan,
		client:        c,
		token:         token,
	}
	f.svc = NewService(f.clients, f.artisans, f.quoteRepo, f.invoiceRepo, f.interventions,
		f.quotes, f.invoices, f.reviews, f.linker, nil)
	return f
}

func (f *fixture) session() *Session {
	return &Session{Client: f.client, Artisan: f.artisan}
}

func (f *fixture) quote(t *testing.T, clientID uuid.UUID, sent bool) *quote.Quote {
	t.Helper()
	line, err := pricing.NewLineItem("Mise aux normes tableau", decimal.NewFromInt(1), decimal.NewFromInt(1200), pricing.VATRateIntermediate, decimal.Zero, "forfait")
	require.NoError(t, err)
	q, err := quote.NewQuote(f.artisan.ID, clientID, "Tableau électrique", []pricing.LineItem{line}, nil)
	require.NoError(t, err)
	if sent {
		require.NoError(t, q.Send("DEV-2026-00021"))
	}
	return q
}

func (f *fixture) invoice(t *testing.T, issued bool) *invoice.Invoice {
	t.Helper()
	line, err := pricing.NewLineItem("Dépannage", decimal.NewFromInt(2), decimal.NewFromInt(65), pricing.VATRateStandard, decimal.Zero, "h")
	require.NoError(t, err)
	inv, err := invoice.NewInvoice(f.artisan.ID, f.client.ID, "Dépannage", []pricing.LineItem{line})
	require.NoError(t, err)
	if issued {
		require.NoError(t, inv.Issue("FAC-2026-00009", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 30))
	}
	return inv
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t)
		f.clients.On("FindByPortalToken", ctx, f.token).Return(f.client, nil)
		f.artisans.On("FindByID", ctx, f.artisan.ID).Return(f.artisan, nil)

		sess, err := f.svc.Authenticate(ctx, f.token)
		require.NoError(t, err)
		assert.Equal(t, f.client.ID, sess.Client.ID)
		assert.Equal(t, f.artisan.ID, sess.TenantID())
	})

	t.Run("empty token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
		f.clients.AssertNotCalled(t, "FindByPortalToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		f.clients.On("FindByPortalToken", ctx, "nope").Return(nil, shared.ErrNotFound)
		_, err := f.svc.Authenticate(ctx, "nope")
		assertCode(t, err, "INVALID_PORTAL_TOKEN")
	})

	t.Run("revoked portal", func(t *testing.T) {
		f := newFixture(t)
		f.client.DisablePortal()
		f.clients.On("FindByPortalToken", ctx, f.token).Return(f.client, nil)
		_, err := f.svc.Authenticate(ctx, f.token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("suspended artisan", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.artisan.Suspend())
		f.clients.On("FindByPortalToken", ctx, f.token).Return(f.client, nil)
		f.artisans.On("FindByID", ctx, f.artisan.ID).Return(f.artisan, nil)
		_, err := f.svc.Authenticate(ctx, f.token)
		assertCode(t, err, "TENANT_SUSPENDED")
	})
}

func TestService_Overview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stats := review.Stats{Count: 12, Average: 4.6}
	f.reviews.On("Stats", ctx, f.artisan.ID).Return(stats, nil)

	out, err := f.svc.Overview(ctx, f.session())
	require.NoError(t, err)
	assert.Equal(t, "Paul Girard", out.Client.DisplayName)
	assert.Equal(t, "Électricité Moreau", out.Artisan.Name)
	assert.Equal(t, int64(12), out.Rating.Count)
}

func TestService_ListQuotes_ScopedToClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.quote(t, f.client.ID, true)
	f.quoteRepo.On("FindAllForTenant", ctx, f.artisan.ID, mock.MatchedBy(func(filter quote.QuoteFilter) bool {
		return filter.ClientID != nil && *filter.ClientID == f.client.ID && filter.ExcludeDraft
	})).Return([]quote.Quote{*q}, int64(1), nil)

	page, err := f.svc.ListQuotes(ctx, f.session(), PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "DEV-2026-00021", page.Items[0].Number)
	assert.Equal(t, int64(1), page.Total)
}

func TestService_GetQuote_HidesOthers(t *testing.T) {
	ctx := context.Background()

	t.Run("another client's quote", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, uuid.New(), true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		_, err := f.svc.GetQuote(ctx, f.session(), q.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("draft quote", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, false)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		_, err := f.svc.GetQuote(ctx, f.session(), q.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("own sent quote", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		resp, err := f.svc.GetQuote(ctx, f.session(), q.ID)
		require.NoError(t, err)
		assert.Equal(t, q.ID, resp.ID)
	})
}

func TestService_AcceptAndRejectQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("accept delegates to quotes", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		f.quotes.On("Accept", ctx, f.artisan.ID, q.ID).Return(&quoteapp.QuoteResponse{ID: q.ID, Status: quote.QuoteStatusAccepted}, nil)

		resp, err := f.svc.AcceptQuote(ctx, f.session(), q.ID)
		require.NoError(t, err)
		assert.Equal(t, quote.QuoteStatusAccepted, resp.Status)
	})

	t.Run("reject passes the reason", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		f.quotes.On("Reject", ctx, f.artisan.ID, q.ID, "Trop cher").Return(&quoteapp.QuoteResponse{ID: q.ID, Status: quote.QuoteStatusRejected}, nil)

		resp, err := f.svc.RejectQuote(ctx, f.session(), q.ID, RejectRequest{Reason: "Trop cher"})
		require.NoError(t, err)
		assert.Equal(t, quote.QuoteStatusRejected, resp.Status)
	})

	t.Run("cannot accept another client's quote", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, uuid.New(), true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)

		_, err := f.svc.AcceptQuote(ctx, f.session(), q.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.quotes.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_GetInvoice_HidesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.invoice(t, false)
	issued := f.invoice(t, true)
	f.invoiceRepo.On("FindByIDForTenant", ctx, f.artisan.ID, draft.ID).Return(draft, nil)
	f.invoiceRepo.On("FindByIDForTenant", ctx, f.artisan.ID, issued.ID).Return(issued, nil)

	_, err := f.svc.GetInvoice(ctx, f.session(), draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.svc.GetInvoice(ctx, f.session(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-2026-00009", resp.Number)
}

func TestService_DownloadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("stored document is presigned", func(t *testing.T) {
		f := newFixture(t)
		inv := f.invoice(t, true)
		key := documentapp.Key(f.artisan.ID, documentapp.KindInvoice, inv.ID)
		inv.SetDocument(key)
		f.invoiceRepo.On("FindByIDForTenant", ctx, f.artisan.ID, inv.ID).Return(inv, nil)

		link, err := f.svc.DownloadDocument(ctx, f.session(), documentapp.KindInvoice, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example/"+key, link.URL)
		assert.Equal(t, []string{key}, f.linker.keys)
		f.invoices.AssertNotCalled(t, "RenderPDF", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing document is rendered", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		f.quotes.On("RenderPDF", ctx, f.artisan.ID, q.ID).Return(&documentapp.Rendered{URL: "https://s3.example/fresh.pdf"}, nil)

		link, err := f.svc.DownloadDocument(ctx, f.session(), documentapp.KindQuote, q.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example/fresh.pdf", link.URL)
		assert.Empty(t, f.linker.keys)
	})

	t.Run("render failure", func(t *testing.T) {
		f := newFixture(t)
		q := f.quote(t, f.client.ID, true)
		f.quoteRepo.On("FindByIDForTenant", ctx, f.artisan.ID, q.ID).Return(q, nil)
		f.quotes.On("RenderPDF", ctx, f.artisan.ID, q.ID).Return(nil, errors.New("storage unavailable"))

		_, err := f.svc.DownloadDocument(ctx, f.session(), documentapp.KindQuote, q.ID)
		assert.EqualError(t, err, "storage unavailable")
	})

	t.Run("supplier orders are not exposed", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.DownloadDocument(ctx, f.session(), documentapp.KindSupplierOrder, uuid.New())
		assertCode(t, err, "INVALID_DOCUMENT_KIND")
	})
}

func TestService_SubmitReview_UsesSessionClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := reviewapp.SubmitRequest{Rating: 5, Comment: "Travail soigné"}
	f.reviews.On("Submit", ctx, f.artisan.ID, f.client.ID, req).Return(&reviewapp.ReviewResponse{Rating: 5}, nil)

	resp, err := f.svc.SubmitReview(ctx, f.session(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)
}
