// Package portal serves the client-facing space. A visit is authenticated by
// the client's portal token and only ever reaches that client's records;
// anything else is reported as not found.
package portal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned for unknown, empty or revoked portal tokens
var ErrInvalidToken = shared.NewDomainError("INVALID_PORTAL_TOKEN", "Invalid or revoked portal link")

// QuoteActions are the quote operations a client may trigger
type QuoteActions interface {
	Accept(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*quoteapp.QuoteResponse, error)
	RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error)
}

// InvoiceActions are the invoice operations a client may trigger
type InvoiceActions interface {
	RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error)
}

// Reviews records client reviews and exposes the artisan's rating
type Reviews interface {
	Submit(ctx context.Context, tenantID, clientID uuid.UUID, req reviewapp.SubmitRequest) (*reviewapp.ReviewResponse, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (review.Stats, error)
}

// DocumentLinker presigns stored documents
type DocumentLinker interface {
	Link(ctx context.Context, key string) (*documentapp.Link, error)
}

// Service implements the client portal
type Service struct {
	clientRepo       client.ClientRepository
	artisanRepo      identity.ArtisanRepository
	quoteRepo        quote.QuoteRepository
	invoiceRepo      invoice.InvoiceRepository
	interventionRepo intervention.InterventionRepository
	quotes           QuoteActions
	invoices         InvoiceActions
	reviews          Reviews
	documents        DocumentLinker
	logger           *zap.Logger
}

// NewService creates a new portal service
func NewService(
	clientRepo client.ClientRepository,
	artisanRepo identity.ArtisanRepository,
	quoteRepo quote.QuoteRepository,
	invoiceRepo invoice.InvoiceRepository,
	interventionRepo intervention.InterventionRepository,
	quotes QuoteActions,
	invoices InvoiceActions,
	reviews Reviews,
	documents DocumentLinker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		clientRepo:       clientRepo,
		artisanRepo:      artisanRepo,
		quoteRepo:        quoteRepo,
		invoiceRepo:      invoiceRepo,
		interventionRepo: interventionRepo,
		quotes:           quotes,
		invoices:         invoices,
		reviews:          reviews,
		documents:        documents,
		logger:           logger,
	}
}

// Authenticate resolves a portal token to a session. Unknown and revoked
// tokens are rejected alike.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	c, err := s.clientRepo.FindByPortalToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !c.CanUsePortal(token) {
		return nil, ErrInvalidToken
	}
	a, err := s.artisanRepo.FindByID(ctx, c.TenantID)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, shared.ErrTenantSuspended
	}
	return &Session{Client: c, Artisan: a}, nil
}

// Overview returns the client and artisan profiles
func (s *Service) Overview(ctx context.Context, sess *Session) (*Overview, error) {
	stats, err := s.reviews.Stats(ctx, sess.TenantID())
	if err != nil {
		return nil, err
	}
	return toOverview(sess, stats), nil
}

// ListQuotes returns the client's quotes, drafts excluded
func (s *Service) ListQuotes(ctx context.Context, sess *Session, req PageRequest) (*shared.Paginated[quoteapp.QuoteResponse], error) {
	filter := quote.QuoteFilter{
		Filter:       pageFilter(req),
		ClientID:     &sess.Client.ID,
		ExcludeDraft: true,
	}
	quotes, total, err := s.quoteRepo.FindAllForTenant(ctx, sess.TenantID(), filter)
	if err != nil {
		return nil, err
	}
	items := make([]quoteapp.QuoteResponse, len(quotes))
	for i := range quotes {
		items[i] = quoteapp.ToQuoteResponse(&quotes[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetQuote returns one of the client's quotes
func (s *Service) GetQuote(ctx context.Context, sess *Session, id uuid.UUID) (*quoteapp.QuoteResponse, error) {
	q, err := s.ownQuote(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	response := quoteapp.ToQuoteResponse(q)
	return &response, nil
}

// AcceptQuote records the client's agreement
func (s *Service) AcceptQuote(ctx context.Context, sess *Session, id uuid.UUID) (*quoteapp.QuoteResponse, error) {
	if _, err := s.ownQuote(ctx, sess, id); err != nil {
		return nil, err
	}
	resp, err := s.quotes.Accept(ctx, sess.TenantID(), id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Quote accepted from portal",
		zap.String("tenant_id", sess.TenantID().String()),
		zap.String("client_id", sess.Client.ID.String()),
		zap.String("quote_id", id.String()))
	return resp, nil
}

// RejectQuote records the client's refusal
func (s *Service) RejectQuote(ctx context.Context, sess *Session, id uuid.UUID, req RejectRequest) (*quoteapp.QuoteResponse, error) {
	if _, err := s.ownQuote(ctx, sess, id); err != nil {
		return nil, err
	}
	return s.quotes.Reject(ctx, sess.TenantID(), id, req.Reason)
}

// ListInvoices returns the client's issued invoices
func (s *Service) ListInvoices(ctx context.Context, sess *Session, req PageRequest) (*shared.Paginated[invoiceapp.InvoiceResponse], error) {
	filter := invoice.InvoiceFilter{
		Filter:       pageFilter(req),
		ClientID:     &sess.Client.ID,
		ExcludeDraft: true,
	}
	invoices, total, err := s.invoiceRepo.FindAllForTenant(ctx, sess.TenantID(), filter)
	if err != nil {
		return nil, err
	}
	items := make([]invoiceapp.InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = invoiceapp.ToInvoiceResponse(&invoices[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetInvoice returns one of the client's invoices
func (s *Service) GetInvoice(ctx context.Context, sess *Session, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	inv, err := s.ownInvoice(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	response := invoiceapp.ToInvoiceResponse(inv)
	return &response, nil
}

// DownloadDocument returns a presigned link to a quote or invoice PDF,
// rendering it first when it was never generated
func (s *Service) DownloadDocument(ctx context.Context, sess *Session, kind documentapp.Kind, id uuid.UUID) (*documentapp.Link, error) {
	var (
		key    string
		render func() (*documentapp.Rendered, error)
	)

	switch kind {
	case documentapp.KindQuote:
		q, err := s.ownQuote(ctx, sess, id)
		if err != nil {
			return nil, err
		}
		key = q.DocumentKey
		render = func() (*documentapp.Rendered, error) { return s.quotes.RenderPDF(ctx, sess.TenantID(), id) }
	case documentapp.KindInvoice:
		inv, err := s.ownInvoice(ctx, sess, id)
		if err != nil {
			return nil, err
		}
		key = inv.DocumentKey
		render = func() (*documentapp.Rendered, error) { return s.invoices.RenderPDF(ctx, sess.TenantID(), id) }
	default:
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Only quotes and invoices can be downloaded")
	}

	if key != "" {
		return s.documents.Link(ctx, key)
	}
	doc, err := render()
	if err != nil {
		return nil, err
	}
	return &documentapp.Link{URL: doc.URL, ExpiresAt: doc.ExpiresAt}, nil
}

// ListInterventions returns the client's appointments, most recent first
func (s *Service) ListInterventions(ctx context.Context, sess *Session, req PageRequest) (*shared.Paginated[interventionapp.InterventionResponse], error) {
	filter := intervention.InterventionFilter{
		Filter:   pageFilter(req),
		ClientID: &sess.Client.ID,
	}
	filter.OrderBy = "scheduled_start"
	items, total, err := s.interventionRepo.FindAllForTenant(ctx, sess.TenantID(), filter)
	if err != nil {
		return nil, err
	}
	out := make([]interventionapp.InterventionResponse, len(items))
	for i := range items {
		out[i] = interventionapp.ToInterventionResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SubmitReview records the client's review
func (s *Service) SubmitReview(ctx context.Context, sess *Session, req reviewapp.SubmitRequest) (*reviewapp.ReviewResponse, error) {
	return s.reviews.Submit(ctx, sess.TenantID(), sess.Client.ID, req)
}

func (s *Service) ownQuote(ctx context.Context, sess *Session, id uuid.UUID) (*quote.Quote, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, sess.TenantID(), id)
	if err != nil {
		return nil, err
	}
	if q.ClientID != sess.Client.ID || q.Status == quote.QuoteStatusDraft {
		return nil, shared.ErrNotFound
	}
	return q, nil
}

func (s *Service) ownInvoice(ctx context.Context, sess *Session, id uuid.UUID) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, sess.TenantID(), id)
	if err != nil {
		return nil, err
	}
	if inv.ClientID != sess.Client.ID || inv.Status == invoice.InvoiceStatusDraft {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func pageFilter(req PageRequest) shared.Filter {
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()
}
