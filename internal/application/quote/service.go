package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	"github.com/monartisan/backend/internal/application/numbering"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

const expireBatchSize = 200

// Renderer produces the PDF of a quote
type Renderer interface {
	RenderQuote(ctx context.Context, q *quote.Quote) (*documentapp.Rendered, error)
}

// Service handles quote operations
type Service struct {
	quoteRepo   quote.QuoteRepository
	clientRepo  client.ClientRepository
	invoiceRepo invoice.InvoiceRepository
	artisanRepo identity.ArtisanRepository
	sequencer   *numbering.Sequencer
	txManager   shared.TransactionManager
	renderer    Renderer
	eventBus    shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new quote service
func NewService(
	quoteRepo quote.QuoteRepository,
	clientRepo client.ClientRepository,
	invoiceRepo invoice.InvoiceRepository,
	artisanRepo identity.ArtisanRepository,
	sequencer *numbering.Sequencer,
	txManager shared.TransactionManager,
	renderer Renderer,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		artisanRepo: artisanRepo,
		sequencer:   sequencer,
		txManager:   txManager,
		renderer:    renderer,
		eventBus:    eventBus,
		logger:      logger,
		now:         time.Now,
	}
}

// Create creates a draft quote for a client of the tenant
func (s *Service) Create(ctx context.Context, tenantID, userID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID); err != nil {
		return nil, err
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	q, err := quote.NewQuote(tenantID, req.ClientID, req.Title, lines, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	q.Notes = req.Notes
	q.SetCreatedBy(userID)

	if err := s.quoteRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	s.publish(ctx, q)

	s.logger.Info("Quote created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quote_id", q.ID.String()))
	response := ToQuoteResponse(q)
	return &response, nil
}

// Get returns a quote of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

// List returns a page of quotes, optionally by status or client
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[QuoteResponse], error) {
	domainFilter := quote.QuoteFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   valueobject.SearchKey(filter.Search),
		}.Normalize(),
		ClientID: filter.ClientID,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if filter.Status != "" {
		status := quote.QuoteStatus(filter.Status)
		domainFilter.Status = &status
	}

	quotes, total, err := s.quoteRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		items[i] = ToQuoteResponse(&quotes[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update replaces the content of a draft quote
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != q.ClientID {
		if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID); err != nil {
			return nil, err
		}
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	if err := q.Update(req.Title, lines, req.ValidUntil, req.Notes); err != nil {
		return nil, err
	}
	q.ClientID = req.ClientID

	if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

// Send numbers the quote on its first sending and marks it SENT
func (s *Service) Send(ctx context.Context, tenantID, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransitionTo(quote.QuoteStatusSent) {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot send quote in "+q.Status.String()+" status")
	}

	err = s.sequencer.WithNumber(ctx, tenantID, identity.DocumentKindQuote, func(ctx context.Context, a numbering.Assigned) error {
		if err := q.Send(a.Number); err != nil {
			return err
		}
		return s.quoteRepo.SaveWithLock(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q)

	s.logger.Info("Quote sent",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quote_id", q.ID.String()),
		zap.String("number", q.Number))
	response := ToQuoteResponse(q)
	return &response, nil
}

// Accept records the client's agreement
func (s *Service) Accept(ctx context.Context, tenantID, id uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, tenantID, id, func(q *quote.Quote) error { return q.Accept() })
}

// Reject records the client's refusal
func (s *Service) Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*QuoteResponse, error) {
	return s.transition(ctx, tenantID, id, func(q *quote.Quote) error { return q.Reject(reason) })
}

// Cancel withdraws a draft or sent quote
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, tenantID, id, func(q *quote.Quote) error { return q.Cancel() })
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(q *quote.Quote) error) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	previous := q.Status
	if err := apply(q); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	s.publish(ctx, q)

	s.logger.Info("Quote status changed",
		zap.String("quote_id", q.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", q.Status.String()))
	response := ToQuoteResponse(q)
	return &response, nil
}

// ConvertToInvoice creates a draft invoice from an accepted quote and marks
// the quote INVOICED, both in one transaction
func (s *Service) ConvertToInvoice(ctx context.Context, tenantID, userID, id uuid.UUID) (*ConversionResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if q.Status != quote.QuoteStatusAccepted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only accepted quotes can be invoiced")
	}

	inv, err := invoice.NewInvoiceFromQuote(tenantID, q.ClientID, q.ID, q.Title, q.Lines)
	if err != nil {
		return nil, err
	}
	inv.Notes = q.Notes
	inv.SetCreatedBy(userID)
	if err := q.MarkInvoiced(inv.ID); err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		return s.quoteRepo.SaveWithLock(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, q)
	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, inv.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish invoice events", zap.Error(err))
		}
	}
	inv.ClearDomainEvents()

	s.logger.Info("Quote converted to invoice",
		zap.String("quote_id", q.ID.String()),
		zap.String("invoice_id", inv.ID.String()))
	return &ConversionResponse{Quote: ToQuoteResponse(q), InvoiceID: inv.ID}, nil
}

// Duplicate copies a quote into a new draft
func (s *Service) Duplicate(ctx context.Context, tenantID, userID, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dup, err := q.Duplicate()
	if err != nil {
		return nil, err
	}
	dup.SetCreatedBy(userID)
	if err := s.quoteRepo.Save(ctx, dup); err != nil {
		return nil, err
	}
	s.publish(ctx, dup)
	response := ToQuoteResponse(dup)
	return &response, nil
}

// RenderPDF renders the quote, stores it and records the document key
func (s *Service) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	q, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rendered, err := s.renderer.RenderQuote(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.DocumentKey != rendered.Key {
		q.SetDocument(rendered.Key)
		if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
			return nil, err
		}
	}
	return rendered, nil
}

// ExpireOverdue moves sent quotes past their validity date to EXPIRED and
// returns how many were expired
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.now()
	expired := 0
	for {
		batch, err := s.quoteRepo.FindExpirable(ctx, now, expireBatchSize)
		if err != nil {
			return expired, err
		}
		progressed := 0
		for i := range batch {
			q := &batch[i]
			if err := q.Expire(now); err != nil {
				continue
			}
			if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
				s.logger.Warn("Failed to expire quote",
					zap.String("quote_id", q.ID.String()),
					zap.Error(err))
				continue
			}
			progressed++
		}
		expired += progressed
		if len(batch) < expireBatchSize || progressed == 0 {
			return expired, nil
		}
	}
}

func (s *Service) buildLines(ctx context.Context, tenantID uuid.UUID, inputs []pricing.LineInput) (pricing.Lines, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return pricing.BuildLines(inputs, artisan.DefaultVATRate)
}

func (s *Service) publish(ctx context.Context, q *quote.Quote) {
	events := q.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish quote events", zap.Error(err))
		}
	}
	q.ClearDomainEvents()
}
