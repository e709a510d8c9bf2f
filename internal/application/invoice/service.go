package invoice

import (
	"context"
	"strings"
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
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

const overdueBatchSize = 200

// Renderer produces the PDF of an invoice
type Renderer interface {
	RenderInvoice(ctx context.Context, inv *invoice.Invoice) (*documentapp.Rendered, error)
}

// Service handles invoices, payments and their journal postings
type Service struct {
	invoiceRepo invoice.InvoiceRepository
	clientRepo  client.ClientRepository
	artisanRepo identity.ArtisanRepository
	journalRepo accounting.JournalEntryRepository
	sequencer   *numbering.Sequencer
	txManager   shared.TransactionManager
	renderer    Renderer
	eventBus    shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new invoice service
func NewService(
	invoiceRepo invoice.InvoiceRepository,
	clientRepo client.ClientRepository,
	artisanRepo identity.ArtisanRepository,
	journalRepo accounting.JournalEntryRepository,
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
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		artisanRepo: artisanRepo,
		journalRepo: journalRepo,
		sequencer:   sequencer,
		txManager:   txManager,
		renderer:    renderer,
		eventBus:    eventBus,
		logger:      logger,
		now:         time.Now,
	}
}

// Create creates a draft invoice
func (s *Service) Create(ctx context.Context, tenantID, userID uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID); err != nil {
		return nil, err
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	inv, err := invoice.NewInvoice(tenantID, req.ClientID, req.Title, lines)
	if err != nil {
		return nil, err
	}
	inv.Notes = strings.TrimSpace(req.Notes)
	inv.SetCreatedBy(userID)

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()))
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Get returns an invoice of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List returns a page of invoices
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := invoice.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   valueobject.SearchKey(filter.Search),
		}.Normalize(),
		ClientID: filter.ClientID,
		From:     filter.From,
		To:       filter.To,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if filter.Status != "" {
		status := invoice.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}

	invoices, total, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update replaces the content of a draft invoice
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != inv.ClientID {
		if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID); err != nil {
			return nil, err
		}
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	if err := inv.Update(req.Title, lines, req.Notes); err != nil {
		return nil, err
	}
	inv.ClientID = req.ClientID

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete removes a draft invoice
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !inv.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted")
	}
	if err := s.invoiceRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", id.String()))
	return nil
}

// Issue numbers the invoice, sets its due date from the artisan's payment
// terms and posts the sales entry, all in one transaction
func (s *Service) Issue(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(invoice.InvoiceStatusIssued) {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot issue invoice in "+inv.Status.String()+" status")
	}

	err = s.sequencer.WithNumber(ctx, tenantID, identity.DocumentKindInvoice, func(ctx context.Context, a numbering.Assigned) error {
		if err := inv.Issue(a.Number, a.Date, a.Artisan.PaymentTermsDays); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.SalesEntry(tenantID, inv.ID, inv.Number, a.Date,
			inv.Totals.TotalHT, inv.Totals.TotalVAT, inv.Totals.TotalTTC)
		if err != nil {
			return err
		}
		return s.journalRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Invoice issued",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("total_ttc", inv.Totals.TotalTTC.StringFixed(2)))
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// RecordPayment applies a payment and posts it to the bank or cash journal
func (s *Service) RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req PaymentRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	method := invoice.PaymentMethod(strings.ToUpper(req.Method))

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		payment, err := inv.RecordPayment(req.Amount, method, req.Reference, paidAt)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.PaymentEntry(tenantID, inv.ID, inv.Number, paidAt, payment.Amount, method == invoice.PaymentMethodCash)
		if err != nil {
			return err
		}
		return s.journalRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("method", string(method)),
		zap.String("status", inv.Status.String()))
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Cancel voids an unpaid invoice and posts the reversing sales entry
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := inv.Cancel(reason); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.SalesReversalEntry(tenantID, inv.ID, inv.Number, s.now(),
			inv.Totals.TotalHT, inv.Totals.TotalVAT, inv.Totals.TotalTTC)
		if err != nil {
			return err
		}
		return s.journalRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Invoice cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number))
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// MarkOverdue flags every unpaid invoice past its due date and returns how
// many were flagged
func (s *Service) MarkOverdue(ctx context.Context) (int, error) {
	now := s.now()
	marked := 0
	for {
		batch, err := s.invoiceRepo.FindOverdueCandidates(ctx, now, overdueBatchSize)
		if err != nil {
			return marked, err
		}
		progressed := 0
		for i := range batch {
			inv := &batch[i]
			if err := inv.MarkOverdue(now); err != nil {
				continue
			}
			if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
				s.logger.Warn("Failed to mark invoice overdue",
					zap.String("invoice_id", inv.ID.String()),
					zap.Error(err))
				continue
			}
			s.publish(ctx, inv)
			progressed++
		}
		marked += progressed
		if len(batch) < overdueBatchSize || progressed == 0 {
			return marked, nil
		}
	}
}

// RenderPDF renders the invoice, stores it and records the document key
func (s *Service) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rendered, err := s.renderer.RenderInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	if inv.DocumentKey != rendered.Key {
		inv.SetDocument(rendered.Key)
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return nil, err
		}
	}
	return rendered, nil
}

func (s *Service) buildLines(ctx context.Context, tenantID uuid.UUID, inputs []pricing.LineInput) (pricing.Lines, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return pricing.BuildLines(inputs, artisan.DefaultVATRate)
}

func (s *Service) publish(ctx context.Context, inv *invoice.Invoice) {
	events := inv.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish invoice events", zap.Error(err))
		}
	}
	inv.ClearDomainEvents()
}
