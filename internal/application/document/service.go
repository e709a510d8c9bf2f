package document

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/supplier"
	"go.uber.org/zap"
)

// Rendered is a generated PDF stored in object storage
type Rendered struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"-"`
	FileName  string    `json:"file_name"`
}

// Link is a presigned download URL
type Link struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Key returns the storage key of a document: tenants/{tenant}/{kind}/{id}.pdf
func Key(tenantID uuid.UUID, kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("tenants/%s/%s/%s.pdf", tenantID, kind, id)
}

// LogoKey returns the storage key of an artisan logo
func LogoKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenants/%s/logo", tenantID)
}

// Service renders quotes, invoices and supplier orders to PDF and keeps them
// in object storage
type Service struct {
	artisanRepo  identity.ArtisanRepository
	clientRepo   client.ClientRepository
	supplierRepo supplier.SupplierRepository
	templater    HTMLTemplater
	renderer     PDFRenderer
	storage      ObjectStorage
	presignTTL   time.Duration
	logger       *zap.Logger
}

// NewService creates a new document service
func NewService(
	artisanRepo identity.ArtisanRepository,
	clientRepo client.ClientRepository,
	supplierRepo supplier.SupplierRepository,
	templater HTMLTemplater,
	renderer PDFRenderer,
	storage ObjectStorage,
	presignTTL time.Duration,
	logger *zap.Logger,
) *Service {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &Service{
		artisanRepo:  artisanRepo,
		clientRepo:   clientRepo,
		supplierRepo: supplierRepo,
		templater:    templater,
		renderer:     renderer,
		storage:      storage,
		presignTTL:   presignTTL,
		logger:       logger,
	}
}

// RenderQuote renders and stores the PDF of a quote. The caller records the
// returned key on the quote.
func (s *Service) RenderQuote(ctx context.Context, q *quote.Quote) (*Rendered, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, q.TenantID)
	if err != nil {
		return nil, err
	}
	c, err := s.clientRepo.FindByIDForTenant(ctx, q.TenantID, q.ClientID)
	if err != nil {
		return nil, err
	}
	view := QuoteView(artisan, c, q)
	return s.render(ctx, artisan, view, Key(q.TenantID, KindQuote, q.ID), fileName("devis", q.Number, q.ID))
}

// RenderInvoice renders and stores the PDF of an invoice
func (s *Service) RenderInvoice(ctx context.Context, inv *invoice.Invoice) (*Rendered, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, inv.TenantID)
	if err != nil {
		return nil, err
	}
	c, err := s.clientRepo.FindByIDForTenant(ctx, inv.TenantID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	view := InvoiceView(artisan, c, inv)
	return s.render(ctx, artisan, view, Key(inv.TenantID, KindInvoice, inv.ID), fileName("facture", inv.Number, inv.ID))
}

// RenderSupplierOrder renders and stores the PDF of a supplier order
func (s *Service) RenderSupplierOrder(ctx context.Context, o *supplier.SupplierOrder) (*Rendered, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, o.TenantID)
	if err != nil {
		return nil, err
	}
	sup, err := s.supplierRepo.FindByIDForTenant(ctx, o.TenantID, o.SupplierID)
	if err != nil {
		return nil, err
	}
	view := SupplierOrderView(artisan, sup, o)
	return s.render(ctx, artisan, view, Key(o.TenantID, KindSupplierOrder, o.ID), fileName("commande", o.Number, o.ID))
}

func (s *Service) render(ctx context.Context, artisan *identity.Artisan, view *View, key, name string) (*Rendered, error) {
	view.Logo = s.logoDataURL(ctx, artisan)

	html, err := s.templater.RenderHTML(view.Kind, view)
	if err != nil {
		return nil, fmt.Errorf("render %s html: %w", view.Kind, err)
	}
	pdf, err := s.renderer.RenderPDF(ctx, html, name)
	if err != nil {
		s.logger.Error("PDF rendering failed",
			zap.String("kind", string(view.Kind)),
			zap.String("tenant_id", artisan.ID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("PDF_RENDER_FAILED", "The document could not be generated")
	}
	if err := s.storage.Upload(ctx, key, pdf, ContentTypePDF); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.presignTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document rendered",
		zap.String("kind", string(view.Kind)),
		zap.String("key", key),
		zap.Int("bytes", len(pdf)),
	)
	return &Rendered{Key: key, URL: url, ExpiresAt: expiresAt, Data: pdf, FileName: name}, nil
}

// logoDataURL inlines the logo so the renderer needs no network access.
// A missing or unreadable logo only drops it from the page.
func (s *Service) logoDataURL(ctx context.Context, artisan *identity.Artisan) template.URL {
	if artisan.LogoKey == "" {
		return ""
	}
	data, err := s.storage.Download(ctx, artisan.LogoKey)
	if err != nil {
		s.logger.Warn("logo unavailable", zap.String("key", artisan.LogoKey), zap.Error(err))
		return ""
	}
	mime := http.DetectContentType(data)
	// #nosec G203 -- data URL built from our own stored bytes
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// Link presigns a download URL for an already stored document
func (s *Service) Link(ctx context.Context, key string) (*Link, error) {
	if key == "" {
		return nil, shared.NewDomainError("DOCUMENT_NOT_RENDERED", "The document has not been generated yet")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &Link{URL: url, ExpiresAt: expiresAt}, nil
}

// UploadLogo stores an artisan logo and returns its key
func (s *Service) UploadLogo(ctx context.Context, tenantID uuid.UUID, data []byte) (string, error) {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", shared.NewDomainError("INVALID_LOGO", "Logo must be a PNG, JPEG, GIF or WebP image")
	}
	key := LogoKey(tenantID)
	if err := s.storage.Upload(ctx, key, data, mime); err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}
	return key, nil
}

func fileName(prefix, number string, id uuid.UUID) string {
	if number == "" {
		return fmt.Sprintf("%s-brouillon-%s.pdf", prefix, id.String()[:8])
	}
	return fmt.Sprintf("%s-%s.pdf", prefix, number)
}
