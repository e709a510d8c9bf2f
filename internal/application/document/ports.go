package document

import (
	"context"
	"time"
)

// Kind identifies a printable document type
type Kind string

const (
	KindQuote         Kind = "quote"
	KindInvoice       Kind = "invoice"
	KindSupplierOrder Kind = "supplier_order"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindQuote || k == KindInvoice || k == KindSupplierOrder
}

// ContentTypePDF is the MIME type of rendered documents
const ContentTypePDF = "application/pdf"

// ObjectStorage stores rendered documents and logos
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// HTMLTemplater renders the HTML of a document kind from its view
type HTMLTemplater interface {
	RenderHTML(kind Kind, view *View) (string, error)
}

// PDFRenderer turns a complete HTML page into a PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html, title string) ([]byte, error)
}
