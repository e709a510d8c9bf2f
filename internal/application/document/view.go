package document

import (
	"fmt"
	"html/template"
	"time"

	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// Party is the issuer or the recipient block of a document
type Party struct {
	Name      string
	LegalName string
	Address   []string
	Email     string
	Phone     string
	SIRET     string
	VATNumber string
}

// Line is a printable line item
type Line struct {
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPriceHT     decimal.Decimal
	VATRate         decimal.Decimal
	DiscountPercent decimal.Decimal
	TotalHT         decimal.Decimal
}

// View is everything a document template needs
type View struct {
	Kind        Kind
	Heading     string
	Number      string
	Subject     string
	IssueDate   time.Time
	DueDate     *time.Time
	ValidUntil  *time.Time
	ExpectedAt  *time.Time
	Issuer      Party
	Recipient   Party
	Logo        template.URL
	Lines       []Line
	Totals      pricing.Totals
	PaidAmount  decimal.Decimal
	Outstanding decimal.Decimal
	Notes       string
	IBAN        string
	Mentions    []string
}

// Draft reports whether the document has no legal number yet
func (v *View) Draft() bool {
	return v.Number == ""
}

// Late payment mentions required on French B2B invoices
const (
	mentionLatePenalty  = "En cas de retard de paiement, une pénalité égale à trois fois le taux d'intérêt légal sera exigible."
	mentionRecoveryFee  = "Indemnité forfaitaire pour frais de recouvrement en cas de retard de paiement : 40 €."
	mentionNoDiscount   = "Pas d'escompte pour paiement anticipé."
	mentionVATExemption = "TVA non applicable, art. 293 B du CGI."
	mentionQuoteAgree   = "Devis reçu avant l'exécution des travaux. Bon pour accord, date et signature :"
)

func issuerParty(a *identity.Artisan) Party {
	return Party{
		Name:      a.Name,
		LegalName: a.LegalName,
		Address:   a.Address.Lines(),
		Email:     a.Email,
		Phone:     valueobject.FormatPhoneNational(a.Phone),
		SIRET:     a.SIRET,
		VATNumber: a.VATNumber,
	}
}

func clientParty(c *client.Client) Party {
	return Party{
		Name:    c.DisplayName(),
		Address: c.Address.Lines(),
		Email:   c.Email,
		Phone:   valueobject.FormatPhoneNational(c.Phone),
	}
}

func supplierParty(s *supplier.Supplier) Party {
	name := s.Name
	if s.ContactName != "" {
		name = fmt.Sprintf("%s (%s)", s.Name, s.ContactName)
	}
	return Party{
		Name:    name,
		Address: s.Address.Lines(),
		Email:   s.Email,
		Phone:   valueobject.FormatPhoneNational(s.Phone),
	}
}

func toLines(lines pricing.Lines) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{
			Description:     l.Description,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			UnitPriceHT:     l.UnitPriceHT,
			VATRate:         l.VATRate,
			DiscountPercent: l.DiscountPercent,
			TotalHT:         l.TotalHT(),
		})
	}
	return out
}

// QuoteView builds the view of a quote
func QuoteView(a *identity.Artisan, c *client.Client, q *quote.Quote) *View {
	issued := q.CreatedAt
	if q.SentAt != nil {
		issued = *q.SentAt
	}
	validUntil := q.ValidUntil
	v := &View{
		Kind:        KindQuote,
		Heading:     "DEVIS",
		Number:      q.Number,
		Subject:     q.Title,
		IssueDate:   issued,
		ValidUntil:  &validUntil,
		Issuer:      issuerParty(a),
		Recipient:   clientParty(c),
		Lines:       toLines(q.Lines),
		Totals:      q.Totals,
		PaidAmount:  decimal.Zero,
		Outstanding: q.Totals.TotalTTC,
		Notes:       q.Notes,
	}
	if q.Totals.TotalVAT.IsZero() && a.VATNumber == "" {
		v.Mentions = append(v.Mentions, mentionVATExemption)
	}
	v.Mentions = append(v.Mentions, mentionQuoteAgree)
	return v
}

// InvoiceView builds the view of an invoice
func InvoiceView(a *identity.Artisan, c *client.Client, inv *invoice.Invoice) *View {
	issued := inv.CreatedAt
	if inv.IssueDate != nil {
		issued = *inv.IssueDate
	}
	v := &View{
		Kind:        KindInvoice,
		Heading:     "FACTURE",
		Number:      inv.Number,
		Subject:     inv.Title,
		IssueDate:   issued,
		DueDate:     inv.DueDate,
		Issuer:      issuerParty(a),
		Recipient:   clientParty(c),
		Lines:       toLines(inv.Lines),
		Totals:      inv.Totals,
		PaidAmount:  inv.PaidAmount,
		Outstanding: inv.Outstanding(),
		Notes:       inv.Notes,
		IBAN:        a.IBAN,
	}
	if inv.Totals.TotalVAT.IsZero() && a.VATNumber == "" {
		v.Mentions = append(v.Mentions, mentionVATExemption)
	}
	v.Mentions = append(v.Mentions, mentionNoDiscount, mentionLatePenalty)
	if c.Type == client.ClientTypeCompany {
		v.Mentions = append(v.Mentions, mentionRecoveryFee)
	}
	return v
}

// SupplierOrderView builds the view of a supplier order
func SupplierOrderView(a *identity.Artisan, s *supplier.Supplier, o *supplier.SupplierOrder) *View {
	issued := o.CreatedAt
	if o.SentAt != nil {
		issued = *o.SentAt
	}
	return &View{
		Kind:        KindSupplierOrder,
		Heading:     "BON DE COMMANDE",
		Number:      o.Number,
		IssueDate:   issued,
		ExpectedAt:  o.ExpectedAt,
		Issuer:      issuerParty(a),
		Recipient:   supplierParty(s),
		Lines:       toLines(o.Lines),
		Totals:      o.Totals,
		PaidAmount:  decimal.Zero,
		Outstanding: o.Totals.TotalTTC,
		Notes:       o.Notes,
	}
}
