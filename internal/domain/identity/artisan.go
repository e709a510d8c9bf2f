package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ArtisanStatus represents the status of an artisan account
type ArtisanStatus string

const (
	ArtisanStatusActive    ArtisanStatus = "ACTIVE"
	ArtisanStatusSuspended ArtisanStatus = "SUSPENDED"
)

// IsValid checks if the status is valid
func (s ArtisanStatus) IsValid() bool {
	return s == ArtisanStatusActive || s == ArtisanStatusSuspended
}

// Default document settings
const (
	DefaultPaymentTermsDays = 30
	DefaultQuotePrefix      = "DEV"
	DefaultInvoicePrefix    = "FAC"
	DefaultOrderPrefix      = "CMD"
)

var (
	siretPattern  = regexp.MustCompile(`^\d{14}$`)
	prefixPattern = regexp.MustCompile(`^[A-Z]{2,6}$`)
)

// Artisan is the tenant of the platform: a tradesperson's business.
// Its ID is the tenant ID carried by every business record.
type Artisan struct {
	shared.BaseAggregateRoot
	Name             string
	LegalName        string
	SIRET            string
	VATNumber        string
	Email            string
	Phone            string
	Address          valueobject.Address
	Trade            string
	Status           ArtisanStatus
	QuotePrefix      string
	InvoicePrefix    string
	OrderPrefix      string
	PaymentTermsDays int
	DefaultVATRate   decimal.Decimal
	IBAN             string
	LogoKey          string
	SuspendedAt      *time.Time
}

// NewArtisan creates a new active artisan account
func NewArtisan(name, email string) (*Artisan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot exceed 200 characters")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	a := &Artisan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Status:            ArtisanStatusActive,
		QuotePrefix:       DefaultQuotePrefix,
		InvoicePrefix:     DefaultInvoicePrefix,
		OrderPrefix:       DefaultOrderPrefix,
		PaymentTermsDays:  DefaultPaymentTermsDays,
		DefaultVATRate:    pricing.VATRateStandard,
	}
	a.AddDomainEvent(NewArtisanRegisteredEvent(a))
	return a, nil
}

// TenantID returns the tenant ID, which is the artisan ID
func (a *Artisan) TenantID() uuid.UUID {
	return a.ID
}

// ProfileUpdate carries the editable business profile
type ProfileUpdate struct {
	Name             string
	LegalName        string
	SIRET            string
	VATNumber        string
	Email            string
	Phone            string
	Address          valueobject.Address
	Trade            string
	IBAN             string
	PaymentTermsDays int
	DefaultVATRate   *decimal.Decimal
	QuotePrefix      string
	InvoicePrefix    string
}

// UpdateProfile replaces the business profile
func (a *Artisan) UpdateProfile(p ProfileUpdate) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	siret := strings.ReplaceAll(strings.TrimSpace(p.SIRET), " ", "")
	if siret != "" && !siretPattern.MatchString(siret) {
		return shared.NewDomainError("INVALID_SIRET", "SIRET must contain 14 digits")
	}
	if err := validateEmail(p.Email); err != nil {
		return err
	}
	phone, err := valueobject.NormalizePhone(p.Phone, valueobject.DefaultPhoneRegion)
	if err != nil {
		return shared.NewDomainError("INVALID_PHONE", err.Error())
	}
	if p.PaymentTermsDays < 0 || p.PaymentTermsDays > 60 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 60 days")
	}
	if p.DefaultVATRate != nil && !pricing.IsAllowedVATRate(*p.DefaultVATRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", fmt.Sprintf("VAT rate %s%% is not allowed", p.DefaultVATRate.String()))
	}
	for _, prefix := range []string{p.QuotePrefix, p.InvoicePrefix} {
		if prefix != "" && !prefixPattern.MatchString(prefix) {
			return shared.NewDomainError("INVALID_PREFIX", "Document prefix must be 2 to 6 uppercase letters")
		}
	}

	a.Name = name
	a.LegalName = strings.TrimSpace(p.LegalName)
	a.SIRET = siret
	a.VATNumber = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p.VATNumber), " ", ""))
	a.Email = strings.ToLower(strings.TrimSpace(p.Email))
	a.Phone = phone
	a.Address = p.Address
	a.Trade = strings.TrimSpace(p.Trade)
	a.IBAN = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p.IBAN), " ", ""))
	if p.PaymentTermsDays > 0 {
		a.PaymentTermsDays = p.PaymentTermsDays
	}
	if p.DefaultVATRate != nil {
		a.DefaultVATRate = *p.DefaultVATRate
	}
	if p.QuotePrefix != "" {
		a.QuotePrefix = p.QuotePrefix
	}
	if p.InvoicePrefix != "" {
		a.InvoicePrefix = p.InvoicePrefix
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// SetLogo records the storage key of the uploaded logo
func (a *Artisan) SetLogo(key string) {
	a.LogoKey = key
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Suspend blocks every user of the artisan from using the API
func (a *Artisan) Suspend() error {
	if a.Status == ArtisanStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Artisan is already suspended")
	}
	now := time.Now()
	a.Status = ArtisanStatusSuspended
	a.SuspendedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewArtisanStatusChangedEvent(a, ArtisanStatusActive))
	return nil
}

// Activate lifts a suspension
func (a *Artisan) Activate() error {
	if a.Status == ArtisanStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Artisan is already active")
	}
	a.Status = ArtisanStatusActive
	a.SuspendedAt = nil
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewArtisanStatusChangedEvent(a, ArtisanStatusSuspended))
	return nil
}

// IsActive returns true if the artisan can use the platform
func (a *Artisan) IsActive() bool {
	return a.Status == ArtisanStatusActive
}

// DocumentPrefix returns the numbering prefix for a document kind
func (a *Artisan) DocumentPrefix(kind DocumentKind) string {
	switch kind {
	case DocumentKindQuote:
		return a.QuotePrefix
	case DocumentKindInvoice:
		return a.InvoicePrefix
	default:
		return a.OrderPrefix
	}
}

// DocumentKind identifies a numbered document series
type DocumentKind string

const (
	DocumentKindQuote         DocumentKind = "QUOTE"
	DocumentKindInvoice       DocumentKind = "INVOICE"
	DocumentKindSupplierOrder DocumentKind = "SUPPLIER_ORDER"
)

// FormatDocumentNumber renders PREFIX-YYYY-NNNNN
func FormatDocumentNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%05d", prefix, year, seq)
}
