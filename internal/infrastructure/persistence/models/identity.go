package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ArtisanModel is the persistence model for the Artisan aggregate (the tenant).
type ArtisanModel struct {
	AggregateModel
	Name             string                 `gorm:"type:varchar(200);not null"`
	LegalName        string                 `gorm:"type:varchar(200)"`
	SIRET            string                 `gorm:"column:siret;type:varchar(14);index"`
	VATNumber        string                 `gorm:"column:vat_number;type:varchar(20)"`
	Email            string                 `gorm:"type:varchar(200);not null"`
	Phone            string                 `gorm:"type:varchar(20)"`
	Address          valueobject.Address    `gorm:"type:jsonb"`
	Trade            string                 `gorm:"type:varchar(100)"`
	Status           identity.ArtisanStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	QuotePrefix      string                 `gorm:"type:varchar(10);not null;default:'DEV'"`
	InvoicePrefix    string                 `gorm:"type:varchar(10);not null;default:'FAC'"`
	OrderPrefix      string                 `gorm:"type:varchar(10);not null;default:'CMD'"`
	PaymentTermsDays int                    `gorm:"not null;default:30"`
	DefaultVATRate   decimal.Decimal        `gorm:"column:default_vat_rate;type:decimal(5,2);not null;default:20"`
	IBAN             string                 `gorm:"column:iban;type:varchar(34)"`
	LogoKey          string                 `gorm:"type:varchar(500)"`
	SuspendedAt      *time.Time
}

// TableName returns the table name for GORM
func (ArtisanModel) TableName() string {
	return "artisans"
}

// ToDomain converts the persistence model to a domain Artisan.
func (m *ArtisanModel) ToDomain() *identity.Artisan {
	return &identity.Artisan{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		LegalName:         m.LegalName,
		SIRET:             m.SIRET,
		VATNumber:         m.VATNumber,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		Trade:             m.Trade,
		Status:            m.Status,
		QuotePrefix:       m.QuotePrefix,
		InvoicePrefix:     m.InvoicePrefix,
		OrderPrefix:       m.OrderPrefix,
		PaymentTermsDays:  m.PaymentTermsDays,
		DefaultVATRate:    m.DefaultVATRate,
		IBAN:              m.IBAN,
		LogoKey:           m.LogoKey,
		SuspendedAt:       m.SuspendedAt,
	}
}

// ArtisanModelFromDomain creates a persistence model from a domain Artisan.
func ArtisanModelFromDomain(a *identity.Artisan) *ArtisanModel {
	m := &ArtisanModel{
		Name:             a.Name,
		LegalName:        a.LegalName,
		SIRET:            a.SIRET,
		VATNumber:        a.VATNumber,
		Email:            a.Email,
		Phone:            a.Phone,
		Address:          a.Address,
		Trade:            a.Trade,
		Status:           a.Status,
		QuotePrefix:      a.QuotePrefix,
		InvoicePrefix:    a.InvoicePrefix,
		OrderPrefix:      a.OrderPrefix,
		PaymentTermsDays: a.PaymentTermsDays,
		DefaultVATRate:   a.DefaultVATRate,
		IBAN:             a.IBAN,
		LogoKey:          a.LogoKey,
		SuspendedAt:      a.SuspendedAt,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	TenantAggregateModel
	Email             string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash      string              `gorm:"type:varchar(255);not null"`
	DisplayName       string              `gorm:"type:varchar(200)"`
	Role              identity.UserRole   `gorm:"type:varchar(20);not null;default:'EMPLOYEE'"`
	Status            identity.UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		DisplayName:         m.DisplayName,
		Role:                m.Role,
		Status:              m.Status,
		LastLoginAt:         m.LastLoginAt,
		PasswordChangedAt:   m.PasswordChangedAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		DisplayName:       u.DisplayName,
		Role:              u.Role,
		Status:            u.Status,
		LastLoginAt:       u.LastLoginAt,
		PasswordChangedAt: u.PasswordChangedAt,
	}
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	return m
}

// DocumentSequenceModel holds the last number issued per tenant, kind and year.
type DocumentSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(20);primaryKey"`
	Year      int       `gorm:"primaryKey"`
	LastValue int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
