package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// RegisterInput creates an artisan account together with its owner
type RegisterInput struct {
	BusinessName string
	SIRET        string
	Trade        string
	Phone        string
	Email        string
	Password     string
	DisplayName  string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// AuthResult contains the tokens issued on register, login or refresh
type AuthResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserDTO   `json:"user"`
}

func newAuthResult(pair *auth.TokenPair, user *identity.User) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserDTO(user),
	}
}

// LogoutInput contains the tokens to revoke. The refresh token is optional.
type LogoutInput struct {
	AccessToken  string
	RefreshToken string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserDTO is the public view of a user
type UserDTO struct {
	ID          uuid.UUID           `json:"id"`
	TenantID    uuid.UUID           `json:"tenant_id"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	Role        identity.UserRole   `json:"role"`
	Status      identity.UserStatus `json:"status"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ArtisanDTO is the full business profile seen by the artisan's users
type ArtisanDTO struct {
	ID               uuid.UUID              `json:"id"`
	Name             string                 `json:"name"`
	LegalName        string                 `json:"legal_name,omitempty"`
	SIRET            string                 `json:"siret,omitempty"`
	VATNumber        string                 `json:"vat_number,omitempty"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone,omitempty"`
	Address          valueobject.Address    `json:"address"`
	Trade            string                 `json:"trade,omitempty"`
	Status           identity.ArtisanStatus `json:"status"`
	QuotePrefix      string                 `json:"quote_prefix"`
	InvoicePrefix    string                 `json:"invoice_prefix"`
	PaymentTermsDays int                    `json:"payment_terms_days"`
	DefaultVATRate   decimal.Decimal        `json:"default_vat_rate"`
	IBAN             string                 `json:"iban,omitempty"`
	HasLogo          bool                   `json:"has_logo"`
	SuspendedAt      *time.Time             `json:"suspended_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ToArtisanDTO converts a domain artisan
func ToArtisanDTO(a *identity.Artisan) ArtisanDTO {
	return ArtisanDTO{
		ID:               a.ID,
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
		PaymentTermsDays: a.PaymentTermsDays,
		DefaultVATRate:   a.DefaultVATRate,
		IBAN:             a.IBAN,
		HasLogo:          a.LogoKey != "",
		SuspendedAt:      a.SuspendedAt,
		CreatedAt:        a.CreatedAt,
	}
}

// PublicProfileDTO is what a client sees of the artisan on the portal
type PublicProfileDTO struct {
	Name    string              `json:"name"`
	SIRET   string              `json:"siret,omitempty"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone,omitempty"`
	Address valueobject.Address `json:"address"`
	Trade   string              `json:"trade,omitempty"`
}

// ToPublicProfileDTO converts a domain artisan to its public profile
func ToPublicProfileDTO(a *identity.Artisan) PublicProfileDTO {
	return PublicProfileDTO{
		Name:    a.Name,
		SIRET:   a.SIRET,
		Email:   a.Email,
		Phone:   a.Phone,
		Address: a.Address,
		Trade:   a.Trade,
	}
}

// MeResult is the current user with the artisan profile
type MeResult struct {
	User    UserDTO    `json:"user"`
	Artisan ArtisanDTO `json:"artisan"`
}

// UpdateProfileInput replaces the artisan business profile
type UpdateProfileInput struct {
	Name             string
	LegalName        string
	SIRET            string
	VATNumber        string
	Email            string
	Phone            string
	Street           string
	Complement       string
	PostalCode       string
	City             string
	Country          string
	Trade            string
	IBAN             string
	PaymentTermsDays int
	DefaultVATRate   *decimal.Decimal
	QuotePrefix      string
	InvoicePrefix    string
}

// InviteUserInput adds an employee to the artisan account
type InviteUserInput struct {
	Email       string
	Password    string
	DisplayName string
}
