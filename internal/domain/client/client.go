package client

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// ClientType distinguishes private customers from businesses
type ClientType string

const (
	ClientTypeIndividual ClientType = "INDIVIDUAL"
	ClientTypeCompany    ClientType = "COMPANY"
)

// IsValid checks if the client type is valid
func (t ClientType) IsValid() bool {
	return t == ClientTypeIndividual || t == ClientTypeCompany
}

// Client is a customer of an artisan
type Client struct {
	shared.TenantAggregateRoot
	Type          ClientType
	FirstName     string
	LastName      string
	CompanyName   string
	Email         string
	Phone         string
	Address       valueobject.Address
	Notes         string
	SearchKey     string
	PortalToken   string
	PortalEnabled bool
}

// Details is the editable part of a client
type Details struct {
	Type        ClientType
	FirstName   string
	LastName    string
	CompanyName string
	Email       string
	Phone       string
	Address     valueobject.Address
	Notes       string
}

// NewClient creates a new client for a tenant
func NewClient(tenantID uuid.UUID, d Details) (*Client, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	if err := c.apply(d); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// Update replaces the client's details
func (c *Client) Update(d Details) error {
	if err := c.apply(d); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewClientUpdatedEvent(c))
	return nil
}

func (c *Client) apply(d Details) error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be INDIVIDUAL or COMPANY")
	}
	first := strings.TrimSpace(d.FirstName)
	last := strings.TrimSpace(d.LastName)
	company := strings.TrimSpace(d.CompanyName)
	switch d.Type {
	case ClientTypeCompany:
		if company == "" {
			return shared.NewDomainError("INVALID_CLIENT", "Company name is required for a company client")
		}
	case ClientTypeIndividual:
		if last == "" {
			return shared.NewDomainError("INVALID_CLIENT", "Last name is required for an individual client")
		}
	}
	if len(first) > 100 || len(last) > 100 || len(company) > 200 {
		return shared.NewDomainError("INVALID_CLIENT", "Client name is too long")
	}

	email := strings.TrimSpace(d.Email)
	if email != "" {
		normalized, err := valueobject.NormalizeEmail(email)
		if err != nil {
			return shared.NewDomainError("INVALID_EMAIL", err.Error())
		}
		email = normalized
	}
	phone, err := valueobject.NormalizePhone(d.Phone, valueobject.DefaultPhoneRegion)
	if err != nil {
		return shared.NewDomainError("INVALID_PHONE", err.Error())
	}

	c.Type = d.Type
	c.FirstName = first
	c.LastName = last
	c.CompanyName = company
	c.Email = email
	c.Phone = phone
	c.Address = d.Address
	c.Notes = strings.TrimSpace(d.Notes)
	c.SearchKey = valueobject.SearchKey(first, last, company, email, phone, d.Address.City)
	return nil
}

// DisplayName returns the name printed on documents
func (c *Client) DisplayName() string {
	if c.Type == ClientTypeCompany {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// EnablePortal generates a fresh portal token, revoking any previous one
func (c *Client) EnablePortal() (string, error) {
	token, err := newPortalToken()
	if err != nil {
		return "", err
	}
	c.PortalToken = token
	c.PortalEnabled = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return token, nil
}

// DisablePortal revokes portal access
func (c *Client) DisablePortal() {
	c.PortalToken = ""
	c.PortalEnabled = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// CanUsePortal reports whether the token grants portal access to this client
func (c *Client) CanUsePortal(token string) bool {
	return c.PortalEnabled && c.PortalToken != "" && c.PortalToken == token
}

func newPortalToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate portal token")
	}
	return hex.EncodeToString(b), nil
}
