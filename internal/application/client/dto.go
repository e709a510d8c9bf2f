package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// ClientRequest creates or replaces a client
type ClientRequest struct {
	Type        string `json:"type" binding:"required,oneof=INDIVIDUAL COMPANY"`
	FirstName   string `json:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Phone       string `json:"phone" binding:"omitempty,phone"`
	Street      string `json:"street" binding:"max=200"`
	Complement  string `json:"complement" binding:"max=200"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"omitempty,len=2"`
	Notes       string `json:"notes" binding:"max=2000"`
}

// ListFilter narrows a client listing
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at last_name company_name"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse is the API view of a client
type ClientResponse struct {
	ID            uuid.UUID           `json:"id"`
	Type          client.ClientType   `json:"type"`
	DisplayName   string              `json:"display_name"`
	FirstName     string              `json:"first_name,omitempty"`
	LastName      string              `json:"last_name,omitempty"`
	CompanyName   string              `json:"company_name,omitempty"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	Address       valueobject.Address `json:"address"`
	Notes         string              `json:"notes,omitempty"`
	PortalEnabled bool                `json:"portal_enabled"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID,
		Type:          c.Type,
		DisplayName:   c.DisplayName(),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		CompanyName:   c.CompanyName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		Notes:         c.Notes,
		PortalEnabled: c.PortalEnabled,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// PortalAccessResponse is returned when the portal is opened to a client
type PortalAccessResponse struct {
	ClientID uuid.UUID `json:"client_id"`
	Token    string    `json:"token"`
	URL      string    `json:"url,omitempty"`
}
