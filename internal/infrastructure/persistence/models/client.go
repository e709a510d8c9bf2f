package models

import (
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// ClientModel is the persistence model for the Client aggregate.
type ClientModel struct {
	TenantAggregateModel
	Type          client.ClientType   `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'"`
	FirstName     string              `gorm:"type:varchar(100)"`
	LastName      string              `gorm:"type:varchar(100)"`
	CompanyName   string              `gorm:"type:varchar(200)"`
	Email         string              `gorm:"type:varchar(200);index"`
	Phone         string              `gorm:"type:varchar(20)"`
	Address       valueobject.Address `gorm:"type:jsonb"`
	Notes         string              `gorm:"type:text"`
	SearchKey     string              `gorm:"type:text;index"`
	PortalToken   *string             `gorm:"type:varchar(64);uniqueIndex"`
	PortalEnabled bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClientModel) ToDomain() *client.Client {
	c := &client.Client{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Type:                m.Type,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		CompanyName:         m.CompanyName,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		Notes:               m.Notes,
		SearchKey:           m.SearchKey,
		PortalEnabled:       m.PortalEnabled,
	}
	if m.PortalToken != nil {
		c.PortalToken = *m.PortalToken
	}
	return c
}

// ClientModelFromDomain creates a persistence model from a domain Client.
// An empty portal token is stored as NULL to keep the unique index usable.
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{
		Type:          c.Type,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		CompanyName:   c.CompanyName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		Notes:         c.Notes,
		SearchKey:     c.SearchKey,
		PortalEnabled: c.PortalEnabled,
	}
	if c.PortalToken != "" {
		token := c.PortalToken
		m.PortalToken = &token
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}
