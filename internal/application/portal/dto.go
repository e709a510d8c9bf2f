package portal

import (
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// Session is an authenticated portal visit: a client and its artisan
type Session struct {
	Client  *client.Client
	Artisan *identity.Artisan
}

// TenantID returns the artisan the client belongs to
func (s *Session) TenantID() uuid.UUID {
	return s.Artisan.ID
}

// ArtisanProfile is what a client sees of the artisan
type ArtisanProfile struct {
	Name      string              `json:"name"`
	LegalName string              `json:"legal_name,omitempty"`
	SIRET     string              `json:"siret,omitempty"`
	Trade     string              `json:"trade,omitempty"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone,omitempty"`
	Address   valueobject.Address `json:"address"`
}

// ClientProfile is the client's own record
type ClientProfile struct {
	ID          uuid.UUID           `json:"id"`
	DisplayName string              `json:"display_name"`
	Email       string              `json:"email,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Address     valueobject.Address `json:"address"`
}

// Overview is the portal landing page
type Overview struct {
	Client  ClientProfile  `json:"client"`
	Artisan ArtisanProfile `json:"artisan"`
	Rating  review.Stats   `json:"rating"`
}

// PageRequest pages a portal listing
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// RejectRequest carries the client's reason for declining a quote
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

func toOverview(s *Session, rating review.Stats) *Overview {
	a, c := s.Artisan, s.Client
	return &Overview{
		Client: ClientProfile{
			ID:          c.ID,
			DisplayName: c.DisplayName(),
			Email:       c.Email,
			Phone:       c.Phone,
			Address:     c.Address,
		},
		Artisan: ArtisanProfile{
			Name:      a.Name,
			LegalName: a.LegalName,
			SIRET:     a.SIRET,
			Trade:     a.Trade,
			Email:     a.Email,
			Phone:     a.Phone,
			Address:   a.Address,
		},
		Rating: rating,
	}
}
