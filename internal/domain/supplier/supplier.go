package supplier

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// Supplier is a wholesaler the artisan buys materials from
type Supplier struct {
	shared.TenantAggregateRoot
	Name          string
	ContactName   string
	Email         string
	Phone         string
	Address       valueobject.Address
	AccountNumber string
	Notes         string
}

// SupplierDetails is the editable part of a supplier
type SupplierDetails struct {
	Name          string
	ContactName   string
	Email         string
	Phone         string
	Address       valueobject.Address
	AccountNumber string
	Notes         string
}

// NewSupplier creates a new supplier
func NewSupplier(tenantID uuid.UUID, d SupplierDetails) (*Supplier, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	s := &Supplier{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := s.apply(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the supplier details
func (s *Supplier) Update(d SupplierDetails) error {
	if err := s.apply(d); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

func (s *Supplier) apply(d SupplierDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
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
	s.Name = name
	s.ContactName = strings.TrimSpace(d.ContactName)
	s.Email = email
	s.Phone = phone
	s.Address = d.Address
	s.AccountNumber = strings.TrimSpace(d.AccountNumber)
	s.Notes = strings.TrimSpace(d.Notes)
	return nil
}
