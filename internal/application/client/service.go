package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Service handles client operations
type Service struct {
	clientRepo    client.ClientRepository
	invoiceRepo   invoice.InvoiceRepository
	eventBus      shared.EventPublisher
	portalBaseURL string
	logger        *zap.Logger
}

// NewService creates a new client service. portalBaseURL prefixes the link
// handed out with a portal token.
func NewService(
	clientRepo client.ClientRepository,
	invoiceRepo invoice.InvoiceRepository,
	eventBus shared.EventPublisher,
	portalBaseURL string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		clientRepo:    clientRepo,
		invoiceRepo:   invoiceRepo,
		eventBus:      eventBus,
		portalBaseURL: strings.TrimRight(portalBaseURL, "/"),
		logger:        logger,
	}
}

// Create creates a new client
func (s *Service) Create(ctx context.Context, tenantID, userID uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	c, err := client.NewClient(tenantID, details)
	if err != nil {
		return nil, err
	}
	c.SetCreatedBy(userID)

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

// Get returns a client of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(c)
	return &response, nil
}

// List returns a page of clients. The search matches names, email and phone
// regardless of case and accents.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[ClientResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   valueobject.SearchKey(filter.Search),
		Filters:  make(map[string]any),
	}.Normalize()
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}

	clients, total, err := s.clientRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]ClientResponse, len(clients))
	for i := range clients {
		items[i] = ToClientResponse(&clients[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update replaces a client's details
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	if err := c.Update(details); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	response := ToClientResponse(c)
	return &response, nil
}

// Delete removes a client that has never been invoiced
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	count, err := s.invoiceRepo.CountByClient(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("HAS_INVOICES", "Client has invoices and cannot be deleted")
	}
	if err := s.clientRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Client deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("client_id", id.String()))
	return nil
}

// EnablePortal opens the client portal with a fresh token. Any previous
// token stops working.
func (s *Service) EnablePortal(ctx context.Context, tenantID, id uuid.UUID) (*PortalAccessResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	token, err := c.EnablePortal()
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Client portal enabled", zap.String("client_id", id.String()))
	response := &PortalAccessResponse{ClientID: c.ID, Token: token}
	if s.portalBaseURL != "" {
		response.URL = s.portalBaseURL + "/" + token
	}
	return response, nil
}

// DisablePortal revokes the client's portal token
func (s *Service) DisablePortal(ctx context.Context, tenantID, id uuid.UUID) error {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	c.DisablePortal()
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return err
	}
	s.logger.Info("Client portal disabled", zap.String("client_id", id.String()))
	return nil
}

func (s *Service) publish(ctx context.Context, c *client.Client) {
	events := c.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish client events", zap.Error(err))
		}
	}
	c.ClearDomainEvents()
}

func toDetails(req ClientRequest) (client.Details, error) {
	address, err := valueobject.NewAddress(req.Street, req.Complement, req.PostalCode, req.City, req.Country)
	if err != nil {
		return client.Details{}, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	return client.Details{
		Type:        client.ClientType(strings.ToUpper(req.Type)),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     address,
		Notes:       req.Notes,
	}, nil
}
