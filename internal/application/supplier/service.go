package supplier

import (
	"context"
	"time"

	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	"github.com/monartisan/backend/internal/application/numbering"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/domain/supplier"
	"go.uber.org/zap"
)

// Renderer produces the PDF of a supplier order
type Renderer interface {
	RenderSupplierOrder(ctx context.Context, o *supplier.SupplierOrder) (*documentapp.Rendered, error)
}

// Service handles suppliers and the orders sent to them
type Service struct {
	supplierRepo     supplier.SupplierRepository
	orderRepo        supplier.SupplierOrderRepository
	interventionRepo intervention.InterventionRepository
	artisanRepo      identity.ArtisanRepository
	journalRepo      accounting.JournalEntryRepository
	sequencer        *numbering.Sequencer
	txManager        shared.TransactionManager
	renderer         Renderer
	eventBus         shared.EventPublisher
	logger           *zap.Logger
	now              func() time.Time
}

// NewService creates a new supplier service
func NewService(
	supplierRepo supplier.SupplierRepository,
	orderRepo supplier.SupplierOrderRepository,
	interventionRepo intervention.InterventionRepository,
	artisanRepo identity.ArtisanRepository,
	journalRepo accounting.JournalEntryRepository,
	sequencer *numbering.Sequencer,
	txManager shared.TransactionManager,
	renderer Renderer,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		supplierRepo:     supplierRepo,
		orderRepo:        orderRepo,
		interventionRepo: interventionRepo,
		artisanRepo:      artisanRepo,
		journalRepo:      journalRepo,
		sequencer:        sequencer,
		txManager:        txManager,
		renderer:         renderer,
		eventBus:         eventBus,
		logger:           logger,
		now:              time.Now,
	}
}

// =============================================================================
// Suppliers
// =============================================================================

// CreateSupplier creates a supplier
func (s *Service) CreateSupplier(ctx context.Context, tenantID, userID uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	sup, err := supplier.NewSupplier(tenantID, details)
	if err != nil {
		return nil, err
	}
	sup.SetCreatedBy(userID)
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(sup)
	return &response, nil
}

// GetSupplier returns a supplier of the tenant
func (s *Service) GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*SupplierResponse, error) {
	sup, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(sup)
	return &response, nil
}

// ListSuppliers returns a page of suppliers
func (s *Service) ListSuppliers(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[SupplierResponse], error) {
	filter.Search = valueobject.SearchKey(filter.Search)
	filter = filter.Normalize()
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
	}
	suppliers, total, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		items[i] = ToSupplierResponse(&suppliers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateSupplier replaces a supplier's details
func (s *Service) UpdateSupplier(ctx context.Context, tenantID, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	sup, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	if err := sup.Update(details); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(sup)
	return &response, nil
}

// DeleteSupplier removes a supplier that has no orders
func (s *Service) DeleteSupplier(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	count, err := s.orderRepo.CountBySupplier(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("HAS_ORDERS", "Supplier has orders and cannot be deleted")
	}
	return s.supplierRepo.DeleteForTenant(ctx, tenantID, id)
}

// =============================================================================
// Orders
// =============================================================================

// CreateOrder creates a draft order
func (s *Service) CreateOrder(ctx context.Context, tenantID, userID uuid.UUID, req OrderRequest) (*OrderResponse, error) {
	if err := s.checkReferences(ctx, tenantID, req.SupplierID, req.InterventionID); err != nil {
		return nil, err
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	o, err := supplier.NewSupplierOrder(tenantID, req.SupplierID, lines)
	if err != nil {
		return nil, err
	}
	if err := o.Update(lines, req.ExpectedAt, req.InterventionID, req.Notes); err != nil {
		return nil, err
	}
	o.SetCreatedBy(userID)
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetOrder returns an order of the tenant
func (s *Service) GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListOrders returns a page of orders
func (s *Service) ListOrders(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	domainFilter := supplier.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
			Search:   valueobject.SearchKey(filter.Search),
		}.Normalize(),
		SupplierID: filter.SupplierID,
	}
	if filter.Status != "" {
		status := supplier.OrderStatus(filter.Status)
		domainFilter.Status = &status
	}
	orders, total, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// UpdateOrder replaces the content of a draft order
func (s *Service) UpdateOrder(ctx context.Context, tenantID, id uuid.UUID, req OrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.SupplierID != o.SupplierID {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "The supplier of an order cannot be changed")
	}
	if err := s.checkReferences(ctx, tenantID, req.SupplierID, req.InterventionID); err != nil {
		return nil, err
	}
	lines, err := s.buildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	if err := o.Update(lines, req.ExpectedAt, req.InterventionID, req.Notes); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// SendOrder numbers the order (CMD-YYYY-NNNNN) and marks it sent
func (s *Service) SendOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(supplier.OrderStatusSent) {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot send order in "+string(o.Status)+" status")
	}
	err = s.sequencer.WithNumber(ctx, tenantID, identity.DocumentKindSupplierOrder, func(ctx context.Context, a numbering.Assigned) error {
		if err := o.Send(a.Number); err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Supplier order sent",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number))
	response := ToOrderResponse(o)
	return &response, nil
}

// ConfirmOrder records the supplier's acknowledgement
func (s *Service) ConfirmOrder(ctx context.Context, tenantID, id uuid.UUID, req ConfirmRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := o.Confirm(req.ExpectedAt); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ReceiveOrder records delivery and posts the purchase entry in the same
// transaction
func (s *Service) ReceiveOrder(ctx context.Context, tenantID, id uuid.UUID, req ReceiveRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	receivedAt := s.now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := o.Receive(receivedAt); err != nil {
			return err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		entry, err := accounting.PurchaseEntry(tenantID, o.ID, o.Number, receivedAt,
			o.Totals.TotalHT, o.Totals.TotalVAT, o.Totals.TotalTTC)
		if err != nil {
			return err
		}
		return s.journalRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("Supplier order received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", o.ID.String()),
		zap.String("total_ttc", o.Totals.TotalTTC.StringFixed(2)))
	response := ToOrderResponse(o)
	return &response, nil
}

// CancelOrder cancels an order not yet received
func (s *Service) CancelOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// RenderOrderPDF renders the purchase order for the supplier
func (s *Service) RenderOrderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderSupplierOrder(ctx, o)
}

func (s *Service) checkReferences(ctx context.Context, tenantID, supplierID uuid.UUID, interventionID *uuid.UUID) error {
	if _, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID); err != nil {
		return err
	}
	if interventionID != nil {
		if _, err := s.interventionRepo.FindByIDForTenant(ctx, tenantID, *interventionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) buildLines(ctx context.Context, tenantID uuid.UUID, inputs []pricing.LineInput) (pricing.Lines, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return pricing.BuildLines(inputs, artisan.DefaultVATRate)
}

func (s *Service) publish(ctx context.Context, o *supplier.SupplierOrder) {
	events := o.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish supplier order events", zap.Error(err))
		}
	}
	o.ClearDomainEvents()
}

func toDetails(req SupplierRequest) (supplier.SupplierDetails, error) {
	address, err := valueobject.NewAddress(req.Street, req.Complement, req.PostalCode, req.City, req.Country)
	if err != nil {
		return supplier.SupplierDetails{}, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	return supplier.SupplierDetails{
		Name:          req.Name,
		ContactName:   req.ContactName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       address,
		AccountNumber: req.AccountNumber,
		Notes:         req.Notes,
	}, nil
}
