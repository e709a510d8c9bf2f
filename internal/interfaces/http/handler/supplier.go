package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	supplierapp "github.com/monartisan/backend/internal/application/supplier"
	"github.com/monartisan/backend/internal/domain/shared"
)

// SupplierService is the supplier and purchase order API used by SupplierHandler
type SupplierService interface {
	CreateSupplier(ctx context.Context, tenantID, userID uuid.UUID, req supplierapp.SupplierRequest) (*supplierapp.SupplierResponse, error)
	GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*supplierapp.SupplierResponse, error)
	ListSuppliers(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[supplierapp.SupplierResponse], error)
	UpdateSupplier(ctx context.Context, tenantID, id uuid.UUID, req supplierapp.SupplierRequest) (*supplierapp.SupplierResponse, error)
	DeleteSupplier(ctx context.Context, tenantID, id uuid.UUID) error
	CreateOrder(ctx context.Context, tenantID, userID uuid.UUID, req supplierapp.OrderRequest) (*supplierapp.OrderResponse, error)
	GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*supplierapp.OrderResponse, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID, filter supplierapp.OrderListFilter) (*shared.Paginated[supplierapp.OrderResponse], error)
	UpdateOrder(ctx context.Context, tenantID, id uuid.UUID, req supplierapp.OrderRequest) (*supplierapp.OrderResponse, error)
	SendOrder(ctx context.Context, tenantID, id uuid.UUID) (*supplierapp.OrderResponse, error)
	ConfirmOrder(ctx context.Context, tenantID, id uuid.UUID, req supplierapp.ConfirmRequest) (*supplierapp.OrderResponse, error)
	ReceiveOrder(ctx context.Context, tenantID, id uuid.UUID, req supplierapp.ReceiveRequest) (*supplierapp.OrderResponse, error)
	CancelOrder(ctx context.Context, tenantID, id uuid.UUID) (*supplierapp.OrderResponse, error)
	RenderOrderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error)
}

// SupplierHandler handles supplier and supplier order HTTP requests
type SupplierHandler struct {
	BaseHandler
	supplierService SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// CreateSupplier godoc
// @ID           createSupplier
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body supplierapp.SupplierRequest true "Supplier"
// @Success      201 {object} APIResponse[supplierapp.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req supplierapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.supplierService.CreateSupplier(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, s)
}

// GetSupplier godoc
// @ID           getSupplier
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[supplierapp.SupplierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.supplierService.GetSupplier(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// ListSuppliers godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Name or contact"
// @Success      200 {object} APIResponse[[]supplierapp.SupplierResponse]
// @Security     BearerAuth
// @Router       /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.supplierService.ListSuppliers(c.Request.Context(), tenantID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// UpdateSupplier godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body supplierapp.SupplierRequest true "Supplier"
// @Success      200 {object} APIResponse[supplierapp.SupplierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.supplierService.UpdateSupplier(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// DeleteSupplier godoc
// @ID           deleteSupplier
// @Summary      Delete a supplier
// @Description  Refused while open orders reference the supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateOrder godoc
// @ID           createSupplierOrder
// @Summary      Create a draft supplier order
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        request body supplierapp.OrderRequest true "Order"
// @Success      201 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders [post]
func (h *SupplierHandler) CreateOrder(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req supplierapp.OrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.supplierService.CreateOrder(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// GetOrder godoc
// @ID           getSupplierOrder
// @Summary      Get a supplier order
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id} [get]
func (h *SupplierHandler) GetOrder(c *gin.Context) {
	h.applyOrder(c, h.supplierService.GetOrder)
}

// ListOrders godoc
// @ID           listSupplierOrders
// @Summary      List supplier orders
// @Tags         supplier-orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Order number"
// @Param        status query string false "DRAFT, SENT, CONFIRMED, RECEIVED or CANCELLED"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[[]supplierapp.OrderResponse]
// @Security     BearerAuth
// @Router       /supplier-orders [get]
func (h *SupplierHandler) ListOrders(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter supplierapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.SupplierID, ok = h.queryUUID(c, "supplier_id"); !ok {
		return
	}
	page, err := h.supplierService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// UpdateOrder godoc
// @ID           updateSupplierOrder
// @Summary      Update a draft supplier order
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body supplierapp.OrderRequest true "Order"
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id} [put]
func (h *SupplierHandler) UpdateOrder(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.OrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.supplierService.UpdateOrder(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// SendOrder godoc
// @ID           sendSupplierOrder
// @Summary      Send an order to the supplier
// @Description  Numbers the order, renders the PDF and emails the supplier
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id}/send [post]
func (h *SupplierHandler) SendOrder(c *gin.Context) {
	h.applyOrder(c, h.supplierService.SendOrder)
}

// ConfirmOrder godoc
// @ID           confirmSupplierOrder
// @Summary      Record the supplier's confirmation
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body supplierapp.ConfirmRequest false "Announced delivery date"
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id}/confirm [post]
func (h *SupplierHandler) ConfirmOrder(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.ConfirmRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	o, err := h.supplierService.ConfirmOrder(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// ReceiveOrder godoc
// @ID           receiveSupplierOrder
// @Summary      Record delivery of the goods
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body supplierapp.ReceiveRequest false "Delivery date"
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id}/receive [post]
func (h *SupplierHandler) ReceiveOrder(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.ReceiveRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	o, err := h.supplierService.ReceiveOrder(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// CancelOrder godoc
// @ID           cancelSupplierOrder
// @Summary      Cancel a supplier order
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[supplierapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id}/cancel [post]
func (h *SupplierHandler) CancelOrder(c *gin.Context) {
	h.applyOrder(c, h.supplierService.CancelOrder)
}

// OrderPDF godoc
// @ID           getSupplierOrderPDF
// @Summary      Supplier order PDF
// @Tags         supplier-orders
// @Produce      json,application/pdf
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.Rendered]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /supplier-orders/{id}/pdf [get]
func (h *SupplierHandler) OrderPDF(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.supplierService.RenderOrderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondDocument(&h.BaseHandler, c, doc)
}

func (h *SupplierHandler) applyOrder(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*supplierapp.OrderResponse, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}
