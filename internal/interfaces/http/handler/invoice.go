package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
)

// InvoiceService is the invoice API used by InvoiceHandler
type InvoiceService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req invoiceapp.InvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter invoiceapp.ListFilter) (*shared.Paginated[invoiceapp.InvoiceResponse], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.InvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Issue(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.PaymentRequest) (*invoiceapp.InvoiceResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID, reason string) (*invoiceapp.InvoiceResponse, error)
	RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error)
}

// InvoiceHandler handles invoice (facture) HTTP requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.InvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req invoiceapp.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoiceService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.apply(c, h.invoiceService.Get)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Number or title"
// @Param        status query string false "DRAFT, ISSUED, PARTIALLY_PAID, PAID, OVERDUE or CANCELLED"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        from query string false "Issued on or after (YYYY-MM-DD)"
// @Param        to query string false "Issued on or before (YYYY-MM-DD)"
// @Param        order_by query string false "created_at, number, issue_date or due_date"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]invoiceapp.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter invoiceapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}
	page, err := h.invoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.InvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoiceService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete a draft invoice
// @Description  Issued invoices are never deleted; cancel them instead
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Issue godoc
// @ID           issueInvoice
// @Summary      Issue an invoice
// @Description  Assigns the gapless legal number, sets the due date and posts the sale
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	h.apply(c, h.invoiceService.Issue)
}

// RecordPayment godoc
// @ID           recordInvoicePayment
// @Summary      Record a payment
// @Description  Partial payments move the invoice to PARTIALLY_PAID; the full balance to PAID
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.PaymentRequest true "Payment"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel an unpaid invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.CancelRequest true "Reason"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.CancelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoiceService.Cancel(c.Request.Context(), tenantID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// PDF godoc
// @ID           getInvoicePDF
// @Summary      Invoice PDF
// @Description  Returns a presigned link, or the file itself with Accept: application/pdf
// @Tags         invoices
// @Produce      json,application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.Rendered]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.invoiceService.RenderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondDocument(&h.BaseHandler, c, doc)
}

func (h *InvoiceHandler) apply(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	inv, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}
