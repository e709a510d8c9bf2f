package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	"github.com/monartisan/backend/internal/domain/shared"
)

// QuoteService is the quote API used by QuoteHandler
type QuoteService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req quoteapp.QuoteRequest) (*quoteapp.QuoteResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter quoteapp.ListFilter) (*shared.Paginated[quoteapp.QuoteResponse], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req quoteapp.QuoteRequest) (*quoteapp.QuoteResponse, error)
	Send(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	Accept(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*quoteapp.QuoteResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	ConvertToInvoice(ctx context.Context, tenantID, userID, id uuid.UUID) (*quoteapp.ConversionResponse, error)
	Duplicate(ctx context.Context, tenantID, userID, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error)
}

// QuoteHandler handles quote (devis) HTTP requests
type QuoteHandler struct {
	BaseHandler
	quoteService QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Create godoc
// @ID           createQuote
// @Summary      Create a draft quote
// @Description  Totals are computed per VAT rate. The number is assigned when the quote is sent.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body quoteapp.QuoteRequest true "Quote"
// @Success      201 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req quoteapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quoteService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// Get godoc
// @ID           getQuote
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	h.apply(c, h.quoteService.Get)
}

// List godoc
// @ID           listQuotes
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Number or title"
// @Param        status query string false "DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED, INVOICED or CANCELLED"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        order_by query string false "created_at, number or valid_until"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]quoteapp.QuoteResponse]
// @Security     BearerAuth
// @Router       /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter quoteapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}
	page, err := h.quoteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @ID           updateQuote
// @Summary      Update a draft quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body quoteapp.QuoteRequest true "Quote"
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req quoteapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quoteService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Send godoc
// @ID           sendQuote
// @Summary      Send a quote to the client
// @Description  Assigns the quote number, renders the PDF and emails the client
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	h.apply(c, h.quoteService.Send)
}

// Accept godoc
// @ID           acceptQuote
// @Summary      Mark a quote as accepted
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.apply(c, h.quoteService.Accept)
}

// Reject godoc
// @ID           rejectQuote
// @Summary      Mark a quote as rejected
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body quoteapp.RejectRequest false "Reason"
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req quoteapp.RejectRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quoteService.Reject(c.Request.Context(), tenantID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Cancel godoc
// @ID           cancelQuote
// @Summary      Cancel a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/cancel [post]
func (h *QuoteHandler) Cancel(c *gin.Context) {
	h.apply(c, h.quoteService.Cancel)
}

// Convert godoc
// @ID           convertQuoteToInvoice
// @Summary      Convert an accepted quote into a draft invoice
// @Description  Copies the lines into a new invoice. A quote converts once.
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      201 {object} APIResponse[quoteapp.ConversionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.quoteService.ConvertToInvoice(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Duplicate godoc
// @ID           duplicateQuote
// @Summary      Copy a quote into a new draft
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      201 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/duplicate [post]
func (h *QuoteHandler) Duplicate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.quoteService.Duplicate(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// PDF godoc
// @ID           getQuotePDF
// @Summary      Quote PDF
// @Description  Returns a presigned link, or the file itself with Accept: application/pdf
// @Tags         quotes
// @Produce      json,application/pdf
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.Rendered]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.quoteService.RenderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondDocument(&h.BaseHandler, c, doc)
}

func (h *QuoteHandler) apply(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*quoteapp.QuoteResponse, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	q, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}
