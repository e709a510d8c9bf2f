package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/application/portal"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/interfaces/http/middleware"
)

// PortalService is the client portal API used by PortalHandler
type PortalService interface {
	Overview(ctx context.Context, sess *portal.Session) (*portal.Overview, error)
	ListQuotes(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[quoteapp.QuoteResponse], error)
	GetQuote(ctx context.Context, sess *portal.Session, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	AcceptQuote(ctx context.Context, sess *portal.Session, id uuid.UUID) (*quoteapp.QuoteResponse, error)
	RejectQuote(ctx context.Context, sess *portal.Session, id uuid.UUID, req portal.RejectRequest) (*quoteapp.QuoteResponse, error)
	ListInvoices(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[invoiceapp.InvoiceResponse], error)
	GetInvoice(ctx context.Context, sess *portal.Session, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	DownloadDocument(ctx context.Context, sess *portal.Session, kind documentapp.Kind, id uuid.UUID) (*documentapp.Link, error)
	ListInterventions(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[interventionapp.InterventionResponse], error)
	SubmitReview(ctx context.Context, sess *portal.Session, req reviewapp.SubmitRequest) (*reviewapp.ReviewResponse, error)
}

// PortalHandler serves the client portal. Every route runs behind
// middleware.PortalAuth, which places the client session on the context.
type PortalHandler struct {
	BaseHandler
	portalService PortalService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(portalService PortalService) *PortalHandler {
	return &PortalHandler{portalService: portalService}
}

func (h *PortalHandler) session(c *gin.Context) (*portal.Session, bool) {
	sess := middleware.GetPortalSession(c)
	if sess == nil {
		h.Error(c, http.StatusUnauthorized, "INVALID_PORTAL_TOKEN", "Invalid or revoked portal link")
		return nil, false
	}
	return sess, true
}

// Overview godoc
// @ID           getPortalOverview
// @Summary      Portal home
// @Description  The client's details, the artisan's card and its rating
// @Tags         portal
// @Produce      json
// @Success      200 {object} APIResponse[portal.Overview]
// @Failure      401 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal [get]
func (h *PortalHandler) Overview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	overview, err := h.portalService.Overview(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// ListQuotes godoc
// @ID           listPortalQuotes
// @Summary      The client's quotes
// @Tags         portal
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]quoteapp.QuoteResponse]
// @Security     PortalToken
// @Router       /portal/quotes [get]
func (h *PortalHandler) ListQuotes(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req portal.PageRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.portalService.ListQuotes(c.Request.Context(), sess, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// GetQuote godoc
// @ID           getPortalQuote
// @Summary      One of the client's quotes
// @Tags         portal
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/quotes/{id} [get]
func (h *PortalHandler) GetQuote(c *gin.Context) {
	h.quoteAction(c, h.portalService.GetQuote)
}

// AcceptQuote godoc
// @ID           acceptPortalQuote
// @Summary      Accept a quote
// @Tags         portal
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/quotes/{id}/accept [post]
func (h *PortalHandler) AcceptQuote(c *gin.Context) {
	h.quoteAction(c, h.portalService.AcceptQuote)
}

// RejectQuote godoc
// @ID           rejectPortalQuote
// @Summary      Decline a quote
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body portal.RejectRequest false "Reason"
// @Success      200 {object} APIResponse[quoteapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/quotes/{id}/reject [post]
func (h *PortalHandler) RejectQuote(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portal.RejectRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	q, err := h.portalService.RejectQuote(c.Request.Context(), sess, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// QuotePDF godoc
// @ID           downloadPortalQuote
// @Summary      Download a quote PDF
// @Tags         portal
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.Link]
// @Failure      404 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/quotes/{id}/pdf [get]
func (h *PortalHandler) QuotePDF(c *gin.Context) {
	h.download(c, documentapp.KindQuote)
}

// ListInvoices godoc
// @ID           listPortalInvoices
// @Summary      The client's invoices
// @Tags         portal
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoiceapp.InvoiceResponse]
// @Security     PortalToken
// @Router       /portal/invoices [get]
func (h *PortalHandler) ListInvoices(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req portal.PageRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.portalService.ListInvoices(c.Request.Context(), sess, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// GetInvoice godoc
// @ID           getPortalInvoice
// @Summary      One of the client's invoices
// @Tags         portal
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/invoices/{id} [get]
func (h *PortalHandler) GetInvoice(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	inv, err := h.portalService.GetInvoice(c.Request.Context(), sess, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// InvoicePDF godoc
// @ID           downloadPortalInvoice
// @Summary      Download an invoice PDF
// @Tags         portal
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.Link]
// @Failure      404 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/invoices/{id}/pdf [get]
func (h *PortalHandler) InvoicePDF(c *gin.Context) {
	h.download(c, documentapp.KindInvoice)
}

// ListInterventions godoc
// @ID           listPortalInterventions
// @Summary      The client's appointments
// @Tags         portal
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]interventionapp.InterventionResponse]
// @Security     PortalToken
// @Router       /portal/interventions [get]
func (h *PortalHandler) ListInterventions(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req portal.PageRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.portalService.ListInterventions(c.Request.Context(), sess, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// SubmitReview godoc
// @ID           submitPortalReview
// @Summary      Review the artisan
// @Description  One review per completed intervention. Reviews are published after moderation.
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        request body reviewapp.SubmitRequest true "Review"
// @Success      201 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     PortalToken
// @Router       /portal/reviews [post]
func (h *PortalHandler) SubmitReview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req reviewapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.portalService.SubmitReview(c.Request.Context(), sess, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

func (h *PortalHandler) quoteAction(c *gin.Context, action func(ctx context.Context, sess *portal.Session, id uuid.UUID) (*quoteapp.QuoteResponse, error)) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	q, err := action(c.Request.Context(), sess, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

func (h *PortalHandler) download(c *gin.Context, kind documentapp.Kind) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.portalService.DownloadDocument(c.Request.Context(), sess, kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
