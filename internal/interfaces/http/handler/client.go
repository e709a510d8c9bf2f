package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientapp "github.com/monartisan/backend/internal/application/client"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ClientService is the client book API used by ClientHandler
type ClientService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req clientapp.ClientRequest) (*clientapp.ClientResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter clientapp.ListFilter) (*shared.Paginated[clientapp.ClientResponse], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req clientapp.ClientRequest) (*clientapp.ClientResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	EnablePortal(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.PortalAccessResponse, error)
	DisablePortal(ctx context.Context, tenantID, id uuid.UUID) error
}

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	BaseHandler
	clientService ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  A COMPANY client needs a company name, an INDIVIDUAL a last name
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body clientapp.ClientRequest true "Client"
// @Success      201 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req clientapp.ClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Name, email or city"
// @Param        type query string false "INDIVIDUAL or COMPANY"
// @Param        order_by query string false "created_at, last_name or company_name"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]clientapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter clientapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.clientService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body clientapp.ClientRequest true "Client"
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req clientapp.ClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Refused while quotes, invoices or interventions reference the client
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EnablePortal godoc
// @ID           enableClientPortal
// @Summary      Open the client portal
// @Description  Issues a new portal link. Any previous link stops working.
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.PortalAccessResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/portal [post]
func (h *ClientHandler) EnablePortal(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	access, err := h.clientService.EnablePortal(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, access)
}

// DisablePortal godoc
// @ID           disableClientPortal
// @Summary      Close the client portal
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/portal [delete]
func (h *ClientHandler) DisablePortal(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.DisablePortal(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
