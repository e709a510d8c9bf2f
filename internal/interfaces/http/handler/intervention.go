package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	"github.com/monartisan/backend/internal/domain/shared"
)

// InterventionService is the scheduling API used by InterventionHandler
type InterventionService interface {
	Schedule(ctx context.Context, tenantID, userID uuid.UUID, req interventionapp.ScheduleRequest) (*interventionapp.InterventionResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*interventionapp.InterventionResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter interventionapp.ListFilter) (*shared.Paginated[interventionapp.InterventionResponse], error)
	Agenda(ctx context.Context, tenantID uuid.UUID, req interventionapp.AgendaRequest) ([]interventionapp.AgendaDay, error)
	Reschedule(ctx context.Context, tenantID, id uuid.UUID, req interventionapp.RescheduleRequest) (*interventionapp.InterventionResponse, error)
	Start(ctx context.Context, tenantID, id uuid.UUID) (*interventionapp.InterventionResponse, error)
	Complete(ctx context.Context, tenantID, id uuid.UUID, report string) (*interventionapp.InterventionResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*interventionapp.InterventionResponse, error)
}

// InterventionHandler handles on-site intervention HTTP requests
type InterventionHandler struct {
	BaseHandler
	interventionService InterventionService
}

// NewInterventionHandler creates a new InterventionHandler
func NewInterventionHandler(interventionService InterventionService) *InterventionHandler {
	return &InterventionHandler{interventionService: interventionService}
}

// Schedule godoc
// @ID           scheduleIntervention
// @Summary      Schedule an intervention
// @Description  Refused when the slot overlaps another intervention of the same technician
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Param        request body interventionapp.ScheduleRequest true "Intervention"
// @Success      201 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions [post]
func (h *InterventionHandler) Schedule(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req interventionapp.ScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	i, err := h.interventionService.Schedule(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, i)
}

// Get godoc
// @ID           getIntervention
// @Summary      Get an intervention
// @Tags         interventions
// @Produce      json
// @Param        id path string true "Intervention ID" format(uuid)
// @Success      200 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions/{id} [get]
func (h *InterventionHandler) Get(c *gin.Context) {
	h.apply(c, h.interventionService.Get)
}

// List godoc
// @ID           listInterventions
// @Summary      List interventions
// @Tags         interventions
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        status query string false "SCHEDULED, IN_PROGRESS, COMPLETED or CANCELLED"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        technician_id query string false "Technician user ID" format(uuid)
// @Param        from query string false "Starting on or after (YYYY-MM-DD)"
// @Param        to query string false "Starting before (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]interventionapp.InterventionResponse]
// @Security     BearerAuth
// @Router       /interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter interventionapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}
	if filter.TechnicianID, ok = h.queryUUID(c, "technician_id"); !ok {
		return
	}
	page, err := h.interventionService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Agenda godoc
// @ID           getAgenda
// @Summary      Agenda
// @Description  Interventions grouped by day over a range of at most three months
// @Tags         interventions
// @Produce      json
// @Param        from query string true "First day (YYYY-MM-DD)"
// @Param        to query string true "Last day (YYYY-MM-DD)"
// @Param        technician_id query string false "Technician user ID" format(uuid)
// @Success      200 {object} APIResponse[[]interventionapp.AgendaDay]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agenda [get]
func (h *InterventionHandler) Agenda(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req interventionapp.AgendaRequest
	if !h.bindQuery(c, &req) {
		return
	}
	if req.TechnicianID, ok = h.queryUUID(c, "technician_id"); !ok {
		return
	}
	days, err := h.interventionService.Agenda(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if days == nil {
		days = []interventionapp.AgendaDay{}
	}
	h.Success(c, days)
}

// Reschedule godoc
// @ID           rescheduleIntervention
// @Summary      Move an intervention
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Param        id path string true "Intervention ID" format(uuid)
// @Param        request body interventionapp.RescheduleRequest true "New slot"
// @Success      200 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions/{id}/reschedule [post]
func (h *InterventionHandler) Reschedule(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req interventionapp.RescheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	i, err := h.interventionService.Reschedule(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, i)
}

// Start godoc
// @ID           startIntervention
// @Summary      Start an intervention
// @Tags         interventions
// @Produce      json
// @Param        id path string true "Intervention ID" format(uuid)
// @Success      200 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions/{id}/start [post]
func (h *InterventionHandler) Start(c *gin.Context) {
	h.apply(c, h.interventionService.Start)
}

// Complete godoc
// @ID           completeIntervention
// @Summary      Complete an intervention
// @Description  Closes the intervention with an optional report and invites the client to leave a review
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Param        id path string true "Intervention ID" format(uuid)
// @Param        request body interventionapp.CompleteRequest false "Report"
// @Success      200 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions/{id}/complete [post]
func (h *InterventionHandler) Complete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req interventionapp.CompleteRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	i, err := h.interventionService.Complete(c.Request.Context(), tenantID, id, req.Report)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, i)
}

// Cancel godoc
// @ID           cancelIntervention
// @Summary      Cancel an intervention
// @Tags         interventions
// @Produce      json
// @Param        id path string true "Intervention ID" format(uuid)
// @Success      200 {object} APIResponse[interventionapp.InterventionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /interventions/{id}/cancel [post]
func (h *InterventionHandler) Cancel(c *gin.Context) {
	h.apply(c, h.interventionService.Cancel)
}

func (h *InterventionHandler) apply(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*interventionapp.InterventionResponse, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	i, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, i)
}
