package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/application/dashboard"
)

// DashboardService computes the artisan's key figures
type DashboardService interface {
	Summary(ctx context.Context, tenantID uuid.UUID, req dashboard.PeriodRequest) (*dashboard.Summary, error)
}

// DashboardHandler serves the home dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @ID           getDashboard
// @Summary      Dashboard
// @Description  Revenue, receivables, quote conversion, upcoming interventions and rating. Defaults to the current month.
// @Tags         dashboard
// @Produce      json
// @Param        from query string false "Period start (YYYY-MM-DD)"
// @Param        to query string false "Period end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[dashboard.Summary]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req dashboard.PeriodRequest
	if !h.bindQuery(c, &req) {
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
