package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/service"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
	"github.com/ciet-hostel/gatepass-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, actor service.Actor) (*models.DashboardSummary, bool, error)
}

// DashboardHandler serves the status summary endpoint.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Status counts and recent activity for the authenticated account
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, cacheHit, err := h.service.Summary(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache_hit": cacheHit})
}
