package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, refresh bool) (*service.DashboardSummary, error)
}

// DashboardHandler exposes the admin landing-page summary.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard counts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "discard the cached copy first"
// @Success 200 {object} response.Envelope{data=service.DashboardSummary}
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Query("refresh") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
