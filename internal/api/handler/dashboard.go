package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/service"
)

// DashboardHandler handles dashboard statistics endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	user := middleware.CurrentUser(c)

	stats, err := h.dashboardService.Stats(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute dashboard stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
