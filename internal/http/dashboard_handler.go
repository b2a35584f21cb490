package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/service"
)

type DashboardHandler struct {
	logger    *zap.Logger
	dashboard *service.DashboardService
}

func NewDashboardHandler(logger *zap.Logger, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{logger: logger, dashboard: dashboard}
}

// Get maneja GET /api/dashboard?range=7d|30d|90d.
func (h *DashboardHandler) Get(c *gin.Context) {
	report, err := h.dashboard.Report(c.Request.Context(), GetClientID(c), c.Query("range"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time range"})
			return
		}
		h.logger.Error("dashboard report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": report})
}
