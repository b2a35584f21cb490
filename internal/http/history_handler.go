package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/service"
)

// HistoryHandler expone el historial de diagnósticos del cliente.
type HistoryHandler struct {
	logger  *zap.Logger
	history *service.HistoryService
}

func NewHistoryHandler(logger *zap.Logger, history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{logger: logger, history: history}
}

// List maneja GET /api/history.
func (h *HistoryHandler) List(c *gin.Context) {
	items, err := h.history.List(c.Request.Context(), GetClientID(c))
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	if items == nil {
		items = []domain.AnalysisResult{}
	}
	c.JSON(http.StatusOK, gin.H{"history": items})
}

// Add maneja POST /api/history.
func (h *HistoryHandler) Add(c *gin.Context) {
	var draft domain.AnalysisDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Warn("invalid history request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	entry, err := h.history.Add(c.Request.Context(), GetClientID(c), draft)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAnalysis) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis result"})
			return
		}
		h.logger.Error("add history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save history"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// Remove maneja DELETE /api/history/:id.
func (h *HistoryHandler) Remove(c *gin.Context) {
	err := h.history.Remove(c.Request.Context(), GetClientID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
			return
		}
		h.logger.Error("remove history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove entry"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear maneja DELETE /api/history.
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context(), GetClientID(c)); err != nil {
		h.logger.Error("clear history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}
