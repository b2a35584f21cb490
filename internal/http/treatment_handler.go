package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecovision/internal/service"
)

type TreatmentHandler struct {
	catalog *service.TreatmentCatalog
}

func NewTreatmentHandler(catalog *service.TreatmentCatalog) *TreatmentHandler {
	return &TreatmentHandler{catalog: catalog}
}

// List maneja GET /api/treatments.
func (h *TreatmentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"treatments": h.catalog.All()})
}

// Get maneja GET /api/treatments/:label.
func (h *TreatmentHandler) Get(c *gin.Context) {
	info, err := h.catalog.Lookup(c.Param("label"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown label"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"treatment": info})
}
