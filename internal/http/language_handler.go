package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/service"
)

// LanguageHandler expone idiomas, idioma activo y traducciones.
type LanguageHandler struct {
	logger    *zap.Logger
	languages *service.LanguageService
}

func NewLanguageHandler(logger *zap.Logger, languages *service.LanguageService) *LanguageHandler {
	return &LanguageHandler{logger: logger, languages: languages}
}

// List maneja GET /api/languages.
func (h *LanguageHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": h.languages.Languages()})
}

// Current maneja GET /api/language.
func (h *LanguageHandler) Current(c *gin.Context) {
	code := h.languages.Current(c.Request.Context(), GetClientID(c))
	c.JSON(http.StatusOK, gin.H{"language": h.languages.Catalog().Language(code)})
}

// Set maneja PUT /api/language.
func (h *LanguageHandler) Set(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid set language request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	lang, err := h.languages.SetLanguage(c.Request.Context(), GetClientID(c), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
			return
		}
		h.logger.Error("persist language failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save language"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

// Table maneja GET /api/translations.
func (h *LanguageHandler) Table(c *gin.Context) {
	code := h.languages.Current(c.Request.Context(), GetClientID(c))
	c.JSON(http.StatusOK, gin.H{
		"language":     code,
		"translations": h.languages.Catalog().Table(code),
	})
}

// Translate maneja GET /api/translate/:key.
func (h *LanguageHandler) Translate(c *gin.Context) {
	key := c.Param("key")
	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": h.languages.Translate(c.Request.Context(), GetClientID(c), key),
	})
}
