package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/inference"
	"ecovision/internal/service"
)

// AnalysisHandler recibe fotos de cultivos y devuelve el diagnóstico.
type AnalysisHandler struct {
	logger    *zap.Logger
	analysis  *service.AnalysisService
	languages *service.LanguageService
	maxBytes  int64
}

func NewAnalysisHandler(logger *zap.Logger, analysis *service.AnalysisService, languages *service.LanguageService, maxBytes int64) *AnalysisHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &AnalysisHandler{logger: logger, analysis: analysis, languages: languages, maxBytes: maxBytes}
}

// Analyze maneja POST /api/analysis (multipart, campo "image").
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	img, err := readUpload(c, "image", h.maxBytes)
	if err != nil {
		h.logger.Warn("invalid upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), GetClientID(c), img)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *AnalysisHandler) writeError(c *gin.Context, err error) {
	tr := h.languages.Translator(c.Request.Context(), GetClientID(c))
	switch {
	case errors.Is(err, inference.ErrNotAnImage), errors.Is(err, inference.ErrEmptyImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":  "invalid file type",
			"notice": localizedNotice(tr, "invalidFileType"),
		})
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
	default:
		h.logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
	}
}

// readUpload lee el archivo del formulario con un tope de tamaño.
func readUpload(c *gin.Context, field string, maxBytes int64) (inference.Image, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)
	fh, err := c.FormFile(field)
	if err != nil {
		return inference.Image{}, err
	}
	if fh.Size > maxBytes {
		return inference.Image{}, errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return inference.Image{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return inference.Image{}, err
	}
	return inference.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
