package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/i18n"
	"ecovision/internal/service"
	"ecovision/internal/weather"
)

// WeatherHandler expone el panel de clima.
type WeatherHandler struct {
	logger    *zap.Logger
	weather   *service.WeatherService
	languages *service.LanguageService
}

func NewWeatherHandler(logger *zap.Logger, weather *service.WeatherService, languages *service.LanguageService) *WeatherHandler {
	return &WeatherHandler{logger: logger, weather: weather, languages: languages}
}

// Get maneja GET /api/weather?location= o ?lat=&lon=.
func (h *WeatherHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := GetClientID(c)
	tr := h.languages.Translator(ctx, clientID)

	latRaw, lonRaw := strings.TrimSpace(c.Query("lat")), strings.TrimSpace(c.Query("lon"))
	if latRaw != "" || lonRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat != nil || errLon != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
			return
		}
		snap, err := h.weather.ByCoordinates(ctx, clientID, lat, lon)
		if err != nil {
			h.writeError(c, err, tr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"weather": snap})
		return
	}

	snap, err := h.weather.ByLocation(ctx, clientID, c.Query("location"))
	if err != nil {
		h.writeError(c, err, tr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": snap})
}

func (h *WeatherHandler) writeError(c *gin.Context, err error, tr i18n.Translator) {
	switch {
	case errors.Is(err, weather.ErrLocationRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "location required",
			"notice": localizedNotice(tr, "locationRequired"),
		})
	case errors.Is(err, weather.ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "weather request already in progress"})
	default:
		h.logger.Error("weather lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather unavailable"})
	}
}
