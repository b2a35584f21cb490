package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Pages      *PageHandler
	Language   *LanguageHandler
	Chat       *ChatHandler
	ChatSocket *ChatSocketHandler
	Analysis   *AnalysisHandler
	History    *HistoryHandler
	Weather    *WeatherHandler
	Dashboard  *DashboardHandler
	Treatments *TreatmentHandler
}

// NewRouter configura el router de Gin con middlewares, páginas y API.
func NewRouter(logger *zap.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), ClientIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.Pages != nil {
		r.SetHTMLTemplate(h.Pages.templates)
		pages := r.Group("/", h.Pages.LanguageQueryMiddleware())
		pages.GET("", h.Pages.Home)
		pages.POST("analyze", h.Pages.Analyze)
		pages.POST("history/clear", h.Pages.ClearHistory)
		pages.POST("history/:id/delete", h.Pages.RemoveHistory)
		pages.GET("weather", h.Pages.Weather)
		pages.GET("chatbot", h.Pages.Chatbot)
		pages.POST("chatbot", h.Pages.ChatbotSend)
		pages.GET("dashboard", h.Pages.Dashboard)
		pages.GET("disease-detection", h.Pages.DiseaseDetection)
	}

	if h.ChatSocket != nil {
		r.GET("/ws/chat", h.ChatSocket.Serve)
	}

	api := r.Group("/api", jsonContentTypeMiddleware())
	if h.Language != nil {
		api.GET("/languages", h.Language.List)
		api.GET("/language", h.Language.Current)
		api.PUT("/language", h.Language.Set)
		api.GET("/translations", h.Language.Table)
		api.GET("/translate/:key", h.Language.Translate)
	}
	if h.Chat != nil {
		api.GET("/chat/welcome", h.Chat.Welcome)
		api.GET("/chat/quick-questions", h.Chat.QuickQuestions)
		api.GET("/chat/transcript", h.Chat.Transcript)
		api.POST("/chat", h.Chat.PostMessage)
	}
	if h.Analysis != nil {
		api.POST("/analysis", h.Analysis.Analyze)
	}
	if h.History != nil {
		api.GET("/history", h.History.List)
		api.POST("/history", h.History.Add)
		api.DELETE("/history/:id", h.History.Remove)
		api.DELETE("/history", h.History.Clear)
	}
	if h.Weather != nil {
		api.GET("/weather", h.Weather.Get)
	}
	if h.Dashboard != nil {
		api.GET("/dashboard", h.Dashboard.Get)
	}
	if h.Treatments != nil {
		api.GET("/treatments", h.Treatments.List)
		api.GET("/treatments/:label", h.Treatments.Get)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || h.Pages == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.Pages.NotFound(c)
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en la API.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
