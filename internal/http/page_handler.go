package http

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/inference"
	"ecovision/internal/service"
	"ecovision/internal/weather"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageServices agrupa los servicios que usan las páginas HTML.
type PageServices struct {
	Languages *service.LanguageService
	Chat      *service.ChatService
	Analysis  *service.AnalysisService
	History   *service.HistoryService
	Weather   *service.WeatherService
	Dashboard *service.DashboardService
}

// PageHandler renderiza la interfaz web en el idioma activo del cliente.
type PageHandler struct {
	logger       *zap.Logger
	svc          PageServices
	detectionURL string
	maxBytes     int64
	templates    *template.Template
}

func NewPageHandler(logger *zap.Logger, svc PageServices, detectionURL string, maxBytes int64) (*PageHandler, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
		"hour": func(t time.Time) string { return t.Local().Format("15:04") },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &PageHandler{
		logger:       logger,
		svc:          svc,
		detectionURL: detectionURL,
		maxBytes:     maxBytes,
		templates:    tmpl,
	}, nil
}

// pageData es lo que recibe cada plantilla. Body cambia según la página.
type pageData struct {
	T         func(string) string
	Lang      string
	Languages []domain.Language
	Path      string
	Notice    *notice
	Body      any
}

// LanguageQueryMiddleware aplica ?lang= y lo persiste como preferencia.
func (h *PageHandler) LanguageQueryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if code := strings.TrimSpace(c.Query("lang")); code != "" {
			if _, err := h.svc.Languages.SetLanguage(c.Request.Context(), GetClientID(c), code); err != nil {
				h.logger.Debug("ignoring language query", zap.String("lang", code), zap.Error(err))
			}
		}
		c.Next()
	}
}

func (h *PageHandler) render(c *gin.Context, status int, name string, n *notice, body any) {
	tr := h.svc.Languages.Translator(c.Request.Context(), GetClientID(c))
	c.HTML(status, name, pageData{
		T:         tr.T,
		Lang:      tr.Language(),
		Languages: h.svc.Languages.Languages(),
		Path:      c.Request.URL.Path,
		Notice:    n,
		Body:      body,
	})
}

func (h *PageHandler) noticeFor(c *gin.Context, key string) *notice {
	return localizedNotice(h.svc.Languages.Translator(c.Request.Context(), GetClientID(c)), key)
}

type homeBody struct {
	History []domain.AnalysisResult
	Latest  *domain.AnalysisResult
}

// Home muestra el formulario de diagnóstico y el historial.
func (h *PageHandler) Home(c *gin.Context) {
	h.renderHome(c, http.StatusOK, nil)
}

func (h *PageHandler) renderHome(c *gin.Context, status int, n *notice) {
	items, err := h.svc.History.List(c.Request.Context(), GetClientID(c))
	if err != nil {
		h.logger.Error("failed to load history", zap.Error(err))
	}
	body := homeBody{History: items}
	if saved := c.Query("saved"); saved != "" {
		for i := range items {
			if items[i].ID == saved {
				body.Latest = &items[i]
				if n == nil {
					n = &notice{Title: h.svc.Languages.Translate(c.Request.Context(), GetClientID(c), "analysisSaved")}
				}
				break
			}
		}
	}
	if c.Query("cleared") != "" && n == nil {
		n = &notice{Title: h.svc.Languages.Translate(c.Request.Context(), GetClientID(c), "historyCleared")}
	}
	h.render(c, status, "index.html", n, body)
}

// Analyze recibe la foto, la diagnostica y guarda el resultado en el historial.
func (h *PageHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := GetClientID(c)

	img, err := readUpload(c, "image", h.maxBytes)
	if err != nil {
		h.logger.Warn("invalid upload", zap.Error(err))
		h.renderHome(c, http.StatusBadRequest, h.noticeFor(c, "invalidFileType"))
		return
	}

	draft, err := h.svc.Analysis.Analyze(ctx, clientID, img)
	if err != nil {
		switch {
		case errors.Is(err, inference.ErrNotAnImage), errors.Is(err, inference.ErrEmptyImage):
			h.renderHome(c, http.StatusUnsupportedMediaType, h.noticeFor(c, "invalidFileType"))
		case errors.Is(err, service.ErrBusy):
			h.renderHome(c, http.StatusConflict, &notice{Title: h.svc.Languages.Translate(ctx, clientID, "analyzing")})
		default:
			h.logger.Error("analysis failed", zap.Error(err))
			h.renderHome(c, http.StatusBadGateway, &notice{Title: h.svc.Languages.Translate(ctx, clientID, "error")})
		}
		return
	}

	saved, err := h.svc.History.Add(ctx, clientID, draft)
	if err != nil {
		h.logger.Error("failed to save analysis", zap.Error(err))
		h.renderHome(c, http.StatusInternalServerError, &notice{Title: h.svc.Languages.Translate(ctx, clientID, "error")})
		return
	}
	c.Redirect(http.StatusSeeOther, "/?saved="+saved.ID)
}

// RemoveHistory borra una entrada desde el formulario del historial.
func (h *PageHandler) RemoveHistory(c *gin.Context) {
	err := h.svc.History.Remove(c.Request.Context(), GetClientID(c), c.Param("id"))
	if err != nil && !errors.Is(err, service.ErrHistoryNotFound) {
		h.logger.Error("failed to remove history entry", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ClearHistory vacía el historial del cliente.
func (h *PageHandler) ClearHistory(c *gin.Context) {
	if err := h.svc.History.Clear(c.Request.Context(), GetClientID(c)); err != nil {
		h.logger.Error("failed to clear history", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/?cleared=1")
}

type weatherBody struct {
	Location string
	Snapshot *domain.WeatherSnapshot
}

// Weather muestra el formulario de clima y, si hay consulta, el reporte.
func (h *PageHandler) Weather(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := GetClientID(c)
	body := weatherBody{Location: c.Query("location")}

	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	_, hasLocation := c.GetQuery("location")
	if !hasLocation && latRaw == "" && lonRaw == "" {
		h.render(c, http.StatusOK, "weather.html", nil, body)
		return
	}

	var (
		snap domain.WeatherSnapshot
		err  error
	)
	if latRaw != "" || lonRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat != nil || errLon != nil {
			err = weather.ErrInvalidCoordinates
		} else {
			snap, err = h.svc.Weather.ByCoordinates(ctx, clientID, lat, lon)
		}
	} else {
		snap, err = h.svc.Weather.ByLocation(ctx, clientID, body.Location)
	}

	switch {
	case err == nil:
		body.Snapshot = &snap
		body.Location = snap.Location
		h.render(c, http.StatusOK, "weather.html", nil, body)
	case errors.Is(err, weather.ErrLocationRequired):
		h.render(c, http.StatusBadRequest, "weather.html", h.noticeFor(c, "locationRequired"), body)
	case errors.Is(err, weather.ErrInvalidCoordinates):
		h.render(c, http.StatusBadRequest, "weather.html", h.noticeFor(c, "geolocationUnsupported"), body)
	case errors.Is(err, service.ErrBusy):
		h.render(c, http.StatusConflict, "weather.html", &notice{Title: h.svc.Languages.Translate(ctx, clientID, "loading")}, body)
	default:
		h.logger.Error("weather lookup failed", zap.Error(err))
		h.render(c, http.StatusBadGateway, "weather.html", &notice{Title: h.svc.Languages.Translate(ctx, clientID, "error")}, body)
	}
}

type chatbotBody struct {
	Messages       []domain.ChatMessage
	QuickQuestions []domain.QuickQuestion
}

// Chatbot muestra la conversación. Si solo está el saludo y el idioma cambió,
// se reinicia con el saludo nuevo.
func (h *PageHandler) Chatbot(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := GetClientID(c)
	messages := h.svc.Chat.Transcript(clientID)
	lang := h.svc.Languages.Current(ctx, clientID)
	if len(messages) == 0 || (len(messages) == 1 && messages[0].Language != lang) {
		messages = []domain.ChatMessage{h.svc.Chat.Welcome(ctx, clientID)}
	}
	h.render(c, http.StatusOK, "chatbot.html", nil, chatbotBody{
		Messages:       messages,
		QuickQuestions: h.svc.Chat.QuickQuestions(),
	})
}

// ChatbotSend procesa el formulario del chat y vuelve a la conversación.
func (h *PageHandler) ChatbotSend(c *gin.Context) {
	ctx := c.Request.Context()
	_, _, err := h.svc.Chat.Send(ctx, GetClientID(c), c.PostForm("text"), c.PostForm("language"))
	switch {
	case err == nil, errors.Is(err, service.ErrEmptyMessage):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	default:
		h.logger.Error("chat reply failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/chatbot")
}

// Dashboard muestra el panel para el rango ?range=7d|30d|90d.
func (h *PageHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := GetClientID(c)
	report, err := h.svc.Dashboard.Report(ctx, clientID, c.Query("range"))
	if errors.Is(err, service.ErrInvalidTimeRange) {
		report, err = h.svc.Dashboard.Report(ctx, clientID, "")
		if err == nil {
			h.render(c, http.StatusBadRequest, "dashboard.html", &notice{Title: h.svc.Languages.Translate(ctx, clientID, "error")}, report)
			return
		}
	}
	if err != nil {
		h.logger.Error("dashboard report failed", zap.Error(err))
		h.render(c, http.StatusInternalServerError, "dashboard.html", &notice{Title: h.svc.Languages.Translate(ctx, clientID, "error")}, nil)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", nil, report)
}

// DiseaseDetection redirige a la herramienta externa de detección.
func (h *PageHandler) DiseaseDetection(c *gin.Context) {
	c.Redirect(http.StatusFound, h.detectionURL)
}

// NotFound registra la ruta inexistente y muestra la página 404.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.logger.Warn("route not found", zap.String("path", c.Request.URL.Path))
	h.render(c, http.StatusNotFound, "notfound.html", nil, nil)
}
