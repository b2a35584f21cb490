package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/chat"
	"ecovision/internal/domain"
	"ecovision/internal/i18n"
	"ecovision/internal/inference"
	"ecovision/internal/repository"
	"ecovision/internal/service"
	"ecovision/internal/weather"
)

const testClientID = "6f1c2b1e-8a7d-4c39-9b7e-1f2a3b4c5d6e"

const testDetectionURL = "http://detector.local:8501"

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type testApp struct {
	router     *gin.Engine
	classifier *inference.StubClassifier
	history    *service.HistoryService
	socket     *ChatSocketHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithBus(t, nil)
}

// newTestAppWithBus arma la app con un bus de chat propio para el WebSocket.
func newTestAppWithBus(t *testing.T, bus chatBus) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	catalog, err := i18n.NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	store := repository.NewMemoryStore()
	languages := service.NewLanguageService(catalog, repository.NewPreferenceRepository(store), "en", logger)
	responder, err := chat.NewResponder(catalog)
	if err != nil {
		t.Fatalf("responder: %v", err)
	}
	treatments, err := service.NewTreatmentCatalog()
	if err != nil {
		t.Fatalf("treatments: %v", err)
	}

	stub := &inference.StubClassifier{Result: domain.AnalysisDraft{
		CropName:   "Tomato",
		Issue:      "Early Blight",
		Confidence: 89,
		Diagnosis:  "Fungal spots on lower leaves.",
		Treatment:  "Remove affected leaves.",
	}}
	guard := service.NewMemoryBusyGuard()
	history := service.NewHistoryService(repository.NewHistoryRepository(store), logger)
	chatSvc := service.NewChatService(responder, languages, 0, logger)
	analysis := service.NewAnalysisService(stub, guard, logger)
	weatherSvc := service.NewWeatherService(weather.NewMockProvider(0, 1), languages, guard, logger)
	dashboard := service.NewDashboardService(history)

	pages, err := NewPageHandler(logger, PageServices{
		Languages: languages,
		Chat:      chatSvc,
		Analysis:  analysis,
		History:   history,
		Weather:   weatherSvc,
		Dashboard: dashboard,
	}, testDetectionURL, 1<<20)
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	socket := newChatSocketHandler(logger, chatSvc, bus)

	router := NewRouter(logger, Handlers{
		Pages:      pages,
		Language:   NewLanguageHandler(logger, languages),
		Chat:       NewChatHandler(logger, chatSvc),
		ChatSocket: socket,
		Analysis:   NewAnalysisHandler(logger, analysis, languages, 1<<20),
		History:    NewHistoryHandler(logger, history),
		Weather:    NewWeatherHandler(logger, weatherSvc, languages),
		Dashboard:  NewDashboardHandler(logger, dashboard),
		Treatments: NewTreatmentHandler(treatments),
	})
	return &testApp{router: router, classifier: stub, history: history, socket: socket}
}

func performRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(clientHeader, testClientID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	return performRequest(r, method, path, bytes.NewReader(raw), "application/json")
}

func multipartImage(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestClientCookieIssuedWithoutIdentity(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), clientCookie+"=") {
		t.Fatalf("expected client cookie, got %q", w.Header().Get("Set-Cookie"))
	}
}

func TestSetLanguagePersistsPerClient(t *testing.T) {
	app := newTestApp(t)

	w := performJSON(app.router, http.MethodPut, "/api/language", map[string]string{"code": "hi-IN"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = performRequest(app.router, http.MethodGet, "/api/language", nil, "")
	var resp struct {
		Language domain.Language `json:"language"`
	}
	decode(t, w, &resp)
	if resp.Language.Code != "hi" || resp.Language.SpeechLocale != "hi-IN" {
		t.Fatalf("unexpected language %+v", resp.Language)
	}

	w = performJSON(app.router, http.MethodPut, "/api/language", map[string]string{"code": "xx"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported language, got %d", w.Code)
	}
}

func TestTranslateFallsBackToKey(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/api/translate/noSuchKey", nil, "")
	var resp struct {
		Value string `json:"value"`
	}
	decode(t, w, &resp)
	if resp.Value != "noSuchKey" {
		t.Fatalf("expected key echo, got %q", resp.Value)
	}
}

func TestChatPostMessage(t *testing.T) {
	app := newTestApp(t)

	w := performJSON(app.router, http.MethodPost, "/api/chat", map[string]string{"text": "How do I deal with pests?"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		User      domain.ChatMessage `json:"user_message"`
		Assistant domain.ChatMessage `json:"assistant_message"`
	}
	decode(t, w, &resp)
	if resp.User.Sender != domain.SenderUser || resp.Assistant.Sender != domain.SenderAssistant {
		t.Fatalf("unexpected senders %+v %+v", resp.User, resp.Assistant)
	}
	if resp.Assistant.Content == "" || len(resp.Assistant.Suggestions) == 0 {
		t.Fatalf("expected reply with suggestions, got %+v", resp.Assistant)
	}
}

func TestChatEmptyMessageIgnored(t *testing.T) {
	app := newTestApp(t)
	w := performJSON(app.router, http.MethodPost, "/api/chat", map[string]string{"text": "   "})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestAnalysisRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	body, ct := multipartImage(t, "notes.txt", []byte("just some notes about my field"))

	w := performRequest(app.router, http.MethodPost, "/api/analysis", body, ct)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Invalid file type") {
		t.Fatalf("expected localized notice, got %s", w.Body.String())
	}
	if app.classifier.Calls() != 0 {
		t.Fatalf("classifier must not run for non-images")
	}
}

func TestAnalysisReturnsResult(t *testing.T) {
	app := newTestApp(t)
	body, ct := multipartImage(t, "leaf.png", pngBytes)

	w := performRequest(app.router, http.MethodPost, "/api/analysis", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result domain.AnalysisDraft `json:"result"`
	}
	decode(t, w, &resp)
	if resp.Result.Issue != "Early Blight" || app.classifier.Calls() != 1 {
		t.Fatalf("unexpected result %+v calls=%d", resp.Result, app.classifier.Calls())
	}
}

func TestHistoryLifecycle(t *testing.T) {
	app := newTestApp(t)

	w := performJSON(app.router, http.MethodPost, "/api/history", domain.AnalysisDraft{CropName: "Rice", Issue: "Healthy", Confidence: 95})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Entry domain.AnalysisResult `json:"entry"`
	}
	decode(t, w, &created)

	w = performRequest(app.router, http.MethodGet, "/api/history", nil, "")
	var list struct {
		History []domain.AnalysisResult `json:"history"`
	}
	decode(t, w, &list)
	if len(list.History) != 1 || list.History[0].ID != created.Entry.ID {
		t.Fatalf("unexpected history %+v", list.History)
	}

	w = performRequest(app.router, http.MethodDelete, "/api/history/"+created.Entry.ID, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = performRequest(app.router, http.MethodDelete, "/api/history/"+created.Entry.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}

	w = performJSON(app.router, http.MethodPost, "/api/history", domain.AnalysisDraft{CropName: "Rice"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete result, got %d", w.Code)
	}
}

func TestWeatherRequiresLocation(t *testing.T) {
	app := newTestApp(t)

	w := performRequest(app.router, http.MethodGet, "/api/weather?location=", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Location Required") {
		t.Fatalf("expected localized notice, got %s", w.Body.String())
	}

	w = performRequest(app.router, http.MethodGet, "/api/weather?location=Pune", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Weather domain.WeatherSnapshot `json:"weather"`
	}
	decode(t, w, &resp)
	if resp.Weather.Location != "Pune" || len(resp.Weather.Forecast) != 5 {
		t.Fatalf("unexpected snapshot %+v", resp.Weather)
	}
}

func TestWeatherRejectsBadCoordinates(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/api/weather?lat=abc&lon=10", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDashboardRejectsUnknownRange(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/api/dashboard?range=1y", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = performRequest(app.router, http.MethodGet, "/api/dashboard?range=7d", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestTreatmentLookup(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/api/treatments/Apple___Apple_scab", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(app.router, http.MethodGet, "/api/treatments/Banana___Nothing", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDiseaseDetectionRedirects(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/disease-detection", nil, "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != testDetectionURL {
		t.Fatalf("expected redirect to detector, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	w := performRequest(app.router, http.MethodGet, "/api/nope", nil, "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "not found") {
		t.Fatalf("expected JSON 404, got %d %s", w.Code, w.Body.String())
	}

	w = performRequest(app.router, http.MethodGet, "/no-such-page", nil, "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Oops! Page not found") {
		t.Fatalf("expected HTML 404, got %d %s", w.Code, w.Body.String())
	}
}

func TestHomeLanguageQuery(t *testing.T) {
	app := newTestApp(t)
	w := performRequest(app.router, http.MethodGet, "/?lang=es", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `<html lang="es">`) {
		t.Fatalf("expected spanish page")
	}

	// La preferencia queda guardada para las siguientes visitas.
	w = performRequest(app.router, http.MethodGet, "/", nil, "")
	if !strings.Contains(w.Body.String(), `<html lang="es">`) {
		t.Fatalf("expected persisted spanish preference")
	}
}

func TestHomeAnalyzeSavesToHistory(t *testing.T) {
	app := newTestApp(t)
	body, ct := multipartImage(t, "leaf.png", pngBytes)

	w := performRequest(app.router, http.MethodPost, "/analyze", body, ct)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "/?saved=") {
		t.Fatalf("unexpected redirect %q", location)
	}

	w = performRequest(app.router, http.MethodGet, location, nil, "")
	if !strings.Contains(w.Body.String(), "Saved to history") || !strings.Contains(w.Body.String(), "Early Blight") {
		t.Fatalf("expected saved result on home page")
	}
}

func TestHomeAnalyzeRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	body, ct := multipartImage(t, "notes.txt", []byte("plain text"))

	w := performRequest(app.router, http.MethodPost, "/analyze", body, ct)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please select an image file") {
		t.Fatalf("expected inline notice")
	}
}

func TestChatbotPageRoundTrip(t *testing.T) {
	app := newTestApp(t)

	w := performRequest(app.router, http.MethodGet, "/chatbot", nil, "")
	if !strings.Contains(w.Body.String(), "Welcome to the Farming Assistant") {
		t.Fatalf("expected welcome message")
	}

	form := url.Values{"text": {"Which fertilizer for wheat?"}}
	w = performRequest(app.router, http.MethodPost, "/chatbot", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}

	w = performRequest(app.router, http.MethodGet, "/chatbot", nil, "")
	if !strings.Contains(w.Body.String(), "Which fertilizer for wheat?") {
		t.Fatalf("expected user message in transcript")
	}
}

func TestWeatherPageLocationRequired(t *testing.T) {
	app := newTestApp(t)

	w := performRequest(app.router, http.MethodGet, "/weather", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(app.router, http.MethodGet, "/weather?location=", nil, "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Please enter a location") {
		t.Fatalf("expected location notice, got %d", w.Code)
	}
}
