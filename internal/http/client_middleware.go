package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	clientIDKey     = "client_id"
	clientCookie    = "ecovision_client"
	clientHeader    = "X-Client-ID"
	clientCookieTTL = 365 * 24 * 60 * 60
)

// ClientIDMiddleware identifica al cliente por header o cookie y emite una
// cookie nueva la primera vez. Historial e idioma se guardan por cliente.
func ClientIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := normalizeClientID(c.GetHeader(clientHeader))
		if id == "" {
			if cookie, err := c.Cookie(clientCookie); err == nil {
				id = normalizeClientID(cookie)
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(clientCookie, id, clientCookieTTL, "/", "", false, true)
		}
		c.Set(clientIDKey, id)
		c.Next()
	}
}

// GetClientID obtiene el id de cliente guardado por el middleware.
func GetClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

func normalizeClientID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.String()
}
