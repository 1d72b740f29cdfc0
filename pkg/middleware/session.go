package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
)

// ContextKeySessionID is the gin context key of the browser session id
const ContextKeySessionID = "session_id"

const defaultSessionCookie = "storefront_sid"

// SessionConfig configures the browser session middleware
type SessionConfig struct {
	CookieName string
	MaxAge     int
	Secure     bool
}

// BrowserSession identifies the browser by cookie or X-Session-ID header and
// issues a new id when neither is present. The id is echoed back in both.
func BrowserSession(config SessionConfig) gin.HandlerFunc {
	name := config.CookieName
	if name == "" {
		name = defaultSessionCookie
	}

	return func(c *gin.Context) {
		sessionID := c.GetHeader(HeaderSessionID)
		if sessionID == "" {
			if cookie, err := c.Cookie(name); err == nil {
				sessionID = cookie
			}
		}
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, sessionID, config.MaxAge, "/", "", config.Secure, true)
		c.Header(HeaderSessionID, sessionID)

		c.Set(ContextKeySessionID, sessionID)
		ctx := context.WithValue(c.Request.Context(), logger.SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID returns the browser session id set by BrowserSession
func GetSessionID(c *gin.Context) string {
	id, _ := getString(c, ContextKeySessionID)
	return id
}
