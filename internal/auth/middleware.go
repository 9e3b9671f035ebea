package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
)

// Middleware gates API access when local auth is enabled.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths: map[string]bool{
			"/health":        true,
			"/ping":          true,
			"/auth/login":    true,
			"/auth/register": true,
		},
	}
}

// Handler returns a Gin middleware that rejects unauthenticated requests to
// non-public paths with a 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.service.IsAuthEnabled() || m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		userID := m.sessionManager.SessionUserID(c.Request)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "UNAUTHORIZED",
				"path":  c.Request.URL.Path,
			})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUsername, m.sessionManager.GetString(c.Request.Context(), SessionKeyUsername))
		c.Next()
	}
}

func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	// Trailing-slash variants
	return m.publicPaths[strings.TrimRight(path, "/")]
}
