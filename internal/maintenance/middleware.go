// Package maintenance blocks member writes while maintenance mode is on.
package maintenance

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

// ContextKey names for maintenance state in the request context, read by
// templates to render the banner.
const (
	ContextKeyMaintenanceMode    = "maintenance_mode"
	ContextKeyMaintenanceMessage = "maintenance_message"
)

// Middleware consults the settings store on each request so toggling
// maintenance mode takes effect without a restart. Staff accounts keep full
// access; members can still read and log in.
type Middleware struct {
	settings *settingsstore.SettingsStore
}

// NewMiddleware creates a maintenance mode middleware.
func NewMiddleware(settings *settingsstore.SettingsStore) *Middleware {
	return &Middleware{settings: settings}
}

// Handler returns a Gin middleware that blocks member write operations
// while maintenance mode is active.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, message := m.settings.MaintenanceMode()

		c.Set(ContextKeyMaintenanceMode, enabled)
		c.Set(ContextKeyMaintenanceMessage, message)

		if !enabled {
			c.Next()
			return
		}

		// Reads are always allowed
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		// Staff keep full access so they can turn maintenance off
		if auth.GetUserRole(c).IsStaff() {
			c.Next()
			return
		}

		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c, message)
	}
}

// isAllowedPath lists the writes that must keep working during
// maintenance. Intentionally restrictive.
func (m *Middleware) isAllowedPath(path string) bool {
	allowedPaths := []string{
		"/login",
		"/logout",
		"/setup",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// respondBlocked answers 503 with the configured message.
func (m *Middleware) respondBlocked(c *gin.Context, message string) {
	if message == "" {
		message = "The library is temporarily closed for maintenance. Please try again later."
	}

	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":            message,
			"maintenance_mode": true,
		})
		c.Abort()
		return
	}

	c.String(http.StatusServiceUnavailable, message)
	c.Abort()
}
