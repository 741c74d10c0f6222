package freeze

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware rejects catalog writes while the catalog is frozen.
// Reads (GET, HEAD, OPTIONS) always pass.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write methods when frozen.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":          "The catalog is frozen; edits are disabled",
			"catalog_frozen": true,
		})
	}
}
