package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/config"
)

// ContextKeyIdentity holds the request Identity in the gin context.
const ContextKeyIdentity = "auth_identity"

// Middleware resolves the request identity from a bearer token.
type Middleware struct {
	service *Service
	config  config.Auth
}

func NewMiddleware(service *Service, cfg config.Auth) *Middleware {
	return &Middleware{service: service, config: cfg}
}

// Handler injects the request identity. Requests without a token, and every
// request when auth is disabled, are anonymous. A token that does not
// resolve is rejected rather than silently downgraded.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone || m.service == nil {
		return func(c *gin.Context) {
			c.Set(ContextKeyIdentity, Anonymous)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			c.Set(ContextKeyIdentity, Anonymous)
			c.Next()
			return
		}

		user, err := m.service.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				log.Printf("Auth: token lookup failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set(ContextKeyIdentity, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAdmin aborts with 401 for anonymous requests and 403 for signed-in
// users without the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if _, ok := identity.UserID(); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity set by Handler, or Anonymous.
func GetIdentity(c *gin.Context) Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(Identity); ok {
			return identity
		}
	}
	return Anonymous
}
