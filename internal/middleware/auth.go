package middleware

import (
	"net/http"
	"strings"

	"recipehub/internal/authz"
	"recipehub/internal/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthRequired rejects requests without a valid bearer token and stores the
// resolved identity in the request context.
func AuthRequired(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := resolveIdentity(c, authService)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			c.Abort()
			return
		}
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// AuthOptional resolves an identity when a valid token is present and treats
// the caller as anonymous otherwise. Public reads use this so the visibility
// policy sees who is asking.
func AuthOptional(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := resolveIdentity(c, authService); ok && identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// resolveIdentity parses the Authorization header. The second return value is
// false only for a malformed or invalid token; a missing header resolves to
// (nil, true), i.e. anonymous.
func resolveIdentity(c *gin.Context, authService service.AuthService) (*authz.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	identity, err := claims.Identity()
	if err != nil {
		return nil, false
	}
	return identity, true
}

// Identity returns the authenticated identity from the request context, or
// nil for anonymous callers.
func Identity(c *gin.Context) *authz.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*authz.Identity)
	if !ok {
		return nil
	}
	return identity
}
