package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
	ClaimsKey   = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			Abort(c, http.StatusUnauthorized, i18n.M(i18n.AuthRequired))
			return
		}
		if !ok || !authenticate(c, validator, token) {
			Abort(c, http.StatusUnauthorized, i18n.M(i18n.TokenInvalid))
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent and lets
// anonymous requests through. A token that is sent but invalid is rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !ok || !authenticate(c, validator, token) {
			Abort(c, http.StatusUnauthorized, i18n.M(i18n.TokenInvalid))
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers without role. It must run after
// AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != role {
			Abort(c, http.StatusForbidden, i18n.M(i18n.PermissionDenied))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	v, _ := id.(uint)
	return v
}

// Claims returns the validated token claims, or nil.
func Claims(c *gin.Context) *types.TokenClaims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*types.TokenClaims)
	return claims
}

// bearerToken accepts "Bearer <t>" and "Token <t>".
func bearerToken(c *gin.Context) (token string, present, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		return "", true, false
	}
	return parts[1], true, true
}

func authenticate(c *gin.Context, validator TokenValidator, token string) bool {
	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return false
	}
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(RoleKey, claims.Role)
	c.Set(ClaimsKey, claims)
	return true
}
