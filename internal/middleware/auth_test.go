package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

type stubValidator map[string]*types.TokenClaims

func (v stubValidator) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

var validator = stubValidator{
	"user-token":  {UserID: 7, Username: "cook", Role: models.RoleUser},
	"admin-token": {UserID: 1, Username: "root", Role: models.RoleAdmin},
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	bundle, err := i18n.NewBundle("ru")
	require.NoError(t, err)

	router := gin.New()
	router.Use(Locale(bundle))
	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "username": c.GetString(UsernameKey)})
	}
	router.GET("/private", AuthMiddleware(validator), whoami)
	router.GET("/public", OptionalAuth(validator), whoami)
	router.GET("/admin", AuthMiddleware(validator), RequireRole(models.RoleAdmin), whoami)
	return router
}

func doRequest(router http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter(t)

	tests := []struct {
		name   string
		auth   string
		status int
		errMsg string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"bearer token", "Bearer user-token", http.StatusOK, ""},
		{"token scheme", "Token user-token", http.StatusOK, ""},
		{"unknown scheme", "Basic user-token", http.StatusUnauthorized, "Invalid token."},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "Invalid token."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(router, "/private", tt.auth)
			assert.Equal(t, tt.status, rr.Code)
			body := decode(t, rr)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["errors"])
				return
			}
			assert.Equal(t, float64(7), body["user_id"])
			assert.Equal(t, "cook", body["username"])
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(router, "/public", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), decode(t, rr)["user_id"])

	rr = doRequest(router, "/public", "Token user-token")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(7), decode(t, rr)["user_id"])

	rr = doRequest(router, "/public", "Token expired")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(router, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "You do not have permission to perform this action.", decode(t, rr)["errors"])

	rr = doRequest(router, "/admin", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLocale(t *testing.T) {
	bundle, err := i18n.NewBundle("ru")
	require.NoError(t, err)

	router := gin.New()
	router.Use(Locale(bundle))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, i18n.M(i18n.FieldMaxValue, 32000).Localize(Printer(c)))
	})

	tests := []struct {
		accept   string
		language string
		body     string
	}{
		{"", "ru", "Убедитесь, что это значение меньше либо равно 32000."},
		{"en-GB", "en", "Ensure this value is less than or equal to 32000."},
		{"de-DE,en;q=0.5", "en", "Ensure this value is less than or equal to 32000."},
		{"fr", "ru", "Убедитесь, что это значение меньше либо равно 32000."},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.accept != "" {
			req.Header.Set("Accept-Language", tt.accept)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, tt.body, rr.Body.String(), tt.accept)
		assert.Equal(t, tt.language, rr.Header().Get("Content-Language"), tt.accept)
	}
}
