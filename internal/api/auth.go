// Package api holds the HTTP handlers of the Foodgram API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// AuthHandler serves sign-up, confirmation, login, logout and password
// changes.
type AuthHandler struct {
	authService service.IAuthService
	limiter     gin.HandlerFunc
}

// NewAuthHandler creates an auth handler. limiter guards the anonymous
// endpoints and may be nil.
func NewAuthHandler(authService service.IAuthService, limiter gin.HandlerFunc) *AuthHandler {
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.authService)

	router.POST("/users/", h.limiter, h.Signup)
	router.POST("/users/set_password/", requireAuth, h.SetPassword)

	auth := router.Group("/auth/token")
	{
		auth.POST("/", h.limiter, h.ObtainToken)
		auth.POST("/login/", h.limiter, h.Login)
		auth.POST("/logout/", requireAuth, h.Logout)
	}
}

// Signup registers a user and mails a confirmation code. Repeating the
// sign-up of an unconfirmed account resends the code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req types.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, created, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *AuthHandler) ObtainToken(c *gin.Context) {
	var req types.ConfirmationRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authService.ObtainToken(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AuthTokenResponse{AuthToken: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.SetPassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
