package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// UserHandler serves profiles, avatars and subscriptions.
type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	validator     middleware.TokenValidator
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, validator middleware.TokenValidator) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		validator:     validator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)
	optionalAuth := middleware.OptionalAuth(h.validator)

	users := router.Group("/users")
	{
		users.GET("/", optionalAuth, h.ListUsers)
		users.GET("/me/", requireAuth, h.Me)
		users.PUT("/me/avatar/", requireAuth, h.SetAvatar)
		users.DELETE("/me/avatar/", requireAuth, h.DeleteAvatar)
		users.GET("/subscriptions/", requireAuth, h.ListSubscriptions)
		users.GET("/:id/", optionalAuth, h.GetUser)
		users.POST("/:id/subscribe/", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe/", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageFromQuery(c)
	users, count, err := h.users.List(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, page, count, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	user, err := h.users.Get(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.users.SetAvatar(c.Request.Context(), middleware.UserID(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	sub, err := h.subscriptions.Subscribe(c.Request.Context(), middleware.UserID(c), authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}
	page := pageFromQuery(c)
	subs, count, err := h.subscriptions.List(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, page, count, subs))
}

// pathID parses the :id segment. Anything that is not a positive integer
// cannot name an object, so it answers with notFound.
func pathID(c *gin.Context, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, notFound)
		return 0, false
	}
	return uint(id), true
}

// recipesLimit reads ?recipes_limit. Absent or non-positive means all.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, service.Field("recipes_limit", i18n.FieldInvalidFormat))
		return 0, false
	}
	return limit, true
}
