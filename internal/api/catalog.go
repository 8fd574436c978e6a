package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// CatalogHandler serves tags and ingredients. Both lists are public and
// unpaginated; only admins add entries.
type CatalogHandler struct {
	catalog   service.ICatalogService
	validator middleware.TokenValidator
}

func NewCatalogHandler(catalog service.ICatalogService, validator middleware.TokenValidator) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		validator: validator,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := []gin.HandlerFunc{
		middleware.AuthMiddleware(h.validator),
		middleware.RequireRole(models.RoleAdmin),
	}

	tags := router.Group("/tags")
	{
		tags.GET("/", h.ListTags)
		tags.GET("/:id/", h.GetTag)
		tags.POST("/", append(adminOnly, h.CreateTag)...)
	}

	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/", h.ListIngredients)
		ingredients.GET("/:id/", h.GetIngredient)
		ingredients.POST("/", append(adminOnly, h.CreateIngredient)...)
	}
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, service.ErrTagNotFound)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req types.CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// ListIngredients filters by a case-insensitive name prefix in ?name.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, service.ErrNotFound)
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.catalog.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}
