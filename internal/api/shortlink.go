package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects /s/<code>/ to the recipe page of the
// frontend. It is mounted outside /api.
type ShortLinkHandler struct {
	shortLinks service.IShortLinkService
	publicURL  string
}

func NewShortLinkHandler(shortLinks service.IShortLinkService, publicURL string) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinks: shortLinks, publicURL: publicURL}
}

func (h *ShortLinkHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/s/:code/", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	recipeID, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/recipes/%d/", baseURL(c, h.publicURL), recipeID))
}
