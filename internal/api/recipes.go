package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes and the per-user actions on them.
type RecipeHandler struct {
	recipes    service.IRecipeService
	bookmarks  service.IBookmarkService
	shopping   service.IShoppingListService
	shortLinks service.IShortLinkService
	validator  middleware.TokenValidator
	// createLimiter runs after authentication on POST /recipes/.
	createLimiter gin.HandlerFunc
	publicURL     string
}

// RecipeHandlerDeps groups the collaborators of RecipeHandler.
type RecipeHandlerDeps struct {
	Recipes       service.IRecipeService
	Bookmarks     service.IBookmarkService
	Shopping      service.IShoppingListService
	ShortLinks    service.IShortLinkService
	Validator     middleware.TokenValidator
	CreateLimiter gin.HandlerFunc
	PublicURL     string
}

func NewRecipeHandler(deps RecipeHandlerDeps) *RecipeHandler {
	limiter := deps.CreateLimiter
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	return &RecipeHandler{
		recipes:       deps.Recipes,
		bookmarks:     deps.Bookmarks,
		shopping:      deps.Shopping,
		shortLinks:    deps.ShortLinks,
		validator:     deps.Validator,
		createLimiter: limiter,
		publicURL:     deps.PublicURL,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)
	optionalAuth := middleware.OptionalAuth(h.validator)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", optionalAuth, h.ListRecipes)
		recipes.POST("/", requireAuth, h.createLimiter, h.CreateRecipe)
		recipes.GET("/download_shopping_cart/", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id/", optionalAuth, h.GetRecipe)
		recipes.PATCH("/:id/", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id/", requireAuth, h.DeleteRecipe)
		recipes.GET("/:id/get-link/", h.GetLink)

		recipes.POST("/:id/favorite/", requireAuth, h.addBookmark(service.Favorites))
		recipes.DELETE("/:id/favorite/", requireAuth, h.removeBookmark(service.Favorites))
		recipes.POST("/:id/shopping_cart/", requireAuth, h.addBookmark(service.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart/", requireAuth, h.removeBookmark(service.ShoppingCart))
	}
}

// ListRecipes supports ?author, repeated ?tags and the viewer-relative
// ?is_favorited=1 and ?is_in_shopping_cart=1 filters.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewerID := middleware.UserID(c)

	var filter service.RecipeFilter
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, service.Field("author", i18n.FieldInvalidFormat))
			return
		}
		filter.AuthorID = uint(author)
	}
	filter.Tags = c.QueryArray("tags")
	if viewerID != 0 {
		if flagSet(c.Query("is_favorited")) {
			filter.FavoritedBy = viewerID
		}
		if flagSet(c.Query("is_in_shopping_cart")) {
			filter.InCartOf = viewerID
		}
	}

	page := pageFromQuery(c)
	recipes, count, err := h.recipes.List(c.Request.Context(), viewerID, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, page, count, recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addBookmark(kind service.BookmarkKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, service.ErrRecipeNotFound)
		if !ok {
			return
		}
		recipe, err := h.bookmarks.Add(c.Request.Context(), kind, middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

func (h *RecipeHandler) removeBookmark(kind service.BookmarkKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, service.ErrRecipeNotFound)
		if !ok {
			return
		}
		if err := h.bookmarks.Remove(c.Request.Context(), kind, middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated shopping list as a text
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shopping.Build(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	header := i18n.M(i18n.ShoppingListHeader).Localize(middleware.Printer(c))
	body := service.RenderShoppingList(header, items)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	code, err := h.shortLinks.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", baseURL(c, h.publicURL), code),
	})
}

func flagSet(v string) bool {
	return v == "1" || v == "true"
}
