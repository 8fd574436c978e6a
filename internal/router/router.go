package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/middleware"
)

// Handlers are the route groups of the application.
type Handlers struct {
	Auth       *api.AuthHandler
	Users      *api.UserHandler
	Catalog    *api.CatalogHandler
	Recipes    *api.RecipeHandler
	ShortLinks *api.ShortLinkHandler
	Health     *api.HealthHandler
}

// Options configure the engine around the handlers.
type Options struct {
	Bundle      *i18n.Bundle
	CORSOrigins []string
	// MediaDir is served at MediaURL when set.
	MediaDir string
	MediaURL string
	// TrustedProxies are the only peers whose forwarding headers are
	// believed. With none, ClientIP is the connection's remote address.
	TrustedProxies []string
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(
		middleware.ErrorHandler(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
		middleware.Locale(opts.Bundle),
	)

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.MediaDir != "" {
		router.Static(opts.MediaURL, opts.MediaDir)
	}

	v1 := router.Group("/api")
	h.Auth.RegisterRoutes(v1)
	h.Users.RegisterRoutes(v1)
	h.Catalog.RegisterRoutes(v1)
	h.Recipes.RegisterRoutes(v1)

	h.ShortLinks.RegisterRoutes(&router.RouterGroup)

	return router, nil
}
