package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
)

// Deps are the long-lived resources the server is built from. Redis may
// be nil.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Store    storage.Store
	Bundle   *i18n.Bundle
	Notifier service.ConfirmationNotifier
}

// Server represents the HTTP server
type Server struct {
	router        *gin.Engine
	http          *http.Server
	clientLimiter *middleware.ClientRateLimiter
}

// New wires services and handlers into a ready-to-start server.
func New(deps Deps) (*Server, error) {
	cfg := deps.Config

	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	authService := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.JWTTTL,
		service.NewTokenDenylist(deps.Redis), deps.Notifier)
	catalogService, err := service.NewCatalogService(deps.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}
	shortLinkService := service.NewShortLinkService(deps.DB, deps.Redis)

	var clientLimiter *middleware.ClientRateLimiter
	var authLimit gin.HandlerFunc
	if cfg.AuthRequestsPerMinute > 0 {
		clientLimiter = middleware.NewClientRateLimiter(cfg.AuthRequestsPerMinute, time.Minute)
		authLimit = clientLimiter.Middleware()
	}

	var createLimit gin.HandlerFunc
	if deps.Redis != nil && cfg.RecipeCreateLimit > 0 {
		createLimit = middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit).RateLimitMiddleware()
	} else {
		logging.Info().Msg("recipe creation rate limiting disabled")
	}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService, authLimit),
		Users:   api.NewUserHandler(service.NewUserService(deps.DB, deps.Store), service.NewSubscriptionService(deps.DB), authService),
		Catalog: api.NewCatalogHandler(catalogService, authService),
		Recipes: api.NewRecipeHandler(api.RecipeHandlerDeps{
			Recipes:       service.NewRecipeService(deps.DB, deps.Store),
			Bookmarks:     service.NewBookmarkService(deps.DB),
			Shopping:      service.NewShoppingListService(deps.DB),
			ShortLinks:    shortLinkService,
			Validator:     authService,
			CreateLimiter: createLimit,
			PublicURL:     cfg.PublicBaseURL,
		}),
		ShortLinks: api.NewShortLinkHandler(shortLinkService, cfg.PublicBaseURL),
		Health:     api.NewHealthHandler(deps.DB, deps.Redis),
	}

	opts := router.Options{
		Bundle:         deps.Bundle,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.StorageBackend != "s3" {
		opts.MediaDir = cfg.MediaDir
		opts.MediaURL = cfg.MediaURL
	}

	engine, err := router.SetupRouter(handlers, opts)
	if err != nil {
		if clientLimiter != nil {
			clientLimiter.Stop()
		}
		return nil, err
	}
	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		clientLimiter: clientLimiter,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.clientLimiter != nil {
		s.clientLimiter.Stop()
	}
	return s.http.Shutdown(ctx)
}
