package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	shortLinkAttempts = 5
	shortLinkCacheTTL = 24 * time.Hour
)

// ShortLinkService maps recipes to short codes. Resolutions go through
// Redis when a client is configured.
type ShortLinkService struct {
	db     *gorm.DB
	cache  *redis.Client
	prefix string
}

func NewShortLinkService(db *gorm.DB, cache *redis.Client) *ShortLinkService {
	return &ShortLinkService{db: db, cache: cache, prefix: "shortlink"}
}

// GetOrCreate returns the recipe's code, creating one on first use.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID uint) (string, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadRecipe(db, recipeID); err != nil {
		return "", err
	}

	link, err := s.byRecipe(db, recipeID)
	if err != nil {
		return "", err
	}
	if link != nil {
		return link.Code, nil
	}

	for attempt := 0; attempt < shortLinkAttempts; attempt++ {
		code := shortuuid.New()[:models.ShortCodeLength]

		var taken int64
		if err := db.Model(&models.ShortLink{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if taken > 0 {
			continue
		}

		link := models.ShortLink{Code: code, RecipeID: recipeID}
		if err := db.Create(&link).Error; err != nil {
			// A concurrent request may have linked the same recipe.
			if existing, lookupErr := s.byRecipe(db, recipeID); lookupErr == nil && existing != nil {
				return existing.Code, nil
			}
			return "", fmt.Errorf("failed to create short link: %w", err)
		}
		return code, nil
	}
	return "", fmt.Errorf("failed to allocate short code after %d attempts", shortLinkAttempts)
}

// Resolve returns the recipe id behind code.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uint, error) {
	key := s.prefix + ":" + code
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		switch {
		case err == nil:
			if id, convErr := strconv.ParseUint(cached, 10, 64); convErr == nil {
				return uint(id), nil
			}
		case !errors.Is(err, redis.Nil):
			logging.Ctx(ctx).Warn().Err(err).Msg("short link cache lookup failed")
		}
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).Where("code = ?", code).Take(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrShortLinkNotFound
		}
		return 0, fmt.Errorf("failed to resolve short link: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, link.RecipeID, shortLinkCacheTTL).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("short link cache store failed")
		}
	}
	return link.RecipeID, nil
}

func (s *ShortLinkService) byRecipe(db *gorm.DB, recipeID uint) (*models.ShortLink, error) {
	var link models.ShortLink
	err := db.Where("recipe_id = ?", recipeID).Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load short link: %w", err)
	}
	return &link, nil
}
