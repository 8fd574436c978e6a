package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

const (
	catalogCacheSize = 256
	// CatalogCacheTTL bounds how long another replica's catalog change
	// can go unseen.
	CatalogCacheTTL = time.Minute
)

// CatalogService serves tags and ingredients. Lookups are cached in
// process for CatalogCacheTTL, and the local cache is purged whenever this
// process changes the catalog.
type CatalogService struct {
	db    *gorm.DB
	cache *lru.Cache
	now   func() time.Time
}

type cachedEntry struct {
	value     interface{}
	expiresAt time.Time
}

func NewCatalogService(db *gorm.DB) (*CatalogService, error) {
	cache, err := lru.New(catalogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return &CatalogService{db: db, cache: cache, now: time.Now}, nil
}

// SetClock replaces the cache clock in tests.
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CatalogService) cached(key string) (interface{}, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cachedEntry)
	if !s.now().Before(entry.expiresAt) {
		s.cache.Remove(key)
		return nil, false
	}
	return entry.value, true
}

func (s *CatalogService) remember(key string, value interface{}) {
	s.cache.Add(key, cachedEntry{value: value, expiresAt: s.now().Add(CatalogCacheTTL)})
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	const key = "tags"
	if v, ok := s.cached(key); ok {
		return v.([]types.TagResponse), nil
	}
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	result := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		result = append(result, types.NewTagResponse(t))
	}
	s.remember(key, result)
	return result, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	key := fmt.Sprintf("tag:%d", id)
	if v, ok := s.cached(key); ok {
		resp := v.(types.TagResponse)
		return &resp, nil
	}
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	resp := types.NewTagResponse(tag)
	s.remember(key, resp)
	return &resp, nil
}

// CreateTag adds a tag; name and slug are both unique.
func (s *CatalogService) CreateTag(ctx context.Context, req types.CreateTagRequest) (*types.TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	v := &ValidationError{}
	if name == "" {
		v.Add("name", i18n.FieldRequired)
	}
	if !ValidSlug(req.Slug) {
		v.Add("slug", i18n.FieldInvalidSlug)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var clash []models.Tag
	if err := db.Where("name = ? OR slug = ?", name, req.Slug).Find(&clash).Error; err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	for _, t := range clash {
		if t.Name == name {
			v.Add("name", i18n.TagTaken)
		}
		if t.Slug == req.Slug {
			v.Add("slug", i18n.TagTaken)
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	tag := models.Tag{Name: name, Slug: req.Slug}
	if err := db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Field("name", i18n.TagTaken)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	s.cache.Purge()
	resp := types.NewTagResponse(tag)
	return &resp, nil
}

// ListIngredients returns ingredients whose name starts with prefix, case
// insensitively, ordered by name.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]types.IngredientResponse, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	key := "ingredients:" + prefix
	if v, ok := s.cached(key); ok {
		return v.([]types.IngredientResponse), nil
	}

	q := s.db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	result := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		result = append(result, types.NewIngredientResponse(i))
	}
	s.remember(key, result)
	return result, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	resp := types.NewIngredientResponse(ing)
	return &resp, nil
}

// CreateIngredient adds an ingredient; (name, unit) is unique.
func (s *CatalogService) CreateIngredient(ctx context.Context, req types.CreateIngredientRequest) (*types.IngredientResponse, error) {
	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.MeasurementUnit)
	v := &ValidationError{}
	if name == "" {
		v.Add("name", i18n.FieldRequired)
	}
	if unit == "" {
		v.Add("measurement_unit", i18n.FieldRequired)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check ingredient: %w", err)
	}
	if existing > 0 {
		return nil, Field("name", i18n.IngredientExists)
	}

	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Field("name", i18n.IngredientExists)
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	s.cache.Purge()
	resp := types.NewIngredientResponse(ing)
	return &resp, nil
}
