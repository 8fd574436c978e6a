package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// BookmarkKind selects the favorites list or the shopping cart.
type BookmarkKind int

const (
	Favorites BookmarkKind = iota
	ShoppingCart
)

func (k BookmarkKind) model() interface{} {
	if k == ShoppingCart {
		return &models.ShoppingCartItem{}
	}
	return &models.Favorite{}
}

func (k BookmarkKind) alreadyAdded() string {
	if k == ShoppingCart {
		return i18n.CartAlreadyAdded
	}
	return i18n.FavoriteAlreadyAdded
}

func (k BookmarkKind) notAdded() string {
	if k == ShoppingCart {
		return i18n.CartNotAdded
	}
	return i18n.FavoriteNotAdded
}

func (k BookmarkKind) String() string {
	if k == ShoppingCart {
		return "shopping_cart"
	}
	return "favorite"
}

// BookmarkService manages favorites and shopping-cart entries, which share
// one shape: a unique (user, recipe) pair.
type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

// Add bookmarks a recipe and returns its short form.
func (s *BookmarkService) Add(ctx context.Context, kind BookmarkKind, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	db := s.db.WithContext(ctx)
	recipe, err := loadRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := db.Model(kind.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if existing > 0 {
		return nil, newError(KindConflict, kind.alreadyAdded())
	}

	var row interface{}
	if kind == ShoppingCart {
		row = &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
	} else {
		row = &models.Favorite{UserID: userID, RecipeID: recipeID}
	}
	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, kind.alreadyAdded())
		}
		return nil, fmt.Errorf("failed to add %s: %w", kind, err)
	}

	resp := types.NewRecipeShortResponse(recipe)
	return &resp, nil
}

// Remove drops a bookmark. A missing recipe is 404; a recipe that was not
// bookmarked is a 400.
func (s *BookmarkService) Remove(ctx context.Context, kind BookmarkKind, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := loadRecipe(db, recipeID); err != nil {
		return err
	}
	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(kind.model())
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindInvalid, kind.notAdded())
	}
	return nil
}
