package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes userID follow authorID. recipesLimit caps the embedded
// recipe list; zero or less means all recipes.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	if userID == authorID {
		return nil, ErrSubscribeSelf
	}
	db := s.db.WithContext(ctx)
	author, err := loadUser(db, authorID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := &models.Subscription{UserID: userID, AuthorID: authorID}
	if err := db.Omit("User", "Author").Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	resp, err := s.describe(db, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// Unsubscribe removes the follow edge.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := loadUser(db, authorID); err != nil {
		return err
	}
	res := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// List returns the authors userID follows, most recently followed first.
func (s *SubscriptionService) List(ctx context.Context, userID uint, page Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	resp, err := s.describe(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return resp, count, nil
}

// describe builds subscription entries for authors already followed by the
// viewer.
func (s *SubscriptionService) describe(db *gorm.DB, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	result := make([]types.SubscriptionResponse, 0, len(authors))
	if len(authors) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	type recipeCount struct {
		AuthorID uint
		Total    int64
	}
	var counts []recipeCount
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	totals := make(map[uint]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	for i := range authors {
		q := db.Where("author_id = ?", authors[i].ID).Order("pub_date DESC, id DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to load recipes: %w", err)
		}
		short := make([]types.RecipeShortResponse, 0, len(recipes))
		for j := range recipes {
			short = append(short, types.NewRecipeShortResponse(&recipes[j]))
		}
		result = append(result, types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(&authors[i], true),
			Recipes:      short,
			RecipesCount: totals[authors[i].ID],
		})
	}
	return result, nil
}
