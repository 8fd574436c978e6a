package mocks

import (
	"context"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of service.IRecipeService.
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, viewerID uint, f service.RecipeFilter, page service.Page) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewerID, f, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uint, req types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, id uint, req types.RecipeRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockShoppingListService is a mock implementation of service.IShoppingListService.
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) Build(ctx context.Context, userID uint) ([]service.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingItem), args.Error(1)
}

// MockShortLinkService is a mock implementation of service.IShortLinkService.
type MockShortLinkService struct {
	mock.Mock
}

func (m *MockShortLinkService) GetOrCreate(ctx context.Context, recipeID uint) (string, error) {
	args := m.Called(ctx, recipeID)
	return args.String(0), args.Error(1)
}

func (m *MockShortLinkService) Resolve(ctx context.Context, code string) (uint, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uint), args.Error(1)
}

var (
	_ service.IAuthService         = (*MockAuthService)(nil)
	_ service.IRecipeService       = (*MockRecipeService)(nil)
	_ service.IShoppingListService = (*MockShoppingListService)(nil)
	_ service.IShortLinkService    = (*MockShortLinkService)(nil)
)
