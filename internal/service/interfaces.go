package service

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Signup(ctx context.Context, req types.SignupRequest) (*models.User, bool, error)
	ObtainToken(ctx context.Context, username, code string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user profile operations
type IUserService interface {
	List(ctx context.Context, viewerID uint, page Page) ([]types.UserResponse, int64, error)
	Get(ctx context.Context, viewerID, id uint) (*types.UserResponse, error)
	SetAvatar(ctx context.Context, userID uint, encoded string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	List(ctx context.Context, userID uint, page Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// ICatalogService defines the interface for tags and ingredients
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
	CreateTag(ctx context.Context, req types.CreateTagRequest) (*types.TagResponse, error)
	ListIngredients(ctx context.Context, prefix string) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
	CreateIngredient(ctx context.Context, req types.CreateIngredientRequest) (*types.IngredientResponse, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, viewerID uint, f RecipeFilter, page Page) ([]types.RecipeResponse, int64, error)
	Get(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error)
	Create(ctx context.Context, authorID uint, req types.RecipeRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, userID, id uint, req types.RecipeRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, userID, id uint) error
}

// IBookmarkService defines the interface for favorites and the shopping cart
type IBookmarkService interface {
	Add(ctx context.Context, kind BookmarkKind, userID, recipeID uint) (*types.RecipeShortResponse, error)
	Remove(ctx context.Context, kind BookmarkKind, userID, recipeID uint) error
}

// IShoppingListService builds the aggregated shopping list
type IShoppingListService interface {
	Build(ctx context.Context, userID uint) ([]ShoppingItem, error)
}

// IShortLinkService defines the interface for recipe short links
type IShortLinkService interface {
	GetOrCreate(ctx context.Context, recipeID uint) (string, error)
	Resolve(ctx context.Context, code string) (uint, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IBookmarkService     = (*BookmarkService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IShortLinkService    = (*ShortLinkService)(nil)
	_ ConfirmationNotifier = (*EmailService)(nil)
)
