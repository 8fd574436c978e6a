package types

import "github.com/foodgram/backend/internal/models"

type UserResponse struct {
	Email        string  `json:"email"`
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// SubscriptionResponse is an author as seen from a follower.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type AuthTokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

func NewUserResponse(u *models.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.Avatar,
	}
}
