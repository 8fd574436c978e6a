package types

// SignupRequest is the body of POST /api/users/.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=128"`
}

// ConfirmationRequest exchanges an emailed code for a token.
type ConfirmationRequest struct {
	Username         string `json:"username" binding:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,max=50"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=50"`
}

// RecipeIngredientInput is one (ingredient id, amount) pair of a recipe
// submission.
type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update. Content rules are
// checked by the recipe service so that create and update share them.
type RecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients"`
	Tags        []uint                  `json:"tags"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	CookingTime int                     `json:"cooking_time"`
}
