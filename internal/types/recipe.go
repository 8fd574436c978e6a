package types

import "github.com/foodgram/backend/internal/models"

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is the compact form used by favorites, the shopping
// cart and subscription listings.
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func NewTagResponse(t models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func NewIngredientResponse(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewRecipeShortResponse(r *models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// RecipeFlags are the viewer-relative booleans of a recipe.
type RecipeFlags struct {
	Favorited  bool
	InCart     bool
	Subscribed bool
}

// NewRecipeResponse expects Author, Tags and Ingredients.Ingredient loaded.
func NewRecipeResponse(r *models.Recipe, flags RecipeFlags) RecipeResponse {
	tags := make([]TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NewTagResponse(t))
	}
	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUserResponse(&r.Author, flags.Subscribed),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
