package models

import "time"

// Bounds for cooking time and ingredient amounts
const (
	MinValue            = 1
	MaxValue            = 32000
	RecipeNameMaxLength = 256
	TagMaxLength        = 50
	IngredientMaxLength = 100
	UnitMaxLength       = 50
	ShortCodeLength     = 8
)

type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:100;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:50;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

type Recipe struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	PubDate     time.Time          `gorm:"column:pub_date;autoCreateTime;index" json:"pub_date"`
	UpdatedAt   time.Time          `json:"updated_at"`
	AuthorID    uint               `gorm:"not null;uniqueIndex:idx_recipe_author_name" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Name        string             `gorm:"size:256;not null;uniqueIndex:idx_recipe_author_name" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	Image       string             `gorm:"size:512;not null" json:"image"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeIngredient is the through row between a recipe and an ingredient.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	RecipeID     uint       `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null" json:"amount"`
}

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
}

// ShoppingCartItem puts a recipe into a user's shopping list.
type ShoppingCartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
}

func (ShoppingCartItem) TableName() string { return "shopping_cart_items" }

// ShortLink maps a short code to a recipe.
type ShortLink struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Code      string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	RecipeID  uint      `gorm:"uniqueIndex;not null" json:"recipe_id"`
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subscription{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCartItem{},
		&ShortLink{},
	}
}
