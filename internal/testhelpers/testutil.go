package testhelpers

import (
	"fmt"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "Sup3r-secret"

// ImageDataURI is a 1x1 transparent PNG encoded as a data URI.
const ImageDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateUser inserts a confirmed user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	return createUser(t, db, username, models.RoleUser)
}

// CreateAdmin inserts a confirmed admin user.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	return createUser(t, db, username, models.RoleAdmin)
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Role:         role,
		IsConfirmed:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its ingredient and tag links.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix everything.",
		Image:       "/media/recipes/test.png",
		CookingTime: 10,
	}
	if err := db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	for _, a := range amounts {
		ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount}
		if err := db.Omit(clause.Associations).Create(&ri).Error; err != nil {
			t.Fatalf("failed to link ingredient: %v", err)
		}
	}
	if len(tags) > 0 {
		var links []models.Tag
		for _, tag := range tags {
			links = append(links, *tag)
		}
		if err := db.Model(recipe).Association("Tags").Append(links); err != nil {
			t.Fatalf("failed to link tags: %v", err)
		}
	}
	return recipe
}
