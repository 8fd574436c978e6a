package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// ShoppingListFilename is the attachment name of the downloaded list.
const ShoppingListFilename = "shopping_list.txt"

// ShoppingItem is one ingredient row, or one aggregated line.
type ShoppingItem struct {
	Name   string
	Unit   string
	Amount int
}

// AggregateShoppingList sums amounts per ingredient name. Names compare
// case-sensitively and units are not normalized: the unit of the last row
// for a name wins. Lines keep the order in which names first appear.
func AggregateShoppingList(rows []ShoppingItem) []ShoppingItem {
	index := make(map[string]int, len(rows))
	lines := make([]ShoppingItem, 0, len(rows))
	for _, row := range rows {
		i, ok := index[row.Name]
		if !ok {
			index[row.Name] = len(lines)
			lines = append(lines, row)
			continue
		}
		lines[i].Amount += row.Amount
		lines[i].Unit = row.Unit
	}
	return lines
}

// RenderShoppingList renders the header, a blank line and one
// "name - amount unit" line per item.
func RenderShoppingList(header string, lines []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "%s - %d %s\n", l.Name, l.Amount, l.Unit)
	}
	return b.String()
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build aggregates the ingredients of every recipe in the user's cart.
// An empty cart is ErrShoppingListEmpty.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	db := s.db.WithContext(ctx)

	var inCart int64
	if err := db.Model(&models.ShoppingCartItem{}).Where("user_id = ?", userID).Count(&inCart).Error; err != nil {
		return nil, fmt.Errorf("failed to count shopping cart: %w", err)
	}
	if inCart == 0 {
		return nil, ErrShoppingListEmpty
	}

	var rows []ShoppingItem
	err := db.Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Order("ingredients.name").Order("recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	return AggregateShoppingList(rows), nil
}
