package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func messageKey(t *testing.T, err error) string {
	t.Helper()
	var e *service.Error
	require.ErrorAs(t, err, &e)
	return e.Msg.Key
}

func TestBookmarks(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewBookmarkService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	recipe := testhelpers.CreateRecipe(t, db, author, "Borscht", nil)

	tests := []struct {
		kind    service.BookmarkKind
		model   interface{}
		already string
		missing string
	}{
		{service.Favorites, &models.Favorite{}, i18n.FavoriteAlreadyAdded, i18n.FavoriteNotAdded},
		{service.ShoppingCart, &models.ShoppingCartItem{}, i18n.CartAlreadyAdded, i18n.CartNotAdded},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			short, err := svc.Add(ctx, tt.kind, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "Borscht", short.Name)
			assert.Equal(t, recipe.CookingTime, short.CookingTime)

			_, err = svc.Add(ctx, tt.kind, reader.ID, recipe.ID)
			assert.Equal(t, tt.already, messageKey(t, err))
			assert.Equal(t, service.KindConflict, service.KindOf(err))

			_, err = svc.Add(ctx, tt.kind, reader.ID, 9999)
			assert.ErrorIs(t, err, service.ErrRecipeNotFound)

			require.NoError(t, svc.Remove(ctx, tt.kind, reader.ID, recipe.ID))

			var n int64
			db.Model(tt.model).Where("user_id = ?", reader.ID).Count(&n)
			assert.Zero(t, n)

			err = svc.Remove(ctx, tt.kind, reader.ID, recipe.ID)
			assert.Equal(t, tt.missing, messageKey(t, err))
			assert.Equal(t, service.KindInvalid, service.KindOf(err))

			assert.ErrorIs(t, svc.Remove(ctx, tt.kind, reader.ID, 9999), service.ErrRecipeNotFound)
		})
	}
}

func TestAggregateShoppingList(t *testing.T) {
	rows := []service.ShoppingItem{
		{Name: "flour", Unit: "g", Amount: 200},
		{Name: "flour", Unit: "kg", Amount: 1},
		{Name: "milk", Unit: "ml", Amount: 500},
		{Name: "Milk", Unit: "ml", Amount: 100},
		{Name: "milk", Unit: "ml", Amount: 250},
	}
	lines := service.AggregateShoppingList(rows)
	assert.Equal(t, []service.ShoppingItem{
		{Name: "flour", Unit: "kg", Amount: 201},
		{Name: "milk", Unit: "ml", Amount: 750},
		{Name: "Milk", Unit: "ml", Amount: 100},
	}, lines)

	assert.Empty(t, service.AggregateShoppingList(nil))
}

func TestRenderShoppingList(t *testing.T) {
	text := service.RenderShoppingList("Shopping list", []service.ShoppingItem{
		{Name: "eggs", Unit: "pcs", Amount: 3},
		{Name: "salt", Unit: "g", Amount: 5},
	})
	assert.Equal(t, "Shopping list\n\neggs - 3 pcs\nsalt - 5 g\n", text)
}

func TestBuildShoppingList(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "cook")
	buyer := testhelpers.CreateUser(t, db, "buyer")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	butter := testhelpers.CreateIngredient(t, db, "butter", "g")

	cake := testhelpers.CreateRecipe(t, db, author, "Cake", nil,
		testhelpers.Amount{Ingredient: sugar, Amount: 100},
		testhelpers.Amount{Ingredient: eggs, Amount: 2})
	cookies := testhelpers.CreateRecipe(t, db, author, "Cookies", nil,
		testhelpers.Amount{Ingredient: sugar, Amount: 50},
		testhelpers.Amount{Ingredient: butter, Amount: 30})
	testhelpers.CreateRecipe(t, db, author, "Omelette", nil,
		testhelpers.Amount{Ingredient: eggs, Amount: 4})

	_, err := svc.Build(ctx, buyer.ID)
	assert.ErrorIs(t, err, service.ErrShoppingListEmpty)

	require.NoError(t, db.Create(&models.ShoppingCartItem{UserID: buyer.ID, RecipeID: cake.ID}).Error)
	require.NoError(t, db.Create(&models.ShoppingCartItem{UserID: buyer.ID, RecipeID: cookies.ID}).Error)

	lines, err := svc.Build(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.ShoppingItem{
		{Name: "butter", Unit: "g", Amount: 30},
		{Name: "eggs", Unit: "pcs", Amount: 2},
		{Name: "sugar", Unit: "g", Amount: 150},
	}, lines)
}

func TestBuildShoppingListRecipesWithoutIngredients(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewShoppingListService(db)

	author := testhelpers.CreateUser(t, db, "minimal")
	recipe := testhelpers.CreateRecipe(t, db, author, "Water", nil)
	require.NoError(t, db.Create(&models.ShoppingCartItem{UserID: author.ID, RecipeID: recipe.ID}).Error)

	lines, err := svc.Build(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// insertBeforeCreate makes the next create of a matching row lose a race:
// the statement from rival is executed inside the same transaction right
// before gorm inserts.
func insertBeforeCreate(t *testing.T, db *gorm.DB, rival func(dest interface{}) (string, []interface{}, bool)) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:rival_insert", func(tx *gorm.DB) {
		if fired {
			return
		}
		query, args, ok := rival(tx.Statement.Dest)
		if !ok {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, args...).Error; err != nil {
			t.Errorf("rival insert failed: %v", err)
		}
	})
	require.NoError(t, err)
}

func TestConcurrentDuplicatesAreConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("favorite", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		author := testhelpers.CreateUser(t, db, "author")
		reader := testhelpers.CreateUser(t, db, "reader")
		recipe := testhelpers.CreateRecipe(t, db, author, "Borscht", nil)

		insertBeforeCreate(t, db, func(dest interface{}) (string, []interface{}, bool) {
			f, ok := dest.(*models.Favorite)
			if !ok {
				return "", nil, false
			}
			return "INSERT INTO favorites (user_id, recipe_id, created_at) VALUES (?, ?, ?)",
				[]interface{}{f.UserID, f.RecipeID, time.Now()}, true
		})

		_, err := service.NewBookmarkService(db).Add(ctx, service.Favorites, reader.ID, recipe.ID)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
		assert.Equal(t, i18n.FavoriteAlreadyAdded, messageKey(t, err))
	})

	t.Run("subscription", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		author := testhelpers.CreateUser(t, db, "author")
		reader := testhelpers.CreateUser(t, db, "reader")

		insertBeforeCreate(t, db, func(dest interface{}) (string, []interface{}, bool) {
			s, ok := dest.(*models.Subscription)
			if !ok {
				return "", nil, false
			}
			return "INSERT INTO subscriptions (user_id, author_id, created_at) VALUES (?, ?, ?)",
				[]interface{}{s.UserID, s.AuthorID, time.Now()}, true
		})

		_, err := service.NewSubscriptionService(db).Subscribe(ctx, reader.ID, author.ID, 0)
		assert.ErrorIs(t, err, service.ErrAlreadySubscribed)
	})

	t.Run("ingredient", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		catalog, err := service.NewCatalogService(db)
		require.NoError(t, err)

		insertBeforeCreate(t, db, func(dest interface{}) (string, []interface{}, bool) {
			ing, ok := dest.(*models.Ingredient)
			if !ok {
				return "", nil, false
			}
			return "INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)",
				[]interface{}{ing.Name, ing.MeasurementUnit}, true
		})

		_, err = catalog.CreateIngredient(ctx, types.CreateIngredientRequest{Name: "salt", MeasurementUnit: "g"})
		assert.Equal(t, service.KindInvalid, service.KindOf(err))
		assert.Equal(t, []string{i18n.IngredientExists}, fieldKeys(t, err, "name"))
	})
}
