package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recipeImagePrefix = "recipes"

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	Tags        []string
	FavoritedBy uint
	InCartOf    uint
}

// RecipeService handles recipe operations
type RecipeService struct {
	db    *gorm.DB
	store storage.Store
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, store storage.Store) *RecipeService {
	return &RecipeService{db: db, store: store}
}

// List returns one page of recipes, newest first. viewerID is 0 for
// anonymous requests.
func (s *RecipeService) List(ctx context.Context, viewerID uint, f RecipeFilter, page Page) ([]types.RecipeResponse, int64, error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	q := db.Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.Tags) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", f.InCartOf))
	}
	q = q.Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withRecipeDetails(q).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	resp, err := s.annotate(db, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return resp, count, nil
}

// Get returns a recipe as seen by viewerID.
func (s *RecipeService) Get(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	if err := withRecipeDetails(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	resp, err := s.annotate(db, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// Create stores a recipe with its ingredient amounts and tags.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req types.RecipeRequest) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	img, err := s.validate(db, authorID, nil, &req)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Save(ctx, storage.NewKey(recipeImagePrefix, img.Extension), img.Data, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store recipe image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       url,
		CookingTime: req.CookingTime,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return writeRecipeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		discardFile(ctx, s.store, url)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Field("name", i18n.RecipeNameTaken)
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces the recipe's ingredients and tags and applies the scalar
// fields. Only the author may update a recipe. An empty image, or the
// recipe's current image URL, keeps the stored image.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, req types.RecipeRequest) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	recipe, err := loadRecipe(db, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	img, err := s.validate(db, userID, recipe, &req)
	if err != nil {
		return nil, err
	}

	var url string
	if img != nil {
		url, err = s.store.Save(ctx, storage.NewKey(recipeImagePrefix, img.Extension), img.Data, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store recipe image: %w", err)
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := writeRecipeLinks(tx, id, req); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if url != "" {
			updates["image"] = url
		}
		return tx.Model(&models.Recipe{ID: id}).Updates(updates).Error
	})
	if err != nil {
		if url != "" {
			discardFile(ctx, s.store, url)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Field("name", i18n.RecipeNameTaken)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if url != "" {
		discardFile(ctx, s.store, recipe.Image)
	}

	return s.Get(ctx, userID, id)
}

// Delete removes a recipe together with its links, bookmarks and short
// link. Only the author may delete a recipe.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	db := s.db.WithContext(ctx)
	recipe, err := loadRecipe(db, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
			&models.ShortLink{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	discardFile(ctx, s.store, recipe.Image)
	return nil
}

// validate checks a submission and decodes a new image when one was sent.
// current is nil on create.
func (s *RecipeService) validate(db *gorm.DB, authorID uint, current *models.Recipe, req *types.RecipeRequest) (*storage.Image, error) {
	v := &ValidationError{}
	req.Name = strings.TrimSpace(req.Name)
	req.Text = strings.TrimSpace(req.Text)

	if len(req.Ingredients) == 0 {
		v.Add("ingredients", i18n.IngredientsRequired)
	} else {
		ids := make([]uint, 0, len(req.Ingredients))
		seen := make(map[uint]bool, len(req.Ingredients))
		var duplicate, tooSmall, tooLarge bool
		for _, in := range req.Ingredients {
			if seen[in.ID] {
				duplicate = true
				continue
			}
			seen[in.ID] = true
			ids = append(ids, in.ID)
			tooSmall = tooSmall || in.Amount < models.MinValue
			tooLarge = tooLarge || in.Amount > models.MaxValue
		}
		if duplicate {
			v.Add("ingredients", i18n.IngredientsDuplicate)
		}
		if tooSmall {
			v.Add("ingredients", i18n.FieldMinValue, models.MinValue)
		}
		if tooLarge {
			v.Add("ingredients", i18n.FieldMaxValue, models.MaxValue)
		}
		if err := checkExisting(db, &models.Ingredient{}, ids, v, "ingredients"); err != nil {
			return nil, err
		}
	}

	if len(req.Tags) == 0 {
		v.Add("tags", i18n.TagsRequired)
	} else {
		ids := make([]uint, 0, len(req.Tags))
		seen := make(map[uint]bool, len(req.Tags))
		for _, id := range req.Tags {
			if seen[id] {
				v.Add("tags", i18n.TagsDuplicate)
				break
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if err := checkExisting(db, &models.Tag{}, ids, v, "tags"); err != nil {
			return nil, err
		}
	}

	if req.CookingTime < models.MinValue {
		v.Add("cooking_time", i18n.FieldMinValue, models.MinValue)
	} else if req.CookingTime > models.MaxValue {
		v.Add("cooking_time", i18n.FieldMaxValue, models.MaxValue)
	}

	switch {
	case req.Name == "":
		v.Add("name", i18n.FieldRequired)
	case utf8.RuneCountInString(req.Name) > models.RecipeNameMaxLength:
		v.Add("name", i18n.FieldTooLong, models.RecipeNameMaxLength)
	default:
		q := db.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, req.Name)
		if current != nil {
			q = q.Where("id <> ?", current.ID)
		}
		var taken int64
		if err := q.Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("failed to check recipe name: %w", err)
		}
		if taken > 0 {
			v.Add("name", i18n.RecipeNameTaken)
		}
	}

	if req.Text == "" {
		v.Add("text", i18n.FieldRequired)
	}

	var img *storage.Image
	switch {
	case req.Image == "" && current == nil:
		v.Add("image", i18n.FieldRequired)
	case req.Image == "" || (current != nil && req.Image == current.Image):
	default:
		decoded, err := storage.DecodeDataURI(req.Image)
		if err != nil {
			v.Add("image", i18n.ImageInvalid)
		}
		img = decoded
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return img, nil
}

// checkExisting records an unknown-id message for every id missing from
// model's table.
func checkExisting(db *gorm.DB, model interface{}, ids []uint, v *ValidationError, field string) error {
	var found []uint
	if err := db.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", field, err)
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			v.Add(field, i18n.FieldUnknownID, id)
		}
	}
	return nil
}

func writeRecipeLinks(tx *gorm.DB, recipeID uint, req types.RecipeRequest) error {
	rows := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: in.ID, Amount: in.Amount})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return err
	}

	links := make([]map[string]interface{}, 0, len(req.Tags))
	for _, id := range req.Tags {
		links = append(links, map[string]interface{}{"recipe_id": recipeID, "tag_id": id})
	}
	return tx.Table("recipe_tags").Create(links).Error
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// annotate attaches the viewer-relative flags.
func (s *RecipeService) annotate(db *gorm.DB, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	result := make([]types.RecipeResponse, 0, len(recipes))
	if len(recipes) == 0 {
		return result, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := bookmarked(db, &models.Favorite{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := bookmarked(db, &models.ShoppingCartItem{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(db, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		r := &recipes[i]
		result = append(result, types.NewRecipeResponse(r, types.RecipeFlags{
			Favorited:  favorited[r.ID],
			InCart:     inCart[r.ID],
			Subscribed: subscribed[r.AuthorID],
		}))
	}
	return result, nil
}

// bookmarked reports which of recipeIDs userID has in model's table.
func bookmarked(db *gorm.DB, model interface{}, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 {
		return result, nil
	}
	var ids []uint
	err := db.Model(model).Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func loadRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}
