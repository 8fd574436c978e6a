package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc, err := service.NewCatalogService(db)
	require.NoError(t, err)
	ctx := context.Background()

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	created, err := svc.CreateTag(ctx, types.CreateTagRequest{Name: "Завтрак", Slug: "breakfast"})
	require.NoError(t, err)

	// The cached empty listing is dropped on create.
	tags, err = svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].Slug)

	got, err := svc.GetTag(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Завтрак", got.Name)

	_, err = svc.GetTag(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrTagNotFound)

	_, err = svc.CreateTag(ctx, types.CreateTagRequest{Name: "Завтрак", Slug: "other"})
	assert.Equal(t, []string{i18n.TagTaken}, fieldKeys(t, err, "name"))

	_, err = svc.CreateTag(ctx, types.CreateTagRequest{Name: "Other", Slug: "breakfast"})
	assert.Equal(t, []string{i18n.TagTaken}, fieldKeys(t, err, "slug"))

	_, err = svc.CreateTag(ctx, types.CreateTagRequest{Name: "Bad", Slug: "not a slug"})
	assert.Equal(t, []string{i18n.FieldInvalidSlug}, fieldKeys(t, err, "slug"))
}

func TestIngredients(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc, err := service.NewCatalogService(db)
	require.NoError(t, err)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "soy_sauce", "ml")
	testhelpers.CreateIngredient(t, db, "apple", "pcs")

	names := func(list []types.IngredientResponse) []string {
		out := make([]string, 0, len(list))
		for _, i := range list {
			out = append(out, i.Name)
		}
		return out
	}

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	s, err := svc.ListIngredients(ctx, "S")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Sugar", "salt", "soy_sauce"}, names(s))

	// Wildcards in the prefix are literal.
	underscore, err := svc.ListIngredients(ctx, "soy_")
	require.NoError(t, err)
	assert.Equal(t, []string{"soy_sauce"}, names(underscore))

	none, err := svc.ListIngredients(ctx, "s_")
	require.NoError(t, err)
	assert.Empty(t, none)

	created, err := svc.CreateIngredient(ctx, types.CreateIngredientRequest{Name: "salt", MeasurementUnit: "pinch"})
	require.NoError(t, err)

	got, err := svc.GetIngredient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pinch", got.MeasurementUnit)

	s, err = svc.ListIngredients(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, s, 4)

	_, err = svc.CreateIngredient(ctx, types.CreateIngredientRequest{Name: "salt", MeasurementUnit: "g"})
	assert.Equal(t, []string{i18n.IngredientExists}, fieldKeys(t, err, "name"))

	_, err = svc.GetIngredient(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogCacheExpires(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc, err := service.NewCatalogService(db)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	// Another process adds a tag behind this cache.
	testhelpers.CreateTag(t, db, "Обед", "lunch")

	tags, err = svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	now = now.Add(service.CatalogCacheTTL)
	tags, err = svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "lunch", tags[0].Slug)
}
