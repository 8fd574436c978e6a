package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinks(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewShortLinkService(db, nil)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "linker")
	recipe := testhelpers.CreateRecipe(t, db, author, "Linked", nil)
	other := testhelpers.CreateRecipe(t, db, author, "Other", nil)

	code, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, code, models.ShortCodeLength)

	again, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	otherCode, err := svc.GetOrCreate(ctx, other.ID)
	require.NoError(t, err)
	assert.NotEqual(t, code, otherCode)

	id, err := svc.Resolve(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)

	_, err = svc.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrShortLinkNotFound)

	_, err = svc.GetOrCreate(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestMemoryDenylist(t *testing.T) {
	d := service.NewMemoryDenylist()
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "a", time.Hour))
	require.NoError(t, d.Revoke(ctx, "b", -time.Second))

	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = d.IsRevoked(ctx, "c")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewTokenDenylistWithoutRedis(t *testing.T) {
	_, ok := service.NewTokenDenylist(nil).(*service.MemoryDenylist)
	assert.True(t, ok)
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in     service.Page
		want   service.Page
		offset int
	}{
		{service.Page{}, service.Page{Number: 1, Size: service.DefaultPageSize}, 0},
		{service.Page{Number: 3, Size: 10}, service.Page{Number: 3, Size: 10}, 20},
		{service.Page{Number: -1, Size: 1000}, service.Page{Number: 1, Size: service.MaxPageSize}, 0},
		{
			service.Page{Number: 4611686018427387905, Size: 2},
			service.Page{Number: service.MaxPageNumber, Size: 2},
			(service.MaxPageNumber - 1) * 2,
		},
		{
			service.Page{Number: service.MaxPageNumber, Size: service.MaxPageSize},
			service.Page{Number: service.MaxPageNumber, Size: service.MaxPageSize},
			(service.MaxPageNumber - 1) * service.MaxPageSize,
		},
	}
	for _, tt := range tests {
		got := tt.in.Normalize()
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.offset, got.Offset())
		assert.GreaterOrEqual(t, got.Offset(), 0)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, service.KindNotFound, service.KindOf(service.ErrRecipeNotFound))
	assert.Equal(t, service.KindInvalid, service.KindOf(service.Field("name", "x")))
	assert.Equal(t, service.Kind(0), service.KindOf(assert.AnError))
}

func TestUsernameProblem(t *testing.T) {
	assert.Empty(t, service.UsernameProblem("good.user+1@x-y_z"))
	assert.NotEmpty(t, service.UsernameProblem("ME"))
	assert.NotEmpty(t, service.UsernameProblem("spaces are bad"))
	assert.NotEmpty(t, service.UsernameProblem(""))
}
