package services_test

import (
	"context"
	"testing"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/services"
	"campus-food-api/testutil"

	"github.com/stretchr/testify/require"
)

func TestTagCatalogue(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewTagService(db)

	breakfast, err := svc.Create(ctx, services.TagInput{Name: " Breakfast ", Type: models.TagAdminDefined})
	require.NoError(t, err)
	require.Equal(t, "Breakfast", breakfast.Name)

	_, err = svc.Create(ctx, services.TagInput{Name: "Late night"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, services.TagInput{Name: "Breakfast"})
	require.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Create(ctx, services.TagInput{Name: "x", Type: "system"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Breakfast", all[0].Name)

	defaults, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, defaults, 1)

	deleted := true
	_, err = svc.Update(ctx, breakfast.ID, services.TagPatch{IsDeleted: &deleted})
	require.NoError(t, err)
	_, err = svc.Get(ctx, breakfast.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	name := "Late night"
	_, err = svc.Update(ctx, breakfast.ID, services.TagPatch{Name: &name})
	require.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestDeleteTagUnlinksRestaurants(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewTagService(db)
	r, _ := testutil.CreateRestaurant(t, db, 1, "Pho")

	spicy, err := svc.Create(ctx, services.TagInput{Name: "Spicy"})
	require.NoError(t, err)
	cheap, err := svc.Create(ctx, services.TagInput{Name: "Cheap"})
	require.NoError(t, err)
	require.NoError(t, db.Model(r).Association("Tags").Append(spicy, cheap))

	require.NoError(t, svc.Delete(ctx, spicy.ID))

	var got models.Restaurant
	require.NoError(t, db.Preload("Tags").First(&got, "id = ?", r.ID).Error)
	require.Len(t, got.Tags, 1)
	require.Equal(t, "Cheap", got.Tags[0].Name)

	var remaining int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)

	err = svc.Delete(ctx, spicy.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	// the name is free again once the tag is gone
	_, err = svc.Create(ctx, services.TagInput{Name: "Spicy"})
	require.NoError(t, err)
}
