package tags_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/tags"
	"campus-food-api/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, []string{"Vegan", "vegan", "Spicy"}, tags.Normalize([]string{" Vegan", "vegan ", "", "  ", "Spicy", "Vegan"}))
	require.Empty(t, tags.Normalize(nil))
}

func TestResolveIsIdempotentAndCaseSensitive(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	input := []string{"Vegan", "vegan ", "Spicy"}

	first, err := tags.Resolve(ctx, db, input)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := tags.Resolve(ctx, db, input)
	require.NoError(t, err)

	a, b := tags.IDs(first), tags.IDs(second)
	sort.Strings(a)
	sort.Strings(b)
	require.Equal(t, a, b)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	require.EqualValues(t, 3, count)

	for _, tg := range first {
		require.Equal(t, models.TagUserDefined, tg.Type)
	}
}

func TestResolveReusesAdminTags(t *testing.T) {
	db := testutil.NewDB(t)
	admin := models.Tag{Name: "Breakfast", Type: models.TagAdminDefined}
	require.NoError(t, db.Create(&admin).Error)

	got, err := tags.Resolve(context.Background(), db, []string{"Breakfast"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, admin.ID, got[0].ID)
	require.Equal(t, models.TagAdminDefined, got[0].Type)
}

func TestResolveEmptyInput(t *testing.T) {
	db := testutil.NewDB(t)
	got, err := tags.Resolve(context.Background(), db, []string{" ", ""})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestResolveRollsBackWithCallerTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	boom := errors.New("later step failed")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := tags.Resolve(context.Background(), tx, []string{"Noodles", "Rice"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestResolveConflictsWithSoftDeletedName(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.Tag{Name: "Retired", IsDeleted: true}).Error)

	_, err := tags.Resolve(context.Background(), db, []string{"Retired"})
	require.True(t, apperr.Is(err, apperr.KindConflict))
}
