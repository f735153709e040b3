package store_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/store"
	"campus-food-api/testutil"

	"github.com/stretchr/testify/require"
)

func TestNextSequenceStartsAtOneAndIncrements(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.NextSequence(ctx, db, models.RestaurantSequence)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	other, err := store.NextSequence(ctx, db, "other")
	require.NoError(t, err)
	require.EqualValues(t, 1, other)
}

func TestNextSequenceConcurrentCallersGetDistinctValues(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.NextSequence(ctx, db, "restaurant")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[v] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		require.True(t, seen[i], "missing %d", i)
	}
}

func TestFindRestaurantByEitherKey(t *testing.T) {
	db := testutil.NewDB(t)
	r, _ := testutil.CreateRestaurant(t, db, 42, "Noodle Bar")

	byID, err := store.FindRestaurant(db, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.ID, byID.ID)

	byPublic, err := store.FindRestaurant(db, strconv.FormatInt(r.PublicID, 10))
	require.NoError(t, err)
	require.Equal(t, r.ID, byPublic.ID)

	_, err = store.FindRestaurant(db, "not-a-key")
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.FindRestaurant(db, "999")
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFindRestaurantHidesSoftDeleted(t *testing.T) {
	db := testutil.NewDB(t)
	r, _ := testutil.CreateRestaurant(t, db, 7, "Closed Cafe")
	require.NoError(t, db.Model(r).Update("is_deleted", true).Error)

	_, err := store.FindRestaurant(db, r.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	found, err := store.FindRestaurantAny(db, "7")
	require.NoError(t, err)
	require.True(t, found.IsDeleted)
}

func TestScopesAndUniqueViolation(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.Tag{Name: "Vegan"}).Error)
	require.NoError(t, db.Create(&models.Tag{Name: "Spicy", IsDeleted: true}).Error)

	var active, all []models.Tag
	require.NoError(t, db.Scopes(store.Active).Find(&active).Error)
	require.NoError(t, db.Scopes(store.Visible(true)).Find(&all).Error)
	require.Len(t, active, 1)
	require.Len(t, all, 2)

	err := db.Create(&models.Tag{Name: "Vegan"}).Error
	require.True(t, store.IsUniqueViolation(err))
	require.False(t, store.IsUniqueViolation(nil))
}
