package rankings_test

import (
	"context"
	"testing"

	"campus-food-api/models"
	"campus-food-api/rankings"
	"campus-food-api/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setRestaurantStats(t *testing.T, db *gorm.DB, r *models.Restaurant, total int, groups map[string]int) {
	t.Helper()
	require.NoError(t, db.Model(&models.Restaurant{}).Where("id = ?", r.ID).Updates(map[string]any{
		"total_groups": total,
		"group_stats":  datatypes.NewJSONType(groups),
	}).Error)
}

func setItemStats(t *testing.T, db *gorm.DB, m models.MenuItem, total int, groups map[string]int) {
	t.Helper()
	require.NoError(t, db.Model(&models.MenuItem{}).Where("id = ?", m.ID).Updates(map[string]any{
		"total_orders": total,
		"order_stats":  datatypes.NewJSONType(groups),
	}).Error)
}

func seed(t *testing.T) (*gorm.DB, []*models.Restaurant, [][]models.MenuItem) {
	t.Helper()
	db := testutil.NewDB(t)
	a, aItems := testutil.CreateRestaurant(t, db, 1, "Alpha", 50, 60)
	b, bItems := testutil.CreateRestaurant(t, db, 2, "Beta", 70)
	c, cItems := testutil.CreateRestaurant(t, db, 3, "Gamma", 80)

	setRestaurantStats(t, db, a, 5, map[string]int{"1A": 1, "2B": 4})
	setRestaurantStats(t, db, b, 9, map[string]int{"2B": 9})
	setRestaurantStats(t, db, c, 5, map[string]int{"1A": 5})

	setItemStats(t, db, aItems[0], 3, map[string]int{"1A": 3})
	setItemStats(t, db, aItems[1], 8, map[string]int{"2B": 8})
	setItemStats(t, db, bItems[0], 12, map[string]int{"2B": 12})
	setItemStats(t, db, cItems[0], 1, map[string]int{"1A": 1})

	return db, []*models.Restaurant{a, b, c}, [][]models.MenuItem{aItems, bItems, cItems}
}

func names[T any](rows []T, name func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = name(r)
	}
	return out
}

func TestPopularRestaurants(t *testing.T) {
	db, rs, _ := seed(t)
	svc := rankings.NewService(db)
	ctx := context.Background()
	restName := func(r rankings.RestaurantRank) string { return r.Name }

	overall, err := svc.PopularRestaurants(ctx, rankings.Query{})
	require.NoError(t, err)
	require.Equal(t, []string{"Beta", "Alpha", "Gamma"}, names(overall, restName))

	byGrade, err := svc.PopularRestaurants(ctx, rankings.Query{Grade: "1A"})
	require.NoError(t, err)
	require.Equal(t, []string{"Gamma", "Alpha"}, names(byGrade, restName))
	require.Equal(t, 5, byGrade[0].Count)

	none, err := svc.PopularRestaurants(ctx, rankings.Query{Grade: "9Z"})
	require.NoError(t, err)
	require.Empty(t, none)

	require.NoError(t, db.Model(rs[1]).Update("is_deleted", true).Error)
	overall, err = svc.PopularRestaurants(ctx, rankings.Query{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha"}, names(overall, restName))
}

func TestPopularMenuItems(t *testing.T) {
	db, _, items := seed(t)
	svc := rankings.NewService(db)
	ctx := context.Background()

	overall, err := svc.PopularMenuItems(ctx, rankings.Query{})
	require.NoError(t, err)
	require.Len(t, overall, 4)
	require.Equal(t, items[1][0].ID, overall[0].ID)
	require.Equal(t, "Beta", overall[0].RestaurantName)

	byGrade, err := svc.PopularMenuItems(ctx, rankings.Query{Grade: "2B", Limit: 1})
	require.NoError(t, err)
	require.Len(t, byGrade, 1)
	require.Equal(t, 12, byGrade[0].Count)

	oneA, err := svc.PopularMenuItems(ctx, rankings.Query{Grade: "1A"})
	require.NoError(t, err)
	require.Equal(t, []string{items[0][0].ID, items[2][0].ID}, names(oneA, func(r rankings.MenuItemRank) string { return r.ID }))
}

func TestRestaurantsWithTopMenuItem(t *testing.T) {
	db, _, items := seed(t)
	svc := rankings.NewService(db)
	ctx := context.Background()

	rows, err := svc.RestaurantsWithTopMenuItem(ctx, rankings.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Beta", rows[0].Name)
	require.Equal(t, "Alpha", rows[1].Name)
	require.Equal(t, items[0][1].ID, rows[1].MostPopularMenu.ID)

	byGrade, err := svc.RestaurantsWithTopMenuItem(ctx, rankings.Query{Grade: "1A"})
	require.NoError(t, err)
	require.Equal(t, items[0][0].ID, byGrade[1].MostPopularMenu.ID)
	require.Nil(t, byGrade[0].MostPopularMenu)
}
