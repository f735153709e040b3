package stats_test

import (
	"context"
	"testing"

	"campus-food-api/models"
	"campus-food-api/stats"
	"campus-food-api/testutil"

	"github.com/stretchr/testify/require"
)

func TestSummarizeReviews(t *testing.T) {
	sum := stats.SummarizeReviews([]stats.ReviewRow{
		{Score: 4, Grade: "3A"},
		{Score: 5, Grade: "3A"},
		{Score: 3, Grade: ""},
	})
	require.Equal(t, 4.0, sum.Average)
	require.Equal(t, 3, sum.Count)
	require.Equal(t, models.ReviewStat{Average: 4.5, Count: 2}, sum.Groups["3A"])
	require.Equal(t, models.ReviewStat{Average: 3, Count: 1}, sum.Groups[models.UnknownGrade])

	empty := stats.SummarizeReviews(nil)
	require.Zero(t, empty.Average)
	require.Zero(t, empty.Count)
	require.NotNil(t, empty.Groups)
}

func TestRound1(t *testing.T) {
	require.Equal(t, 4.3, stats.Round1(13.0/3))
	require.Equal(t, 3.7, stats.Round1(11.0/3))
}

func TestRecomputeReviewStatsFromRows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r, _ := testutil.CreateRestaurant(t, db, 1, "Grill")

	var threeID string
	for i, score := range []int{4, 5, 3} {
		u := testutil.CreateUser(t, db, "user"+string(rune('a'+i)), "2B", models.RoleUser)
		rv := models.Review{RestaurantID: r.ID, UserID: u.ID, Score: score}
		require.NoError(t, db.Create(&rv).Error)
		if score == 3 {
			threeID = rv.ID
		}
	}

	sum, err := stats.RecomputeReviewStats(ctx, db, r.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, sum.Average)

	var got models.Restaurant
	require.NoError(t, db.First(&got, "id = ?", r.ID).Error)
	require.Equal(t, 4.0, got.AverageScore)
	require.Equal(t, 3, got.ReviewCount)
	require.Equal(t, models.ReviewStat{Average: 4, Count: 3}, got.ReviewStats.Data()["2B"])

	require.NoError(t, db.Model(&models.Review{}).Where("id = ?", threeID).Update("is_deleted", true).Error)
	_, err = stats.RecomputeReviewStats(ctx, db, r.ID)
	require.NoError(t, err)

	// recomputing twice must not drift
	_, err = stats.RecomputeReviewStats(ctx, db, r.ID)
	require.NoError(t, err)

	require.NoError(t, db.First(&got, "id = ?", r.ID).Error)
	require.Equal(t, 4.5, got.AverageScore)
	require.Equal(t, 2, got.ReviewCount)
}

func TestRecomputeWithNoReviewsResets(t *testing.T) {
	db := testutil.NewDB(t)
	r, _ := testutil.CreateRestaurant(t, db, 1, "Empty")
	require.NoError(t, db.Model(r).Updates(map[string]any{"average_score": 3.3, "review_count": 9}).Error)

	_, err := stats.RecomputeReviewStats(context.Background(), db, r.ID)
	require.NoError(t, err)

	var got models.Restaurant
	require.NoError(t, db.First(&got, "id = ?", r.ID).Error)
	require.Zero(t, got.AverageScore)
	require.Zero(t, got.ReviewCount)
	require.Empty(t, got.ReviewStats.Data())
}

func TestApplyCompletedOrder(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r, items := testutil.CreateRestaurant(t, db, 1, "Dumplings", 60, 80)
	u := testutil.CreateUser(t, db, "eater1", "1C", models.RoleUser)

	order := &models.Order{
		UserID:       u.ID,
		RestaurantID: r.ID,
		Items: []models.OrderItem{
			{MenuItemID: items[0].ID, Name: items[0].Name, Price: 60, Quantity: 2},
			{MenuItemID: items[1].ID, Name: items[1].Name, Price: 80, Quantity: 1},
			{MenuItemID: "gone", Name: "Removed dish", Price: 10, Quantity: 4},
		},
	}
	require.NoError(t, stats.ApplyCompletedOrder(ctx, db, order))

	var first models.MenuItem
	require.NoError(t, db.First(&first, "id = ?", items[0].ID).Error)
	require.Equal(t, 2, first.TotalOrders)
	require.Equal(t, map[string]int{"1C": 2}, first.OrderStats.Data())

	var got models.Restaurant
	require.NoError(t, db.First(&got, "id = ?", r.ID).Error)
	require.Equal(t, 1, got.TotalGroups)
	require.Equal(t, map[string]int{"1C": 1}, got.GroupStats.Data())

	require.NoError(t, stats.ApplyCompletedOrder(ctx, db, order))
	require.NoError(t, db.First(&got, "id = ?", r.ID).Error)
	require.Equal(t, 2, got.TotalGroups)
}

func TestApplyCompletedOrderUnknownUserGroup(t *testing.T) {
	db := testutil.NewDB(t)
	r, items := testutil.CreateRestaurant(t, db, 1, "Tea", 30)
	u := testutil.CreateUser(t, db, "nograde", "", models.RoleUser)

	order := &models.Order{UserID: u.ID, RestaurantID: r.ID, Items: []models.OrderItem{{MenuItemID: items[0].ID, Quantity: 3, Price: 30}}}
	require.NoError(t, stats.ApplyCompletedOrder(context.Background(), db, order))

	var mi models.MenuItem
	require.NoError(t, db.First(&mi, "id = ?", items[0].ID).Error)
	require.Equal(t, map[string]int{models.UnknownGrade: 3}, mi.OrderStats.Data())
}
