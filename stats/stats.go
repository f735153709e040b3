// Package stats keeps the derived statistics on restaurants and menu items
// in line with their reviews and completed orders.
//
// Review statistics are always recomputed from the review rows. Order
// statistics are incremented once per completed order, which is safe because
// line items never change after an order is placed.
package stats

import (
	"context"
	"fmt"
	"math"

	"campus-food-api/models"
	"campus-food-api/store"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReviewRow is the part of a review that statistics depend on
type ReviewRow struct {
	Score int
	Grade string
}

// ReviewSummary is the derived review block of a restaurant
type ReviewSummary struct {
	Average float64
	Count   int
	Groups  map[string]models.ReviewStat
}

// Round1 rounds half away from zero to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SummarizeReviews computes the overall and per-group averages of rows
func SummarizeReviews(rows []ReviewRow) ReviewSummary {
	sum := ReviewSummary{Groups: map[string]models.ReviewStat{}}
	if len(rows) == 0 {
		return sum
	}

	total := 0
	groupTotals := map[string]int{}
	for _, r := range rows {
		g := models.GroupOf(r.Grade)
		total += r.Score
		groupTotals[g] += r.Score
		st := sum.Groups[g]
		st.Count++
		sum.Groups[g] = st
	}
	for g, st := range sum.Groups {
		st.Average = Round1(float64(groupTotals[g]) / float64(st.Count))
		sum.Groups[g] = st
	}
	sum.Count = len(rows)
	sum.Average = Round1(float64(total) / float64(len(rows)))
	return sum
}

// RecomputeReviewStats rebuilds average_score, review_count and review_stats
// of a restaurant from its non-deleted reviews and writes them in one update.
func RecomputeReviewStats(ctx context.Context, tx *gorm.DB, restaurantID string) (ReviewSummary, error) {
	var rows []ReviewRow
	err := tx.WithContext(ctx).Table("reviews").
		Select("reviews.score AS score, COALESCE(users.grade, '') AS grade").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.restaurant_id = ? AND reviews.is_deleted = ?", restaurantID, false).
		Scan(&rows).Error
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	sum := SummarizeReviews(rows)
	err = tx.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", restaurantID).
		Updates(map[string]any{
			"average_score": sum.Average,
			"review_count":  sum.Count,
			"review_stats":  datatypes.NewJSONType(sum.Groups),
		}).Error
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("failed to store review stats: %w", err)
	}
	return sum, nil
}

// ApplyCompletedOrder adds a completed order to the order statistics of its
// menu items and restaurant. Menu items that no longer exist are skipped.
// Callers must invoke it exactly once per order, on the transition into
// completed.
func ApplyCompletedOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	tx = tx.WithContext(ctx)

	var grades []string
	if err := tx.Model(&models.User{}).Where("id = ?", order.UserID).Pluck("grade", &grades).Error; err != nil {
		return fmt.Errorf("failed to load order user: %w", err)
	}
	group := models.UnknownGrade
	if len(grades) > 0 {
		group = models.GroupOf(grades[0])
	}

	for _, it := range order.Items {
		var mi models.MenuItem
		err := tx.Where("id = ?", it.MenuItemID).First(&mi).Error
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load menu item %s: %w", it.MenuItemID, err)
		}

		counts := bump(mi.OrderStats.Data(), group, it.Quantity)
		err = tx.Model(&models.MenuItem{}).Where("id = ?", mi.ID).Updates(map[string]any{
			"total_orders": gorm.Expr("total_orders + ?", it.Quantity),
			"order_stats":  datatypes.NewJSONType(counts),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update menu item stats: %w", err)
		}
	}

	var r models.Restaurant
	err := tx.Where("id = ?", order.RestaurantID).First(&r).Error
	if store.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load restaurant %s: %w", order.RestaurantID, err)
	}
	err = tx.Model(&models.Restaurant{}).Where("id = ?", r.ID).Updates(map[string]any{
		"total_groups": gorm.Expr("total_groups + ?", 1),
		"group_stats":  datatypes.NewJSONType(bump(r.GroupStats.Data(), group, 1)),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update restaurant stats: %w", err)
	}
	return nil
}

func bump(counts map[string]int, key string, n int) map[string]int {
	out := make(map[string]int, len(counts)+1)
	for k, v := range counts {
		out[k] = v
	}
	out[key] += n
	return out
}
