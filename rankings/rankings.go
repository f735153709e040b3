// Package rankings serves read-only leaderboards over the order statistics.
//
// Without a grade the boards sort by the overall totals. With a grade they
// sort by that grade's slot in the statistics map, and entries whose slot is
// absent or zero are left out.
package rankings

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"campus-food-api/models"
	"campus-food-api/store"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Query selects the statistic to rank by
type Query struct {
	Grade string
	Limit int
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	}
	return q.Limit
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RestaurantRank is one row of the popular restaurants board
type RestaurantRank struct {
	ID          string          `json:"id"`
	PublicID    int64           `json:"restaurantId"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Category    models.Category `json:"category"`
	TotalGroups int             `json:"totalGroups"`
	GroupStats  map[string]int  `json:"group_stats"`
	Count       int             `json:"count"`
}

// MenuItemRank is one row of the popular menu items board
type MenuItemRank struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Image          string         `json:"image,omitempty"`
	RestaurantID   string         `json:"restaurant"`
	RestaurantName string         `json:"restaurantName"`
	TotalOrders    int            `json:"totalOrders"`
	OrderStats     map[string]int `json:"order_stats"`
	Count          int            `json:"count"`
}

// RestaurantWithTop pairs a restaurant with its most ordered menu item
type RestaurantWithTop struct {
	ID              string        `json:"id"`
	PublicID        int64         `json:"restaurantId"`
	Name            string        `json:"name"`
	Image           string        `json:"image"`
	TotalGroups     int           `json:"totalGroups"`
	MostPopularMenu *MenuItemRank `json:"mostPopularMenu"`
}

// PopularRestaurants ranks restaurants by completed orders
func (s *Service) PopularRestaurants(ctx context.Context, q Query) ([]RestaurantRank, error) {
	grade := strings.TrimSpace(q.Grade)
	query := s.db.WithContext(ctx).Scopes(store.Active)
	if grade == "" {
		query = query.Order("total_groups DESC").Order("public_id ASC").Limit(q.limit())
	} else {
		query = query.Order("public_id ASC")
	}
	var rows []models.Restaurant
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}

	ranks := lo.Map(rows, func(r models.Restaurant, _ int) RestaurantRank {
		stats := r.GroupStats.Data()
		n := r.TotalGroups
		if grade != "" {
			n = stats[grade]
		}
		return RestaurantRank{
			ID:          r.ID,
			PublicID:    r.PublicID,
			Name:        r.Name,
			Image:       r.Image,
			Category:    r.Category,
			TotalGroups: r.TotalGroups,
			GroupStats:  nonNil(stats),
			Count:       n,
		}
	})
	if grade == "" {
		return ranks, nil
	}
	return topBy(ranks, func(r RestaurantRank) int { return r.Count }, q.limit()), nil
}

// PopularMenuItems ranks menu items by ordered quantity
func (s *Service) PopularMenuItems(ctx context.Context, q Query) ([]MenuItemRank, error) {
	grade := strings.TrimSpace(q.Grade)
	query := s.db.WithContext(ctx).Scopes(store.Active)
	if grade == "" {
		query = query.Order("total_orders DESC").Order("created_at ASC").Limit(q.limit())
	} else {
		query = query.Order("created_at ASC")
	}
	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	names, err := s.restaurantNames(ctx, lo.Uniq(lo.Map(items, func(m models.MenuItem, _ int) string { return m.RestaurantID })))
	if err != nil {
		return nil, err
	}
	ranks := lo.Map(items, func(m models.MenuItem, _ int) MenuItemRank {
		rank := menuRank(m, grade)
		rank.RestaurantName = names[m.RestaurantID]
		return rank
	})
	if grade == "" {
		return ranks, nil
	}
	return topBy(ranks, func(r MenuItemRank) int { return r.Count }, q.limit()), nil
}

// RestaurantsWithTopMenuItem lists the busiest restaurants, each with the
// menu item ordered most overall or by the given grade.
func (s *Service) RestaurantsWithTopMenuItem(ctx context.Context, q Query) ([]RestaurantWithTop, error) {
	grade := strings.TrimSpace(q.Grade)
	var rows []models.Restaurant
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Order("total_groups DESC").Order("public_id ASC").
		Limit(q.limit()).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}
	if len(rows) == 0 {
		return []RestaurantWithTop{}, nil
	}

	var items []models.MenuItem
	err = s.db.WithContext(ctx).Scopes(store.Active).
		Where("restaurant_id IN ?", lo.Map(rows, func(r models.Restaurant, _ int) string { return r.ID })).
		Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	byRestaurant := lo.GroupBy(items, func(m models.MenuItem) string { return m.RestaurantID })

	out := make([]RestaurantWithTop, 0, len(rows))
	for _, r := range rows {
		entry := RestaurantWithTop{
			ID:          r.ID,
			PublicID:    r.PublicID,
			Name:        r.Name,
			Image:       r.Image,
			TotalGroups: r.TotalGroups,
		}
		ranks := lo.Map(byRestaurant[r.ID], func(m models.MenuItem, _ int) MenuItemRank { return menuRank(m, grade) })
		if grade != "" {
			ranks = lo.Filter(ranks, func(m MenuItemRank, _ int) bool { return m.Count > 0 })
		}
		if len(ranks) > 0 {
			top := lo.MaxBy(ranks, func(a, b MenuItemRank) bool { return a.Count > b.Count })
			top.RestaurantName = r.Name
			entry.MostPopularMenu = &top
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Service) restaurantNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	var rows []models.Restaurant
	if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load restaurant names: %w", err)
	}
	return lo.SliceToMap(rows, func(r models.Restaurant) (string, string) { return r.ID, r.Name }), nil
}

func menuRank(m models.MenuItem, grade string) MenuItemRank {
	stats := m.OrderStats.Data()
	n := m.TotalOrders
	if grade != "" {
		n = stats[grade]
	}
	return MenuItemRank{
		ID:           m.ID,
		Name:         m.Name,
		Price:        m.Price,
		Image:        m.Image,
		RestaurantID: m.RestaurantID,
		TotalOrders:  m.TotalOrders,
		OrderStats:   nonNil(stats),
		Count:        n,
	}
}

// topBy keeps entries with a positive key, sorted by it descending. The sort
// is stable so ties keep their incoming order.
func topBy[T any](rows []T, key func(T) int, limit int) []T {
	rows = lo.Filter(rows, func(r T, _ int) bool { return key(r) > 0 })
	slices.SortStableFunc(rows, func(a, b T) int { return cmp.Compare(key(b), key(a)) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
