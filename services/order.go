package services

import (
	"context"
	"fmt"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/statemachine"
	"campus-food-api/stats"
	"campus-food-api/store"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService places orders and drives their status
type OrderService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewOrderService(db *gorm.DB, log *zap.SugaredLogger) *OrderService {
	return &OrderService{db: db, log: log}
}

type OrderLineInput struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type OrderInput struct {
	RestaurantID string           `json:"restaurantId" validate:"required"`
	Items        []OrderLineInput `json:"items" validate:"required,min=1,dive"`
}

// Place creates an order whose line items copy the current name and price
// of each menu item.
func (s *OrderService) Place(ctx context.Context, p Principal, in OrderInput) (*models.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	r, err := store.FindRestaurant(s.db.WithContext(ctx), in.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !r.Sell {
		return nil, apperr.Validation("restaurant %s is not taking orders", in.RestaurantID)
	}

	ids := lo.Uniq(lo.Map(in.Items, func(l OrderLineInput, _ int) string { return l.MenuItemID }))
	var menu []models.MenuItem
	err = s.db.WithContext(ctx).Scopes(store.Active).
		Where("restaurant_id = ? AND id IN ?", r.ID, ids).Find(&menu).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	byID := lo.KeyBy(menu, func(m models.MenuItem) string { return m.ID })

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		m, ok := byID[line.MenuItemID]
		if !ok {
			return nil, apperr.Validation("menu item %s not found", line.MenuItemID)
		}
		items = append(items, models.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   line.Quantity,
		})
	}

	order := &models.Order{
		UserID:       p.ID,
		RestaurantID: r.ID,
		Items:        items,
		TotalPrice:   models.LineTotal(items),
		Status:       models.StatusProcessing,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusProcessing,
			ChangedBy: p.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("order placed", "order", order.ID, "restaurant", r.ID, "total", order.TotalPrice)
	return order, nil
}

// Mine returns p's orders, newest first
func (s *OrderService) Mine(ctx context.Context, p Principal) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", p.ID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// All returns every order, optionally filtered by status and restaurant
func (s *OrderService) All(ctx context.Context, status, restaurantKey string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Preload("StatusHistory")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if restaurantKey != "" {
		r, err := store.FindRestaurantAny(s.db.WithContext(ctx), restaurantKey)
		if err != nil {
			return nil, err
		}
		query = query.Where("restaurant_id = ?", r.ID)
	}
	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order visible to p
func (s *OrderService) Get(ctx context.Context, p Principal, id string) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(s.actors(ctx, p, order)) == 0 {
		return nil, apperr.Forbidden("this order does not belong to you")
	}
	return order, nil
}

// UpdateStatus moves an order to status. Setting the current status again
// is a no-op. The order statistics are applied only by the request whose
// conditional update actually moved the order into completed.
func (s *OrderService) UpdateStatus(ctx context.Context, p Principal, id string, status models.OrderStatus) (*models.Order, error) {
	if !statemachine.Known(status) {
		return nil, apperr.Validation("status: unknown order status %q", status)
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	actors := s.actors(ctx, p, order)
	if len(actors) == 0 {
		return nil, apperr.Forbidden("this order does not belong to you")
	}
	if order.Status == status {
		return order, nil
	}
	if err := statemachine.CanTransition(order.Status, status, actors...); err != nil {
		return nil, apperr.Conflict("%v", err)
	}

	prev := order.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, prev).Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return apperr.Conflict("order %s changed status concurrently", order.ID)
		}
		err := tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   status,
			ChangedBy:  p.ID,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		if status == models.StatusCompleted {
			return stats.ApplyCompletedOrder(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("order status changed", "order", order.ID, "from", prev, "to", status)
	return s.find(ctx, id)
}

func (s *OrderService) find(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").First(&order, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("order %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return &order, nil
}

// actors lists the roles p holds with respect to order
func (s *OrderService) actors(ctx context.Context, p Principal, order *models.Order) []string {
	var actors []string
	if p.ID != "" && p.ID == order.UserID {
		actors = append(actors, statemachine.ActorCustomer)
	}
	var owners []string
	err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", order.RestaurantID).Pluck("owner_id", &owners).Error
	if err != nil {
		s.log.Warnw("failed to load restaurant owner", "restaurant", order.RestaurantID, "error", err)
	}
	if p.ID != "" && len(owners) > 0 && owners[0] == p.ID {
		actors = append(actors, statemachine.ActorOwner)
	}
	if p.IsAdmin() {
		actors = append(actors, statemachine.ActorAdmin)
	}
	return actors
}
