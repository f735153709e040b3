package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle states of an order
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// ErrOrderItemImmutable is returned when a stored line item is modified
var ErrOrderItemImmutable = errors.New("order line items are immutable")

type Order struct {
	Entity
	UserID        string               `json:"user" gorm:"not null;index;size:36"`
	RestaurantID  string               `json:"restaurant" gorm:"not null;index;size:36"`
	Items         []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	TotalPrice    float64              `json:"totalPrice" gorm:"not null"`
	Status        OrderStatus          `json:"status" gorm:"not null;default:'processing';index"`
	StatusHistory []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a frozen copy of a menu item taken when the order was placed
type OrderItem struct {
	ID         uint    `json:"-" gorm:"primaryKey"`
	OrderID    string  `json:"-" gorm:"not null;index;size:36"`
	MenuItemID string  `json:"menuItemId" gorm:"not null;size:36"`
	Name       string  `json:"name" gorm:"not null"`
	Price      float64 `json:"price" gorm:"not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
}

// BeforeUpdate rejects any change to a stored line item
func (i *OrderItem) BeforeUpdate(tx *gorm.DB) error {
	return ErrOrderItemImmutable
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"-" gorm:"not null;index;size:36"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy" gorm:"size:36"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// LineTotal sums price times quantity over items
func LineTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
