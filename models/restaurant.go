package models

import "gorm.io/datatypes"

// Category is the restaurant classification
type Category string

const (
	CategoryFood  Category = "food"
	CategoryDrink Category = "drink"
	CategoryOther Category = "other"
)

// BusinessHour is one day entry of a restaurant's opening schedule
type BusinessHour struct {
	Day      string `json:"day" validate:"required,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	Open     string `json:"open,omitempty" validate:"required_if=IsClosed false,omitempty,datetime=15:04"`
	Close    string `json:"close,omitempty" validate:"required_if=IsClosed false,omitempty,datetime=15:04"`
	IsClosed bool   `json:"isClosed"`
}

// ReviewStat is the per-group review summary
type ReviewStat struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Restaurant struct {
	Entity
	PublicID       int64                                     `json:"restaurantId" gorm:"uniqueIndex;not null"`
	OwnerID        string                                    `json:"owner" gorm:"index;size:36"`
	Image          string                                    `json:"image"`
	ImageHandle    string                                    `json:"-"`
	MenuImage      string                                    `json:"menuImage,omitempty"`
	Name           string                                    `json:"name" gorm:"not null;size:100"`
	Phone          string                                    `json:"phone" gorm:"not null"`
	Address        string                                    `json:"address,omitempty" gorm:"size:60"`
	Link           string                                    `json:"link,omitempty" gorm:"size:100"`
	Category       Category                                  `json:"category" gorm:"not null"`
	Tags           []Tag                                     `json:"tags" gorm:"many2many:restaurant_tags"`
	Delivery       bool                                      `json:"delivery"`
	DeliveryPrice  float64                                   `json:"delivery_price"`
	DeliveryNumber int                                       `json:"delivery_number"`
	BusinessHours  datatypes.JSONSlice[BusinessHour]         `json:"business_hours"`
	OrderTime      string                                    `json:"order_time,omitempty"`
	Sell           bool                                      `json:"sell"`
	IsDeleted      bool                                      `json:"isDeleted" gorm:"index"`
	AverageScore   float64                                   `json:"average_score"`
	ReviewCount    int                                       `json:"review_count"`
	ReviewStats    datatypes.JSONType[map[string]ReviewStat] `json:"review_stats"`
	TotalGroups    int                                       `json:"totalGroups"`
	CurrentGroups  int                                       `json:"currentGroups"`
	GroupStats     datatypes.JSONType[map[string]int]        `json:"group_stats"`
	Menu           []MenuItem                                `json:"menu,omitempty" gorm:"foreignKey:RestaurantID"`
}

type MenuItem struct {
	Entity
	RestaurantID  string                             `json:"restaurant" gorm:"not null;index;size:36"`
	Image         string                             `json:"image,omitempty"`
	ImageHandle   string                             `json:"-"`
	Name          string                             `json:"name" gorm:"not null;size:100"`
	Price         float64                            `json:"price" gorm:"not null;check:price >= 0"`
	Tags          datatypes.JSONSlice[string]        `json:"tags"`
	IsDeleted     bool                               `json:"isDeleted" gorm:"index"`
	TotalOrders   int                                `json:"totalOrders"`
	CurrentOrders int                                `json:"currentOrders"`
	OrderStats    datatypes.JSONType[map[string]int] `json:"order_stats"`
}

// EmptyCounts returns an initialized group counter map column
func EmptyCounts() datatypes.JSONType[map[string]int] {
	return datatypes.NewJSONType(map[string]int{})
}

// EmptyReviewStats returns an initialized review summary map column
func EmptyReviewStats() datatypes.JSONType[map[string]ReviewStat] {
	return datatypes.NewJSONType(map[string]ReviewStat{})
}
