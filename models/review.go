package models

// Review is unique per (restaurant, user) whether or not it is soft-deleted
type Review struct {
	Entity
	RestaurantID string `json:"restaurant" gorm:"not null;size:36;uniqueIndex:idx_review_restaurant_user"`
	UserID       string `json:"user" gorm:"not null;size:36;uniqueIndex:idx_review_restaurant_user"`
	User         *User  `json:"author,omitempty" gorm:"foreignKey:UserID"`
	Score        int    `json:"score" gorm:"not null"`
	Content      string `json:"content" gorm:"size:300"`
	IsAnonymous  bool   `json:"isAnonymous"`
	IsDeleted    bool   `json:"isDeleted" gorm:"index"`
}
