package models

// Counter holds the last issued value of a named sequence
type Counter struct {
	Name string `gorm:"primaryKey;size:50"`
	Seq  int64  `gorm:"not null"`
}

// RestaurantSequence names the counter behind Restaurant.PublicID
const RestaurantSequence = "restaurant"
