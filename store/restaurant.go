package store

import (
	"fmt"
	"strconv"

	"campus-food-api/apperr"
	"campus-food-api/models"

	"gorm.io/gorm"
)

// FindRestaurant resolves an external key to a non-deleted restaurant. The
// key is tried as a storage identifier first, then as the public numeric id.
func FindRestaurant(db *gorm.DB, key string) (*models.Restaurant, error) {
	return findRestaurant(db.Scopes(Active), key)
}

// FindRestaurantAny is FindRestaurant including soft-deleted restaurants
func FindRestaurantAny(db *gorm.DB, key string) (*models.Restaurant, error) {
	return findRestaurant(db, key)
}

func findRestaurant(db *gorm.DB, key string) (*models.Restaurant, error) {
	var r models.Restaurant
	var err error
	switch {
	case models.IsStorageID(key):
		err = db.Where("id = ?", key).First(&r).Error
	default:
		publicID, perr := strconv.ParseInt(key, 10, 64)
		if perr != nil {
			return nil, apperr.NotFound("restaurant %q not found", key)
		}
		err = db.Where("public_id = ?", publicID).First(&r).Error
	}
	if IsNotFound(err) {
		return nil, apperr.NotFound("restaurant %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant %s: %w", key, err)
	}
	return &r, nil
}
