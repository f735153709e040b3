package store

import (
	"context"
	"fmt"

	"campus-food-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextSequence increments the named counter and returns the new value.
// The increment is a single upsert so concurrent callers never share a value.
func NextSequence(ctx context.Context, db *gorm.DB, name string) (int64, error) {
	var counter models.Counter
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"seq": gorm.Expr("seq + 1")}),
		}).Create(&models.Counter{Name: name, Seq: 1})
		if upsert.Error != nil {
			return upsert.Error
		}
		return tx.Where("name = ?", name).First(&counter).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return counter.Seq, nil
}
