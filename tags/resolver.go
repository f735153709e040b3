// Package tags maps free-text tag names onto Tag records.
package tags

import (
	"context"
	"fmt"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/store"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Normalize trims names, drops empty ones and removes duplicates while
// keeping first-seen order. Matching is case-sensitive.
func Normalize(names []string) []string {
	trimmed := lo.Map(names, func(n string, _ int) string { return strings.TrimSpace(n) })
	return lo.Uniq(lo.Compact(trimmed))
}

// Resolve returns one non-deleted tag per distinct name, creating
// user-defined tags for names not seen before. tx should be the caller's
// transaction so created tags roll back with it.
func Resolve(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = Normalize(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	var existing []models.Tag
	if err := tx.WithContext(ctx).Scopes(store.Active).Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	byName := lo.KeyBy(existing, func(t models.Tag) string { return t.Name })

	out := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			out = append(out, t)
			continue
		}
		t := models.Tag{Name: name, Type: models.TagUserDefined}
		if err := tx.WithContext(ctx).Create(&t).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return nil, apperr.Conflict("tag %q already exists", name)
			}
			return nil, fmt.Errorf("failed to create tag %s: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// IDs returns the storage identifiers of tags
func IDs(tags []models.Tag) []string {
	return lo.Map(tags, func(t models.Tag, _ int) string { return t.ID })
}
