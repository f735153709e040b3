package services

import (
	"context"
	"fmt"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/store"

	"gorm.io/gorm"
)

// TagService manages the tag catalogue
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

type TagInput struct {
	Name string         `json:"name" validate:"required,max=50"`
	Type models.TagType `json:"type" validate:"omitempty,oneof=admin-defined user-defined"`
}

type TagPatch struct {
	Name      *string         `json:"name" validate:"omitempty,max=50"`
	Type      *models.TagType `json:"type" validate:"omitempty,oneof=admin-defined user-defined"`
	IsDeleted *bool           `json:"isDeleted"`
}

// List returns active tags by name, or only the admin-defined ones
func (s *TagService) List(ctx context.Context, defaultsOnly bool) ([]models.Tag, error) {
	query := s.db.WithContext(ctx).Scopes(store.Active)
	if defaultsOnly {
		query = query.Where("type = ?", models.TagAdminDefined)
	}
	var out []models.Tag
	if err := query.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return out, nil
}

func (s *TagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.WithContext(ctx).Scopes(store.Active).First(&t, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("tag %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &t, nil
}

// Create adds a tag; names are unique across active and deleted tags
func (s *TagService) Create(ctx context.Context, in TagInput) (*models.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = models.TagUserDefined
	}
	t := &models.Tag{Name: in.Name, Type: in.Type}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("tag %q already exists", in.Name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return t, nil
}

// Update renames, retypes, deletes or restores a tag
func (s *TagService) Update(ctx context.Context, id string, patch TagPatch) (*models.Tag, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, apperr.Validation("name: is required")
		}
		patch.Name = &trimmed
	}
	if err := check(patch); err != nil {
		return nil, err
	}

	var t models.Tag
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("tag %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}

	changes := map[string]any{}
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.Type != nil {
		changes["type"] = *patch.Type
	}
	if patch.IsDeleted != nil {
		changes["is_deleted"] = *patch.IsDeleted
	}
	if len(changes) == 0 {
		return &t, nil
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("tag name %v already exists", changes["name"])
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload tag: %w", err)
	}
	return &t, nil
}

// Delete removes a tag permanently and unlinks it from every restaurant
func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM restaurant_tags WHERE tag_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink tag: %w", err)
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete tag: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("tag %q not found", id)
		}
		return nil
	})
}
