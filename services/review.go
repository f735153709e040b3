package services

import (
	"context"
	"fmt"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/stats"
	"campus-food-api/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewService writes reviews and keeps restaurant review statistics current
type ReviewService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewReviewService(db *gorm.DB, log *zap.SugaredLogger) *ReviewService {
	return &ReviewService{db: db, log: log}
}

type ReviewInput struct {
	Score       *int   `json:"score" validate:"required,min=0,max=5"`
	Content     string `json:"content" validate:"max=300"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type ReviewPatch struct {
	Score       *int    `json:"score" validate:"omitempty,min=0,max=5"`
	Content     *string `json:"content" validate:"omitempty,max=300"`
	IsAnonymous *bool   `json:"isAnonymous"`
}

// Create adds p's review of a restaurant. A user has at most one review per
// restaurant; a soft-deleted one still counts and its id is returned in the
// conflict so the client can restore it instead.
func (s *ReviewService) Create(ctx context.Context, p Principal, restaurantKey string, in ReviewInput) (*models.Review, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in); err != nil {
		return nil, err
	}
	r, err := store.FindRestaurant(s.db.WithContext(ctx), restaurantKey)
	if err != nil {
		return nil, err
	}

	var existing models.Review
	err = s.db.WithContext(ctx).Where("restaurant_id = ? AND user_id = ?", r.ID, p.ID).First(&existing).Error
	switch {
	case err == nil:
		return nil, duplicateReview(&existing)
	case !store.IsNotFound(err):
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &models.Review{
		RestaurantID: r.ID,
		UserID:       p.ID,
		Score:        *in.Score,
		Content:      in.Content,
		IsAnonymous:  in.IsAnonymous,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("you have already reviewed this restaurant")
			}
			return fmt.Errorf("failed to insert review: %w", err)
		}
		_, err := stats.RecomputeReviewStats(ctx, tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("review created", "review", review.ID, "restaurant", r.ID, "score", review.Score)
	return review, nil
}

func duplicateReview(existing *models.Review) *apperr.Error {
	if existing.IsDeleted {
		return apperr.Conflict("a deleted review exists for this restaurant, restore or edit it instead").
			WithData(map[string]string{"reviewId": existing.ID})
	}
	return apperr.Conflict("you have already reviewed this restaurant")
}

// Update edits a review. Only a score change triggers a statistics recompute.
func (s *ReviewService) Update(ctx context.Context, p Principal, id string, patch ReviewPatch) (*models.Review, error) {
	if err := check(patch); err != nil {
		return nil, err
	}
	review, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if review.UserID != p.ID && !p.IsAdmin() {
		return nil, apperr.Forbidden("only the author or an admin may edit this review")
	}

	changes := map[string]any{}
	if patch.Score != nil && *patch.Score != review.Score {
		changes["score"] = *patch.Score
	}
	if patch.Content != nil {
		if c := strings.TrimSpace(*patch.Content); c != review.Content {
			changes["content"] = c
		}
	}
	if patch.IsAnonymous != nil && *patch.IsAnonymous != review.IsAnonymous {
		changes["is_anonymous"] = *patch.IsAnonymous
	}
	if len(changes) == 0 {
		return nil, apperr.Validation("no changes to apply")
	}
	_, scoreChanged := changes["score"]

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Review{}).Where("id = ?", review.ID).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		if !scoreChanged {
			return nil
		}
		_, err := stats.RecomputeReviewStats(ctx, tx, review.RestaurantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id, true)
}

// SetDeleted soft-deletes or restores a review and recomputes statistics
func (s *ReviewService) SetDeleted(ctx context.Context, p Principal, id string, deleted bool) (*models.Review, error) {
	review, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if review.UserID != p.ID && !p.IsAdmin() {
		return nil, apperr.Forbidden("only the author or an admin may change this review")
	}
	if review.IsDeleted == deleted {
		return review, nil
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Review{}).Where("id = ?", review.ID).Update("is_deleted", deleted).Error; err != nil {
			return fmt.Errorf("failed to toggle review: %w", err)
		}
		_, err := stats.RecomputeReviewStats(ctx, tx, review.RestaurantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	review.IsDeleted = deleted
	return review, nil
}

// Delete removes a review permanently
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	review, err := s.find(ctx, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Review{}, "id = ?", review.ID).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		_, err := stats.RecomputeReviewStats(ctx, tx, review.RestaurantID)
		return err
	})
}

// List returns the reviews of a restaurant, newest first. Authors of
// anonymous reviews are hidden from everyone but themselves and admins.
func (s *ReviewService) List(ctx context.Context, viewer Principal, restaurantKey string) ([]models.Review, error) {
	r, err := store.FindRestaurant(s.db.WithContext(ctx), restaurantKey)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	err = s.db.WithContext(ctx).Scopes(store.Visible(viewer.IsAdmin())).
		Preload("User").
		Where("restaurant_id = ?", r.ID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	for i := range reviews {
		maskAuthor(viewer, &reviews[i])
	}
	return reviews, nil
}

func maskAuthor(viewer Principal, rv *models.Review) {
	if rv.IsAnonymous && !viewer.IsAdmin() && rv.UserID != viewer.ID {
		rv.UserID = ""
		rv.User = nil
	}
}

// Get returns one review. Deleted reviews are visible to admins only.
func (s *ReviewService) Get(ctx context.Context, viewer Principal, id string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Scopes(store.Visible(viewer.IsAdmin())).Preload("User").
		First(&review, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("review %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review %s: %w", id, err)
	}
	maskAuthor(viewer, &review)
	return &review, nil
}

// All returns every review, deleted ones included, newest first
func (s *ReviewService) All(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ReviewTotals is the live score summary of a restaurant's visible reviews
type ReviewTotals struct {
	AverageScore float64 `json:"averageScore"`
	ReviewCount  int64   `json:"reviewCount"`
}

// Stats averages and counts the non-deleted reviews of a restaurant
func (s *ReviewService) Stats(ctx context.Context, restaurantKey string) (*ReviewTotals, error) {
	r, err := store.FindRestaurantAny(s.db.WithContext(ctx), restaurantKey)
	if err != nil {
		return nil, err
	}
	var row struct {
		Average *float64
		Count   int64
	}
	err = s.db.WithContext(ctx).Model(&models.Review{}).Scopes(store.Active).
		Select("AVG(score) AS average, COUNT(*) AS count").
		Where("restaurant_id = ?", r.ID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	totals := &ReviewTotals{ReviewCount: row.Count}
	if row.Average != nil {
		totals.AverageScore = stats.Round1(*row.Average)
	}
	return totals, nil
}

// Mine returns p's review of a restaurant, soft-deleted or not, so a client
// can restore or edit it after a duplicate conflict
func (s *ReviewService) Mine(ctx context.Context, p Principal, restaurantKey string) (*models.Review, error) {
	r, err := store.FindRestaurant(s.db.WithContext(ctx), restaurantKey)
	if err != nil {
		return nil, err
	}
	var review models.Review
	err = s.db.WithContext(ctx).Where("restaurant_id = ? AND user_id = ?", r.ID, p.ID).First(&review).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("you have not reviewed this restaurant")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) find(ctx context.Context, id string, includeDeleted bool) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Scopes(store.Visible(includeDeleted)).First(&review, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("review %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review %s: %w", id, err)
	}
	return &review, nil
}
