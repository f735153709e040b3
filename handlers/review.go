package handlers

import (
	"net/http"

	"campus-food-api/middleware"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
)

// ListReviews returns a restaurant's reviews; anonymous authors are masked
func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.Reviews.List(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, reviews)
}

// CreateReview adds the caller's review. A duplicate is a 409 whose data
// carries the reviewId when the existing review was soft-deleted.
func (h *Handler) CreateReview(c *gin.Context) {
	var in services.ReviewInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	review, err := h.Reviews.Create(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, review)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	var patch services.ReviewPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, err)
		return
	}
	review, err := h.Reviews.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

func (h *Handler) SoftDeleteReview(c *gin.Context) { h.setReviewDeleted(c, true) }
func (h *Handler) RestoreReview(c *gin.Context)    { h.setReviewDeleted(c, false) }

func (h *Handler) setReviewDeleted(c *gin.Context, deleted bool) {
	review, err := h.Reviews.SetDeleted(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), deleted)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

// DeleteReview removes a review permanently (admin)
func (h *Handler) DeleteReview(c *gin.Context) {
	if err := h.Reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "review deleted"})
}

// GetReview returns one review; anonymous authors are masked
func (h *Handler) GetReview(c *gin.Context) {
	review, err := h.Reviews.Get(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

// GetAllReviews returns every review including deleted ones (admin)
func (h *Handler) GetAllReviews(c *gin.Context) {
	reviews, err := h.Reviews.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, reviews)
}

// GetReviewStats returns the live average and count of a restaurant's reviews (admin)
func (h *Handler) GetReviewStats(c *gin.Context) {
	totals, err := h.Reviews.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, totals)
}

// GetMyReview returns the caller's review of a restaurant, deleted or not
func (h *Handler) GetMyReview(c *gin.Context) {
	review, err := h.Reviews.Mine(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}
