package handlers

import (
	"net/http"

	"campus-food-api/rankings"

	"github.com/gin-gonic/gin"
)

func rankingQuery(c *gin.Context) (rankings.Query, error) {
	limit, err := queryInt(c, "limit")
	return rankings.Query{Grade: c.Query("grade"), Limit: limit}, err
}

// PopularRestaurants ranks restaurants by completed orders, overall or for ?grade=
func (h *Handler) PopularRestaurants(c *gin.Context) {
	q, err := rankingQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.Rankings.PopularRestaurants(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *Handler) PopularMenuItems(c *gin.Context) {
	q, err := rankingQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.Rankings.PopularMenuItems(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *Handler) RestaurantsWithTopMenuItem(c *gin.Context) {
	q, err := rankingQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.Rankings.RestaurantsWithTopMenuItem(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}
