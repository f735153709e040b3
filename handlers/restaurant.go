package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/media"
	"campus-food-api/middleware"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
)

// ── Restaurant payloads ─────────────────────────────────────────────────────

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// upload returns the optional "image" file of a multipart request. Files over
// max bytes are rejected without being read; max <= 0 disables the limit.
func upload(c *gin.Context, max int64) (*media.File, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("image: %s", err.Error())
	}
	if max > 0 && fh.Size > max {
		return nil, apperr.Validation("image: %v", media.ErrTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal(err, "failed to open upload")
	}
	defer f.Close()

	var r io.Reader = f
	if max > 0 {
		r = io.LimitReader(f, max+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Internal(err, "failed to read upload")
	}
	if max > 0 && int64(len(data)) > max {
		return nil, apperr.Validation("image: %v", media.ErrTooLarge)
	}
	return &media.File{Name: fh.Filename, Data: data}, nil
}

func restaurantPayload(c *gin.Context, maxUpload int64) (services.RestaurantInput, *media.File, error) {
	var in services.RestaurantInput
	if !isMultipart(c) {
		return in, nil, bind(c, &in)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, apperr.Validation("invalid multipart body: %s", err.Error())
	}
	if in, err = services.ParseRestaurantForm(form.Value); err != nil {
		return in, nil, err
	}
	file, err := upload(c, maxUpload)
	return in, file, err
}

func menuPayload(c *gin.Context, maxUpload int64) (services.MenuInput, *media.File, error) {
	var in services.MenuInput
	if !isMultipart(c) {
		return in, nil, bind(c, &in)
	}
	in.Name = c.PostForm("name")
	if raw, found := c.GetPostForm("price"); found && raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, nil, apperr.Validation("price: must be a number")
		}
		in.Price = &price
	}
	in.Tags = c.PostFormArray("tags")
	file, err := upload(c, maxUpload)
	return in, file, err
}

// ── Restaurant routes ───────────────────────────────────────────────────────

// CreateRestaurant creates a restaurant owned by the caller
func (h *Handler) CreateRestaurant(c *gin.Context) {
	in, file, err := restaurantPayload(c, h.MaxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.Restaurants.Create(c.Request.Context(), middleware.GetPrincipal(c), in, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// UpdateRestaurant applies a partial update; a present menu replaces the old one
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	in, file, err := restaurantPayload(c, h.MaxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.Restaurants.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// AddMenuItem appends one item to a restaurant's menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	in, file, err := menuPayload(c, h.MaxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.Restaurants.AddMenuItem(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

func (h *Handler) SoftDeleteRestaurant(c *gin.Context) { h.setRestaurantDeleted(c, true) }
func (h *Handler) RestoreRestaurant(c *gin.Context)    { h.setRestaurantDeleted(c, false) }

func (h *Handler) setRestaurantDeleted(c *gin.Context, deleted bool) {
	r, err := h.Restaurants.SetDeleted(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), deleted)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// DeleteRestaurant removes a restaurant permanently (admin)
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	if err := h.Restaurants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "restaurant deleted"})
}

// ListRestaurants supports ?q=&category=&delivery=&sell=&page=&size=.
// Admins may add includeDeleted=true.
func (h *Handler) ListRestaurants(c *gin.Context) {
	q := services.ListQuery{
		Q:              c.Query("q"),
		Category:       c.Query("category"),
		IncludeDeleted: middleware.GetPrincipal(c).IsAdmin() && c.Query("includeDeleted") == "true",
	}
	var err error
	if q.Delivery, err = queryBool(c, "delivery"); err == nil {
		q.Sell, err = queryBool(c, "sell")
	}
	if err == nil {
		q.Page, err = queryInt(c, "page")
	}
	if err == nil {
		q.Size, err = queryInt(c, "size")
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	list, total, err := h.Restaurants.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"restaurants": list, "total": total})
}

// GetRestaurant accepts either the storage id or the public restaurantId
func (h *Handler) GetRestaurant(c *gin.Context) {
	includeDeleted := middleware.GetPrincipal(c).IsAdmin()
	r, err := h.Restaurants.Get(c.Request.Context(), c.Param("id"), includeDeleted)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// GetMenu returns the active menu of a restaurant
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.Restaurants.Menu(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
