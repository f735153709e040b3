package handlers

import (
	"net/http"

	"campus-food-api/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTags(c *gin.Context)        { h.listTags(c, false) }
func (h *Handler) ListDefaultTags(c *gin.Context) { h.listTags(c, true) }

func (h *Handler) listTags(c *gin.Context, defaultsOnly bool) {
	tags, err := h.Tags.List(c.Request.Context(), defaultsOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	tag, err := h.Tags.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

// CreateTag adds a tag (admin)
func (h *Handler) CreateTag(c *gin.Context) {
	var in services.TagInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	tag, err := h.Tags.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, tag)
}

func (h *Handler) UpdateTag(c *gin.Context) {
	var patch services.TagPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, err)
		return
	}
	tag, err := h.Tags.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

// DeleteTag removes a tag permanently (admin)
func (h *Handler) DeleteTag(c *gin.Context) {
	if err := h.Tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "tag deleted"})
}
