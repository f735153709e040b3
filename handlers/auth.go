package handlers

import (
	"net/http"

	"campus-food-api/middleware"
	"campus-food-api/models"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var in services.LoginInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	user, err := h.Users.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusOK, user)
}

func (h *Handler) issue(c *gin.Context, status int, user *models.User) {
	token, err := h.Auth.GenerateToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, status, authResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Users.Profile(c.Request.Context(), middleware.GetPrincipal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// ListUsers returns all accounts (admin)
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), c.Query("includeDeleted") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// BlockUser and UnblockUser toggle an account's blocked flag (admin)
func (h *Handler) BlockUser(c *gin.Context)   { h.setBlocked(c, true) }
func (h *Handler) UnblockUser(c *gin.Context) { h.setBlocked(c, false) }

func (h *Handler) setBlocked(c *gin.Context, blocked bool) {
	user, err := h.Users.SetBlocked(c.Request.Context(), c.Param("id"), blocked)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}
