package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"campus-food-api/apperr"
	"campus-food-api/middleware"
	"campus-food-api/rankings"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the HTTP API on top of the services
type Handler struct {
	Users       *services.UserService
	Restaurants *services.RestaurantService
	Reviews     *services.ReviewService
	Orders      *services.OrderService
	Tags        *services.TagService
	Rankings    *rankings.Service
	Auth        middleware.Auth
	Log         *zap.SugaredLogger

	// MaxUploadBytes caps multipart image uploads; zero means no cap
	MaxUploadBytes int64
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail writes err as an envelope. Internal details stay out of responses in
// release mode.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := gin.H{"success": false, "message": err.Error()}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["message"] = ae.Message
		if ae.Data != nil {
			body["data"] = ae.Data
		}
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.Log.Errorw("request failed", "path", c.FullPath(), "error", err)
		if gin.Mode() == gin.ReleaseMode {
			body["message"] = "internal server error"
		} else {
			body["message"] = err.Error()
		}
	}
	c.JSON(status, body)
}

// bind decodes a JSON body, reporting decode errors as validation failures
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("invalid request body: %s", err.Error())
	}
	return nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be true or false", key)
	}
	return &b, nil
}
