package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-food-api/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func respond(t *testing.T, mode string, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(mode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	h := &Handler{Log: zaptest.NewLogger(t).Sugar()}
	r := gin.New()
	r.GET("/", func(c *gin.Context) { h.fail(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFailMapsKinds(t *testing.T) {
	code, body := respond(t, gin.TestMode, fmt.Errorf("loading: %w", apperr.NotFound("restaurant %q not found", "9")))
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, `restaurant "9" not found`, body["message"])

	code, body = respond(t, gin.TestMode, apperr.Conflict("dup").WithData(map[string]string{"reviewId": "r1"}))
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, map[string]any{"reviewId": "r1"}, body["data"])
}

func TestFailHidesInternalErrorsInRelease(t *testing.T) {
	cause := errors.New("disk I/O error")

	code, body := respond(t, gin.TestMode, cause)
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "disk I/O error", body["message"])

	code, body = respond(t, gin.ReleaseMode, cause)
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "internal server error", body["message"])
}
