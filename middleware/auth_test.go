package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-food-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(a Auth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", a.Required(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s", GetPrincipal(c).ID)
	})
	r.GET("/admin", a.Required(), RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", a.Optional(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s", GetPrincipal(c).ID)
	})
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequiredAcceptsIssuedToken(t *testing.T) {
	a := Auth{Secret: []byte("k"), TTL: time.Hour}
	token, err := a.GenerateToken(&models.User{Entity: models.Entity{ID: "u1"}, Role: models.RoleUser})
	require.NoError(t, err)

	r := newRouter(a)
	w := do(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "u1", w.Body.String())

	require.Equal(t, http.StatusForbidden, do(r, "/admin", token).Code)
	require.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	require.Equal(t, "u1", do(r, "/maybe", token).Body.String())
	require.Equal(t, "", do(r, "/maybe", "").Body.String())
}

func TestRequiredRejectsBadTokens(t *testing.T) {
	a := Auth{Secret: []byte("k"), TTL: time.Hour}
	r := newRouter(a)

	forged, err := Auth{Secret: []byte("other"), TTL: time.Hour}.GenerateToken(&models.User{Entity: models.Entity{ID: "u1"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, do(r, "/me", forged).Code)

	expired, err := Auth{Secret: []byte("k"), TTL: -time.Minute}.GenerateToken(&models.User{Entity: models.Entity{ID: "u1"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, do(r, "/me", expired).Code)

	admin, err := a.GenerateToken(&models.User{Entity: models.Entity{ID: "root"}, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, do(r, "/admin", admin).Code)
}
