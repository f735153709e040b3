package middleware

import (
	"net/http"
	"strings"
	"time"

	"campus-food-api/models"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

type Claims struct {
	UserID string          `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks HS256 tokens
type Auth struct {
	Secret []byte
	TTL    time.Duration
}

// GenerateToken creates a signed JWT for a given user
func (a Auth) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

func (a Auth) parse(header string) (*Claims, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

// Required validates the JWT and injects the principal into context
func (a Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parse(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or missing token"})
			return
		}
		c.Set(principalKey, services.Principal{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// Optional injects the principal when a valid token is present
func (a Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := a.parse(c.GetHeader("Authorization")); ok {
			c.Set(principalKey, services.Principal{ID: claims.UserID, Role: claims.Role})
		}
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "access denied"})
	}
}

// GetPrincipal returns the caller, or the zero principal for anonymous requests
func GetPrincipal(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}
