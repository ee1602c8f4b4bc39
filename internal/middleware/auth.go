package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the identity the platform's auth service minted the bearer
// token for. Tenant scoping and row visibility are enforced here at the
// boundary; the engine behind it is tenant-agnostic.
type Principal struct {
	UserID   uint
	TenantID string
}

// JWTAuth validates an HS256 bearer token and stores the principal on the
// request context.
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		principal, err := parseToken(parts[1], key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}

// OptionalAuth resolves a principal when a token is present but lets
// anonymous viewers through; spectating requires no account.
func OptionalAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			if principal, err := parseToken(parts[1], key); err == nil {
				c.Set("principal", principal)
			}
		}
		c.Next()
	}
}

func parseToken(tokenString string, key []byte) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}

	p := Principal{}
	if id, ok := claims["user_id"].(float64); ok {
		p.UserID = uint(id)
	}
	if tenant, ok := claims["tenant_id"].(string); ok {
		p.TenantID = tenant
	}
	if p.UserID == 0 {
		return Principal{}, errors.New("token carries no user id")
	}
	return p, nil
}

// GetPrincipal pulls the principal a JWTAuth middleware stored.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get("principal")
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
