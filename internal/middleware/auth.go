package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/flicky/go-bookstore-api/internal/model"
)

const callerKey = "caller"

// AuthMiddleware turns a bearer token into a model.Caller. Role checks are
// left to the services.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		email, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		sid, _ := claims["sid"].(string)
		if email == "" || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		switch model.Role(role) {
		case model.RoleClient, model.RoleEmployee:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid role"})
			return
		}

		c.Set(callerKey, model.Caller{Email: email, Role: model.Role(role), SessionID: sid})
		c.Next()
	}
}

// GetCaller returns the authenticated caller, or the zero Caller on public
// routes.
func GetCaller(c *gin.Context) model.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(model.Caller)
	return caller
}
