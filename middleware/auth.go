package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserKey = "userID"
	RoleKey = "userRole"
)

// AuthMiddleware trusts the gateway-authenticated identity headers. The
// acting user is threaded explicitly from here; nothing downstream reads
// ambient state.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user id"})
			return
		}
		c.Set(UserKey, userID)
		c.Set(RoleKey, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// AdminMiddleware restricts a route group to admin users.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(RoleKey); role != "ADMIN" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by AuthMiddleware.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserKey); exists {
		return val.(uuid.UUID)
	}
	return uuid.Nil
}
