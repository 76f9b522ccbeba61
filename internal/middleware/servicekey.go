package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireServiceKey guards service-to-service routes (the status webhook)
// with a static shared key.
func RequireServiceKey(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Service-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid service key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
