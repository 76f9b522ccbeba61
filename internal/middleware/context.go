package middleware

import "github.com/gin-gonic/gin"

// GetUserID extracts the authenticated user ID from the context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	return userID.(string)
}

// GetToken extracts the raw bearer token from the context
func GetToken(c *gin.Context) string {
	token, exists := c.Get("token")
	if !exists {
		return ""
	}
	return token.(string)
}
