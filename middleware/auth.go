package middleware

import (
	"strings"

	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired verifies the bearer token and stores the caller's user ID
// and email on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			utils.Unauthorized(c, "Authorization header required")
			return
		}

		userID, email, err := utils.ParseToken(secret, token)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(utils.ContextUserID, userID)
		c.Set(utils.ContextEmail, email)
		c.Next()
	}
}
