package auth

import (
	"log"
	"net/http"

	"equiptrack/internal/database"
	"equiptrack/internal/models"

	"github.com/gin-gonic/gin"
)

// IdentityHeader carries the username asserted by the upstream auth proxy.
// Session handling and credential checks live outside this service.
const IdentityHeader = "X-Auth-Username"

// IdentityMiddleware resolves the asserted username against the account
// table and stores username and role in the request context
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(IdentityHeader)
		if username == "" {
			c.Next()
			return
		}

		db := database.GetDB()
		var account models.Account
		if err := db.Where("username = ?", username).First(&account).Error; err != nil {
			log.Printf("Warning: Asserted identity %q not found: %v", username, err)
			c.Next()
			return
		}

		c.Set("username", account.Username)
		c.Set("role", string(account.Role))
		c.Next()
	}
}

// RequireUser aborts the request unless an identity was resolved
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("username") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts the request unless the resolved identity is an admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("username") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		if c.GetString("role") != string(models.RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
