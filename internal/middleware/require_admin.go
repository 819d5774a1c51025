package middleware

import (
	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/utils"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		utils.AbortError(c, checkout.E(checkout.KindForbidden, "Admin access required"))
		return
	}
	c.Next()
}
