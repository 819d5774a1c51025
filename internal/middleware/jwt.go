package middleware

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/utils"
)

// AuthRequired valide le Bearer token et pose user_id / email / role dans
// le contexte gin.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Missing authentication token"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Invalid Authorization header format"))
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil {
			utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Invalid token"))
			return
		}

		if exp, ok := claims["exp"].(float64); ok {
			if time.Now().Unix() > int64(exp) {
				utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Token expired"))
				return
			}
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			utils.AbortError(c, checkout.E(checkout.KindUnauthorized, "Invalid token claims"))
			return
		}

		c.Set("user_id", userID)
		c.Set("email", claims["email"])
		c.Set("role", claims["role"])

		c.Next()
	}
}
