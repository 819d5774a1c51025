package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/models"
)

// GenerateJWT émet le token d'accès. Durée via JWT_EXPIRY_HOURS.
func GenerateJWT(user models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Duration(config.GetInt("JWT_EXPIRY_HOURS", 24)) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken émet le refresh token, signé avec le secret dédié.
func GenerateRefreshToken(user models.User) (string, error) {
	secret := os.Getenv("JWT_REFRESH_SECRET")

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"type":    "refresh",
		"exp":     time.Now().Add(time.Duration(config.GetInt("JWT_REFRESH_EXPIRY_DAYS", 30)) * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseRefreshToken valide un refresh token et retourne le user_id.
func ParseRefreshToken(tokenString string) (string, bool) {
	secret := os.Getenv("JWT_REFRESH_SECRET")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	return userID, ok
}
