package utils

import (
	"golang.org/x/crypto/bcrypt"

	"kasuwa_back_end/internal/config"
)

// HashPassword hash un mot de passe avec bcrypt, coût configurable via
// BCRYPT_COST.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), config.BcryptCost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword vérifie un mot de passe contre son hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
