package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// Get retourne la variable d'environnement ou la valeur par défaut.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt retourne la variable entière ou la valeur par défaut.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q n'est pas un entier, valeur par défaut %d utilisée", key, v, fallback)
		return fallback
	}
	return n
}

// BcryptCost : coût de hashage des mots de passe (BCRYPT_COST).
func BcryptCost() int {
	return GetInt("BCRYPT_COST", 12)
}

// FrontendURL sert à construire les liens de callback paiement et les pages
// de facture rendues en PDF.
func FrontendURL() string {
	return Get("FRONTEND_URL", "http://localhost:3000")
}
