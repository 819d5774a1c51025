package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers"
	"kasuwa_back_end/internal/routes"
)

func main() {
	config.Load()

	if os.Getenv("PAYSTACK_SECRET_KEY") == "" {
		log.Fatal("❌ PAYSTACK_SECRET_KEY manquant dans .env")
	}
	log.Println("✅ PayStack configuré")

	// Stripe reste disponible en passerelle secondaire
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ Stripe non configuré, passerelle désactivée")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	database.ConnectDatabases()
	defer database.CloseScylla()

	database.InitPreparedStatements()

	if os.Getenv("SESSION_SECRET") == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}
	handlers.InitProviders()
	log.Println("✅ Providers OAuth initialisés")

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.FrontendURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-paystack-signature"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Kasuwa lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Erreur serveur:", err)
	}
}
