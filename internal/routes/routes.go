package routes

import (
	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/handlers"
	"kasuwa_back_end/internal/handlers/admin"
	"kasuwa_back_end/internal/handlers/invoice"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/handlers/payement"
	"kasuwa_back_end/internal/handlers/product"
	"kasuwa_back_end/internal/handlers/user"
	"kasuwa_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- Auth ---
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RegisterRateLimit(), handlers.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(), handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
		authGroup.POST("/logout", middleware.AuthRequired(), handlers.Logout)
		authGroup.GET("/me", middleware.AuthRequired(), handlers.Me)

		// OAuth web + mobile
		authGroup.GET("/:provider", handlers.BeginAuth)
		authGroup.GET("/:provider/callback", handlers.CallbackAuth)
		authGroup.POST("/:provider/exchange", handlers.MobileExchange)
	}

	// --- Produits ---
	products := api.Group("/products")
	{
		products.GET("", product.ListProducts)
		products.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)
		products.GET("/:id", product.GetProduct)

		products.POST("", middleware.AuthRequired(), product.CreateProduct)
		products.PUT("/:id", middleware.AuthRequired(), product.UpdateProduct)
		products.DELETE("/:id", middleware.AuthRequired(), product.DeleteProduct)

		products.POST("/:id/images", middleware.AuthRequired(), product.UploadImage)
		products.DELETE("/:id/images", middleware.AuthRequired(), product.DeleteImage)
		products.GET("/:id/images/signed", product.SignedImageURL)
	}

	// --- Panier ---
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("", user.GetCart)
		cart.POST("/add", user.AddToCart)
		cart.PUT("/update", user.UpdateCartItem)
		cart.DELETE("/remove/:productId", user.RemoveFromCart)
		cart.DELETE("", user.ClearCart)
	}

	// --- Commandes ---
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.POST("/calculate", order.Calculate)
		orders.POST("", middleware.CheckoutRateLimit(), order.CreateOrder)
		orders.GET("/my", user.GetMyOrders)
		orders.GET("/:id", user.GetOrderByID)
		orders.PATCH("/:id/status", order.UpdateStatus)
		orders.POST("/:id/cancel", order.CancelOrder)
		orders.GET("/:id/feed", user.OrderStatusFeed)
	}

	// Checkout combiné : commande + initialisation de paiement
	api.POST("/checkout", middleware.AuthRequired(), middleware.CheckoutRateLimit(), payement.Checkout)

	// Aperçu remise côté panier
	api.GET("/coupons/validate", middleware.AuthRequired(), order.ValidateCoupon)

	// --- Espace vendeur ---
	seller := api.Group("/seller", middleware.AuthRequired())
	{
		seller.GET("/products", product.ListMyProducts)
		seller.GET("/sales", user.GetMySales)
	}

	// --- Paiements ---
	paymentsGroup := api.Group("/payments")
	{
		paymentsGroup.POST("/initialize", middleware.AuthRequired(), payement.InitializePayment)
		paymentsGroup.GET("/verify/:reference", middleware.AuthRequired(), payement.VerifyPayment)
		paymentsGroup.POST("/verify/:reference", middleware.AuthRequired(), payement.VerifyPayment)

		paymentsGroup.POST("/:reference/refund", middleware.AuthRequired(), middleware.RequireAdmin, payement.RefundPayment)

		// Signature HMAC vérifiée dans le handler, pas de JWT ici
		paymentsGroup.POST("/webhook/paystack", payement.PaystackWebhook)
	}

	// --- Factures ---
	invoices := api.Group("/invoice", middleware.AuthRequired())
	{
		invoices.GET("/:id", invoice.DownloadInvoice)
		invoices.POST("/:id/send", invoice.SendInvoice)
	}

	// --- Admin ---
	adminGroup := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.GET("/audit-logs", admin.GetAuditLogs)
		adminGroup.GET("/audit-logs/:resource/:resource_id", admin.GetAuditLogsByResource)

		adminGroup.POST("/coupons", order.CreateCoupon)
		adminGroup.GET("/coupons", order.ListCoupons)
		adminGroup.PATCH("/coupons/:code", order.UpdateCoupon)
		adminGroup.DELETE("/coupons/:code", order.DeleteCoupon)

		adminGroup.POST("/payments/:reference/refund", payement.RefundPayment)
		adminGroup.GET("/orders/:id/payouts", payement.ListOrderPayouts)
		adminGroup.POST("/orders/:id/payouts/:sellerId", payement.ProcessSellerPayout)
	}
}
