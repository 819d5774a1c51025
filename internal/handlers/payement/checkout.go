package payement

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/utils"
)

//
// 🛒 POST /api/checkout
// Commande + initialisation de paiement en un appel. La commande survit à
// un échec d'initialisation : le client retente via
// /api/payments/initialize sans recréer la commande.
//
func Checkout(c *gin.Context) {
	buyerID := c.GetString("user_id")

	var req struct {
		order.CreateRequest
		Gateway     string `json:"gateway"`
		CallbackURL string `json:"callback_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid checkout payload"))
		return
	}

	result := checkout.Calculate(buyerID, req.Items, order.LookupSnapshot)

	coupon, discount, err := order.ResolveCoupon(req.CouponCode, buyerID, result.TotalAmount, result.TotalShippingCost)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	o, items, err := order.BuildOrder(buyerID, req.CreateRequest, result, discount)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := order.InsertOrder(o, items); err != nil {
		log.Println("❌ Erreur insertion commande:", err)
		utils.RespondInternal(c, "Could not create order")
		return
	}
	order.RecordCouponUsage(coupon, buyerID, o.ID)

	utils.LogAction(c, utils.ACTION_ORDER_CREATE, utils.RESOURCE_ORDER, o.ID.String(), nil, gin.H{
		"order_number": o.OrderNumber,
		"total_amount": o.TotalAmount,
	})
	log.Printf("✅ Commande créée : %s (%d NGN)", o.OrderNumber, o.TotalAmount)

	// Le panier a rempli son office
	database.Redis.Del(c.Request.Context(), "cart:"+buyerID)

	response := gin.H{
		"order": o,
		"items": items,
	}

	gateway, err := selectGateway(req.Gateway)
	if err != nil {
		response["payment_error"] = "Order created but payment could not start: unknown gateway"
		utils.RespondOK(c, http.StatusCreated, "Order created, payment not started", response)
		return
	}

	initResult, err := initializeForOrder(c, gateway, o, req.CallbackURL)
	if err != nil {
		// Commande conservée : l'initialisation se retente à part
		response["payment_error"] = "Order created but payment initialization failed, please retry"
		utils.RespondOK(c, http.StatusCreated, "Order created, payment not started", response)
		return
	}

	response["payment"] = initResult
	utils.RespondOK(c, http.StatusCreated, "Order created and payment initialized", response)
}
