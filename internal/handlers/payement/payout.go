package payement

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/utils"
)

//
// 💰 POST /api/admin/orders/:id/payouts/:sellerId  (admin)
// Marque le règlement d'un vendeur comme versé. Le versement effectif se
// fait hors plateforme ; ici on trace la référence et l'horodatage.
//
func ProcessSellerPayout(c *gin.Context) {
	orderID := c.Param("id")
	sellerID := c.Param("sellerId")

	o, err := order.LoadOrder(orderID)
	if err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Order not found"))
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		utils.RespondInternal(c, "Could not load order")
		return
	}

	if o.PaymentStatus != checkout.PaymentCompleted {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "Cannot pay out an order that is not paid"))
		return
	}
	if o.Status != checkout.StatusDelivered {
		utils.RespondError(c, checkout.Ef(checkout.KindConflict, "Payouts are released after delivery, order is %s", o.Status))
		return
	}

	idx := -1
	for i, payout := range o.SellerPayouts {
		if payout.SellerID == sellerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "This seller has no payout on this order"))
		return
	}
	if o.SellerPayouts[idx].Paid {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "This payout is already processed"))
		return
	}

	now := time.Now()
	o.SellerPayouts[idx].Paid = true
	o.SellerPayouts[idx].PayoutReference = fmt.Sprintf("KSW-PO-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
	o.SellerPayouts[idx].PaidAt = &now

	if err := order.PersistPayouts(o); err != nil {
		log.Println("❌ Erreur persistance payout:", err)
		utils.RespondInternal(c, "Could not record payout")
		return
	}

	utils.LogAction(c, utils.ACTION_PAYOUT_PROCESS, utils.RESOURCE_ORDER, orderID, nil, gin.H{
		"seller_id": sellerID,
		"revenue":   o.SellerPayouts[idx].Revenue,
		"reference": o.SellerPayouts[idx].PayoutReference,
	})

	log.Printf("💰 Payout %s : %d NGN pour %s", o.SellerPayouts[idx].PayoutReference, o.SellerPayouts[idx].Revenue, sellerID)
	utils.RespondOK(c, http.StatusOK, "Payout processed", gin.H{"payout": o.SellerPayouts[idx]})
}

//
// 📊 GET /api/admin/orders/:id/payouts  (admin)
//
func ListOrderPayouts(c *gin.Context) {
	o, err := order.LoadOrder(c.Param("id"))
	if err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Order not found"))
		return
	}
	if err != nil {
		utils.RespondInternal(c, "Could not load order")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Payouts", gin.H{
		"order_number": o.OrderNumber,
		"payouts":      o.SellerPayouts,
	})
}
