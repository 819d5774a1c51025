package payement

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/payments"
	"kasuwa_back_end/internal/utils"
)

//
// 💸 POST /api/admin/payments/:reference/refund  (admin)
// Rembourse un paiement completed auprès de la passerelle, marque la
// commande refunded (ou restitue le stock si elle n'était pas livrée).
//
func RefundPayment(c *gin.Context) {
	reference := c.Param("reference")

	var req struct {
		Amount int64  `json:"amount"` // 0 = remboursement total
		Reason string `json:"reason" binding:"required,min=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "A refund reason of at least 5 characters is required"))
		return
	}
	if req.Amount < 0 {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "amount cannot be negative"))
		return
	}

	payment, err := loadPaymentByReference(reference)
	if err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Unknown payment reference"))
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture paiement:", err)
		utils.RespondInternal(c, "Could not load payment")
		return
	}

	if payment.Status == checkout.PaymentRefunded {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "This payment is already refunded"))
		return
	}
	if payment.Status != checkout.PaymentCompleted {
		utils.RespondError(c, checkout.Ef(checkout.KindConflict, "Cannot refund a payment in status %s", payment.Status))
		return
	}
	if req.Amount > payment.Amount {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Refund amount exceeds the payment amount"))
		return
	}

	gateway, err := selectGateway(payment.Gateway)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	refundRef, err := gateway.Refund(c.Request.Context(), payments.RefundParams{
		Reference: reference,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		log.Println("❌ Échec remboursement passerelle:", err)
		utils.LogFailedAction(c, utils.ACTION_PAYMENT_REFUND, utils.RESOURCE_PAYMENT, payment.ID.String(), err.Error())
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Gateway refused the refund"))
		return
	}

	now := time.Now()
	payment.Status = checkout.PaymentRefunded
	payment.RefundReference = refundRef
	payment.RefundAmount = req.Amount
	if payment.RefundAmount == 0 {
		payment.RefundAmount = payment.Amount
	}
	payment.RefundReason = req.Reason
	payment.RefundedAt = &now

	if err := persistPaymentStatus(payment); err != nil {
		log.Println("❌ Erreur persistance remboursement:", err)
		utils.RespondInternal(c, "Refund accepted by gateway but could not be recorded")
		return
	}

	// Répercussion sur la commande
	o, err := order.LoadOrder(payment.OrderID.String())
	if err == nil {
		items, _ := order.LoadOrderItems(payment.OrderID.String())

		o.PaymentStatus = checkout.PaymentRefunded
		if checkout.CanTransition(o.Status, checkout.StatusRefunded) {
			o.Status = checkout.StatusRefunded
		} else if o.Status != checkout.StatusCancelled {
			// Pas encore livrée : le remboursement vaut annulation, le
			// stock consommé revient en rayon
			states := make([]checkout.OrderItemState, 0, len(items))
			for _, it := range items {
				states = append(states, checkout.OrderItemState{
					ItemID:           it.ID.String(),
					ProductID:        it.ProductID.String(),
					Quantity:         it.Quantity,
					InventoryApplied: it.InventoryApplied,
				})
			}
			if ops := checkout.CancellationPlan(states); len(ops) > 0 {
				if err := order.ApplyStockOps(o.ID.String(), ops); err != nil {
					log.Println("⚠️ Erreur restitution stock après remboursement:", err)
				}
			}
			o.Status = checkout.StatusCancelled
			o.CancelledAt = &now
			o.CancelReason = "Refunded: " + req.Reason
			o.CancelledBy = c.GetString("user_id")
		}
		order.AppendHistory(o, string(o.Status), "Refund "+refundRef, c.GetString("user_id"))

		if err := order.PersistStatus(o); err != nil {
			log.Println("⚠️ Erreur persistance commande remboursée:", err)
		} else {
			// Les lignes suivent le sort de la commande
			if o.Status == checkout.StatusCancelled {
				order.StampItemsCancelled(items, o.CancelReason, now)
			} else {
				order.StampItemsStatus(items, string(o.Status), now)
			}
			if err := order.PersistItemStatus(items); err != nil {
				log.Println("⚠️ Erreur miroir statut lignes:", err)
			}
			order.PublishStatusUpdate(c.Request.Context(), o)
		}
	}

	utils.LogAction(c, utils.ACTION_PAYMENT_REFUND, utils.RESOURCE_PAYMENT, payment.ID.String(), nil, gin.H{
		"reference": reference,
		"amount":    payment.RefundAmount,
		"reason":    req.Reason,
	})

	log.Printf("💸 Remboursement %s : %d %s", reference, payment.RefundAmount, payment.Currency)
	utils.RespondOK(c, http.StatusOK, "Payment refunded", gin.H{"payment": payment})
}
