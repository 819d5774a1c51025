package payement

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/payments"
	"kasuwa_back_end/internal/utils"
)

// settlePayment enregistre le verdict passerelle, puis applique l'effet
// composé d'un succès : décrément de stock (LWT, rejouable grâce aux
// marqueurs inventory_applied), confirmation de la commande, copie des
// champs paiement, notifications et purge du panier.
//
// Verify et webhook passent tous les deux par ici : l'ordre d'arrivée est
// indifférent, le premier écrit, le second converge.
func settlePayment(c *gin.Context, payment *models.Payment, verification *payments.VerificationResult, newStatus checkout.PaymentStatus) error {
	if payment.Status == checkout.PaymentCompleted {
		// Verdict déjà enregistré : il reste à converger la commande si une
		// tentative précédente a échoué après la persistance du paiement
		return applyPaymentSuccess(c, payment)
	}

	payment.Status = newStatus
	payment.GatewayTransactionID = verification.GatewayTransactionID
	payment.AuthorizationCode = verification.AuthorizationCode
	payment.CardType = verification.CardType
	payment.CardLast4 = verification.CardLast4
	payment.Channel = verification.Channel
	if verification.CustomerEmail != "" {
		payment.CustomerEmail = verification.CustomerEmail
	}
	if newStatus == checkout.PaymentCompleted {
		now := time.Now()
		payment.CompletedAt = &now
	}
	if newStatus == checkout.PaymentFailed {
		payment.RetryCount++
	}

	if err := persistPaymentStatus(payment); err != nil {
		log.Println("❌ Erreur persistance verdict paiement:", err)
		return checkout.E(checkout.KindUpstream, "Could not record payment result")
	}

	if newStatus != checkout.PaymentCompleted {
		log.Printf("⚠️ Paiement %s : verdict %s", payment.Reference, newStatus)
		return nil
	}

	return applyPaymentSuccess(c, payment)
}

// ensureOrderSettled rejoue l'effet composé d'un paiement completed dont la
// commande est restée en arrière après un échec partiel. Sans écriture
// quand tout est déjà en place.
func ensureOrderSettled(c *gin.Context, payment *models.Payment) error {
	if payment.Status != checkout.PaymentCompleted {
		return nil
	}
	return applyPaymentSuccess(c, payment)
}

// applyPaymentSuccess est l'effet composé d'un paiement abouti. Chaque étape
// est idempotente : l'appel se rejoue jusqu'à ce que la commande soit
// confirmée.
func applyPaymentSuccess(c *gin.Context, payment *models.Payment) error {
	o, err := order.LoadOrder(payment.OrderID.String())
	if err != nil {
		log.Println("❌ Erreur lecture commande au règlement:", err)
		return checkout.E(checkout.KindUpstream, "Could not load order for settlement")
	}
	if !payments.DecideReconciliation(payment.Status, o.PaymentStatus) {
		return nil
	}

	items, err := order.LoadOrderItems(payment.OrderID.String())
	if err != nil {
		return checkout.E(checkout.KindUpstream, "Could not load order items for settlement")
	}

	// 1. Inventaire : uniquement les items pas encore appliqués
	states := make([]checkout.OrderItemState, 0, len(items))
	for _, it := range items {
		if !it.Available {
			continue
		}
		states = append(states, checkout.OrderItemState{
			ItemID:           it.ID.String(),
			ProductID:        it.ProductID.String(),
			Quantity:         it.Quantity,
			InventoryApplied: it.InventoryApplied,
		})
	}
	if ops := checkout.ConfirmationPlan(states); len(ops) > 0 {
		if err := order.ApplyStockOps(o.ID.String(), ops); err != nil {
			// Les items déjà appliqués sont marqués : le retry ne
			// décrémentera pas deux fois
			log.Println("❌ Erreur application stock:", err)
			return checkout.E(checkout.KindUpstream, "Inventory update failed, settlement will be retried")
		}
		log.Printf("💰 Stock appliqué pour %s (%d opérations)", o.OrderNumber, len(ops))
	}

	now := time.Now()

	// 2. Lignes : chaque item passe confirmed, miroir vendeur compris
	order.StampItemsStatus(items, string(checkout.StatusConfirmed), now)
	if err := order.PersistItemStatus(items); err != nil {
		log.Println("❌ Erreur miroir statut lignes:", err)
		return checkout.E(checkout.KindUpstream, "Could not update order items")
	}

	// 3. Commande : paiement copié + transition pending → confirmed
	o.PaymentStatus = checkout.PaymentCompleted
	o.PaymentReference = payment.Reference
	o.PaymentGateway = payment.Gateway
	o.PaymentMethod = payment.Channel
	o.PaidAt = &now

	if o.Status == checkout.StatusPending {
		o.Status = checkout.StatusConfirmed
		o.ConfirmedAt = &now
		order.AppendHistory(o, string(checkout.StatusConfirmed), "Payment "+payment.Reference+" completed", "system")
	}

	if err := order.PersistStatus(o); err != nil {
		log.Println("❌ Erreur persistance commande réglée:", err)
		return checkout.E(checkout.KindUpstream, "Could not confirm order")
	}

	// 4. Effets de bord best-effort
	order.PublishStatusUpdate(c.Request.Context(), o)
	database.Redis.Del(c.Request.Context(), "cart:"+o.BuyerID)

	if payment.CustomerEmail != "" {
		utils.NotifyOrderStatus(*o, payment.CustomerEmail, checkout.StatusConfirmed)
	}

	log.Printf("✅ Commande %s confirmée après paiement %s", o.OrderNumber, payment.Reference)
	return nil
}
