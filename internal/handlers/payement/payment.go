package payement

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/payments"
	"kasuwa_back_end/internal/utils"
)

//
// 💳 POST /api/payments/initialize
// Ouvre une transaction auprès de la passerelle pour une commande pending.
// Une tentative pending de moins de 30 minutes est réutilisée telle
// quelle ; au-delà, une nouvelle référence est émise.
//
func InitializePayment(c *gin.Context) {
	var req struct {
		OrderID     string `json:"order_id" binding:"required"`
		Gateway     string `json:"gateway"`
		CallbackURL string `json:"callback_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "order_id is required"))
		return
	}

	o, err := order.LoadOrder(req.OrderID)
	if err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Order not found"))
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		utils.RespondInternal(c, "Could not load order")
		return
	}

	if o.BuyerID != c.GetString("user_id") {
		utils.RespondError(c, checkout.E(checkout.KindForbidden, "Only the buyer can pay for this order"))
		return
	}
	if o.PaymentStatus == checkout.PaymentCompleted {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "This order is already paid"))
		return
	}
	if o.Status != checkout.StatusPending {
		utils.RespondError(c, checkout.Ef(checkout.KindConflict, "Cannot pay an order in status %s", o.Status))
		return
	}

	// Idempotence : tentative pending encore dans la fenêtre → on renvoie
	// la même référence au lieu d'en empiler une nouvelle
	if existing, err := latestPaymentForOrder(o.ID); err == nil &&
		existing.Status == checkout.PaymentPending && !existing.IsExpired(time.Now()) {
		utils.RespondOK(c, http.StatusOK, "Payment already initialized", gin.H{
			"reference": existing.Reference,
			"gateway":   existing.Gateway,
			"amount":    existing.Amount,
			"currency":  existing.Currency,
		})
		return
	}

	gateway, err := selectGateway(req.Gateway)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := initializeForOrder(c, gateway, o, req.CallbackURL)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, "Payment initialized", result)
}

// initializeForOrder ouvre la transaction et enregistre la tentative.
// Le paiement n'est persisté qu'après un Initialize passerelle réussi.
func initializeForOrder(c *gin.Context, gateway payments.Gateway, o *models.Order, callbackURL string) (*payments.InitializationResult, error) {
	email := c.GetString("email")
	reference := newPaymentReference()

	result, err := gateway.Initialize(c.Request.Context(), payments.InitializeParams{
		Reference:   reference,
		Email:       email,
		Amount:      o.TotalAmount,
		Currency:    o.Currency,
		CallbackURL: resolveCallbackURL(callbackURL),
		OrderID:     o.ID.String(),
	})
	if err != nil {
		log.Printf("❌ Échec initialisation %s pour %s: %v", gateway.Name(), o.OrderNumber, err)
		utils.LogFailedAction(c, utils.ACTION_PAYMENT_INIT, utils.RESOURCE_PAYMENT, o.ID.String(), err.Error())
		return nil, checkout.E(checkout.KindUpstream, "Payment gateway is unavailable, please retry")
	}

	now := time.Now()
	payment := &models.Payment{
		ID:            gocql.TimeUUID(),
		OrderID:       o.ID,
		UserID:        o.BuyerID,
		Gateway:       gateway.Name(),
		Reference:     result.Reference,
		Status:        checkout.PaymentPending,
		Amount:        o.TotalAmount,
		Currency:      o.Currency,
		CustomerEmail: email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := insertPayment(payment); err != nil {
		log.Println("❌ Erreur persistance paiement:", err)
		return nil, checkout.E(checkout.KindUpstream, "Could not record payment attempt")
	}

	utils.LogAction(c, utils.ACTION_PAYMENT_INIT, utils.RESOURCE_PAYMENT, payment.ID.String(), nil, gin.H{
		"reference": result.Reference,
		"amount":    o.TotalAmount,
		"gateway":   gateway.Name(),
	})

	log.Printf("💳 Paiement initialisé : %s (%d %s) via %s", result.Reference, o.TotalAmount, o.Currency, gateway.Name())
	return result, nil
}

//
// 🔍 GET /api/payments/verify/:reference
// Vérification côté serveur. Si le paiement local est déjà completed, la
// passerelle n'est pas rappelée.
//
func VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")

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

	if payment.UserID != c.GetString("user_id") && c.GetString("role") != "admin" {
		utils.RespondError(c, checkout.E(checkout.KindForbidden, "This payment belongs to another account"))
		return
	}

	// Court-circuit : verdict local définitif, pas d'appel passerelle.
	// La commande est tout de même convergée si un règlement précédent a
	// échoué après la persistance du paiement.
	if payment.Status == checkout.PaymentCompleted {
		if err := ensureOrderSettled(c, payment); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.RespondOK(c, http.StatusOK, "Payment verified", gin.H{
			"reference": payment.Reference,
			"status":    payment.Status,
			"amount":    payment.Amount,
		})
		return
	}

	gateway, err := selectGateway(payment.Gateway)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	verification, err := gateway.Verify(c.Request.Context(), reference)
	if err != nil {
		log.Println("❌ Échec vérification passerelle:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not verify payment with gateway"))
		return
	}

	newStatus, writeNeeded := payments.DecideVerification(payment.Status, verification.GatewayStatus)
	if writeNeeded {
		if err := settlePayment(c, payment, verification, newStatus); err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	utils.LogAction(c, utils.ACTION_PAYMENT_VERIFY, utils.RESOURCE_PAYMENT, payment.ID.String(), nil, gin.H{
		"reference": reference,
		"status":    payment.Status,
	})

	utils.RespondOK(c, http.StatusOK, "Payment verified", gin.H{
		"reference": payment.Reference,
		"status":    payment.Status,
		"amount":    payment.Amount,
	})
}

//
// 🔔 POST /api/payments/webhook/paystack
// La signature HMAC-SHA512 est contrôlée avant toute lecture d'état. Un
// événement illisible ou inconnu est acquitté en 200 pour stopper les
// retries PayStack ; seule une signature invalide est rejetée.
//
func PaystackWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !payments.ValidateWebhookSignature(os.Getenv("PAYSTACK_SECRET_KEY"), rawBody, signature) {
		log.Println("⚠️ Webhook PayStack rejeté : signature invalide")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
			Amount    int64  `json:"amount"` // kobo
			Channel   string `json:"channel"`
			ID        int64  `json:"id"`
			PaidAt    string `json:"paid_at"`
			Authorization struct {
				AuthorizationCode string `json:"authorization_code"`
				CardType          string `json:"card_type"`
				Last4             string `json:"last4"`
			} `json:"authorization"`
			Customer struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Println("⚠️ Webhook PayStack illisible:", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	switch event.Event {
	case "charge.success":
		// continue
	case "refund.processed", "refund.failed":
		log.Printf("🔔 Webhook remboursement %s pour %s", event.Event, event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	payment, err := loadPaymentByReference(event.Data.Reference)
	if err == gocql.ErrNotFound {
		log.Println("⚠️ Webhook pour une référence inconnue :", event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture paiement webhook:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	verification := &payments.VerificationResult{
		Reference:            event.Data.Reference,
		GatewayStatus:        event.Data.Status,
		Amount:               event.Data.Amount / 100,
		Currency:             "NGN",
		GatewayTransactionID: strconv.FormatInt(event.Data.ID, 10),
		Channel:              event.Data.Channel,
		CardType:             event.Data.Authorization.CardType,
		CardLast4:            event.Data.Authorization.Last4,
		AuthorizationCode:    event.Data.Authorization.AuthorizationCode,
		CustomerEmail:        event.Data.Customer.Email,
	}

	newStatus, writeNeeded := payments.DecideVerification(payment.Status, verification.GatewayStatus)
	if writeNeeded {
		if err := settlePayment(c, payment, verification, newStatus); err != nil {
			// 500 pour que PayStack retente : les marqueurs d'inventaire
			// rendent le rejeu convergent
			log.Println("❌ Échec règlement webhook:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
			return
		}
	} else if err := ensureOrderSettled(c, payment); err != nil {
		// Paiement déjà completed mais commande en retard : le retry
		// PayStack est l'occasion de converger
		log.Println("❌ Échec convergence commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		return
	}

	log.Printf("🔔 Webhook traité : %s → %s", event.Data.Reference, payment.Status)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

