package order

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

// LookupSnapshot résout un produit vers son snapshot de calcul via le
// prepared statement products. Faux si le produit n'existe pas ou si le
// stockage est indisponible.
func LookupSnapshot(productID string) (checkout.ProductSnapshot, bool) {
	var s checkout.ProductSnapshot
	if err := database.GetPreparedGetProductSnapshot().Bind(productID).Scan(
		&s.ID, &s.SellerID, &s.Title, &s.Brand, &s.Size, &s.Condition,
		&s.UnitPrice, &s.DomesticShipping, &s.Quantity, &s.Sold,
	); err != nil {
		if err != gocql.ErrNotFound {
			log.Println("❌ Erreur snapshot produit:", err)
		}
		return checkout.ProductSnapshot{}, false
	}
	return s, true
}

//
// 🧮 POST /api/orders/calculate
// Calcul pur, aucune écriture : le front affiche le récapitulatif avant
// que l'acheteur ne confirme.
//
func Calculate(c *gin.Context) {
	buyerID := c.GetString("user_id")

	var req struct {
		Items []checkout.CartLine `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "items is required and must not be empty"))
		return
	}

	result := checkout.Calculate(buyerID, req.Items, LookupSnapshot)
	utils.RespondOK(c, http.StatusOK, "Order calculated", result)
}

// CreateRequest est le payload de création de commande, partagé avec le
// checkout combiné (commande + initialisation de paiement).
type CreateRequest struct {
	Items           []checkout.CartLine    `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	ShippingMethod  string                 `json:"shipping_method"`
	BuyerNotes      string                 `json:"buyer_notes"`
	CouponCode      string                 `json:"coupon_code"`
}

// BuildOrder transforme un résultat de calcul en commande persistable.
// Refuse tant qu'une ligne est en erreur ou indisponible : une commande
// n'embarque jamais d'article invendable.
func BuildOrder(buyerID string, req CreateRequest, result checkout.CalculationResult, couponDiscount int64) (*models.Order, []models.OrderItem, error) {
	if len(result.Errors) > 0 {
		return nil, nil, &checkout.Error{
			Kind:    checkout.KindValidation,
			Message: "Some items could not be processed",
			Fields:  result.Errors,
		}
	}
	if len(result.UnavailableItems) > 0 {
		reasons := make([]string, 0, len(result.UnavailableItems))
		for _, item := range result.Items {
			if !item.Available {
				reasons = append(reasons, item.Title+": "+item.Reason)
			}
		}
		return nil, nil, &checkout.Error{
			Kind:    checkout.KindConflict,
			Message: "Some items are no longer available",
			Fields:  reasons,
		}
	}
	if result.ItemCount == 0 {
		return nil, nil, checkout.E(checkout.KindValidation, "No available items in this order")
	}
	if req.ShippingAddress.FullName == "" || req.ShippingAddress.Street == "" || req.ShippingAddress.City == "" {
		return nil, nil, checkout.E(checkout.KindValidation, "shipping_address requires full_name, street and city")
	}

	now := time.Now()
	o := &models.Order{
		ID:            gocql.TimeUUID(),
		OrderNumber:   checkout.NewOrderNumber(),
		BuyerID:       buyerID,
		Status:        checkout.StatusPending,
		PaymentStatus: checkout.PaymentPending,

		Subtotal:          result.Subtotal,
		TotalShippingCost: result.TotalShippingCost,
		TotalServiceFee:   result.TotalServiceFee,
		TotalTaxes:        result.TotalTaxes,
		CouponDiscount:    couponDiscount,
		CouponCode:        strings.ToUpper(req.CouponCode),
		TotalAmount:       result.TotalAmount - couponDiscount,
		Currency:          "NGN",
		ItemCount:         result.ItemCount,
		SellerCount:       result.SellerCount,

		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  req.ShippingMethod,
		BuyerNotes:      req.BuyerNotes,
		SellerPayouts:   checkout.BuildSellerPayouts(result.Items),

		CreatedAt: now,
		UpdatedAt: now,
	}
	AppendHistory(o, string(checkout.StatusPending), "Order created", buyerID)

	items := make([]models.OrderItem, 0, len(result.Items))
	for _, ci := range result.Items {
		productUUID, err := gocql.ParseUUID(ci.ProductID)
		if err != nil {
			return nil, nil, checkout.Ef(checkout.KindValidation, "Invalid product id: %s", ci.ProductID)
		}
		items = append(items, models.OrderItem{
			ID:        gocql.TimeUUID(),
			OrderID:   o.ID,
			ProductID: productUUID,
			SellerID:  ci.SellerID,
			Title:     ci.Title,
			Brand:     ci.Brand,
			Size:      ci.Size,
			Condition: ci.Condition,

			Quantity:       ci.Quantity,
			UnitPrice:      ci.UnitPrice,
			TotalPrice:     ci.TotalPrice,
			ShippingCost:   ci.ShippingCost,
			ItemServiceFee: ci.ItemServiceFee,
			ItemTaxes:      ci.ItemTaxes,
			ItemTotal:      ci.ItemTotal,
			SellerRevenue:  ci.SellerRevenue,

			Status:    string(checkout.StatusPending),
			Available: ci.Available,
			Reason:    ci.Reason,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return o, items, nil
}

//
// 🟢 POST /api/orders
// Crée la commande en pending. Le paiement s'initialise ensuite via
// /api/payments/initialize (ou en un appel via /api/checkout).
//
func CreateOrder(c *gin.Context) {
	buyerID := c.GetString("user_id")

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid order payload"))
		return
	}

	result := checkout.Calculate(buyerID, req.Items, LookupSnapshot)

	coupon, discount, err := ResolveCoupon(req.CouponCode, buyerID, result.TotalAmount, result.TotalShippingCost)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	o, items, err := BuildOrder(buyerID, req, result, discount)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := InsertOrder(o, items); err != nil {
		log.Println("❌ Erreur insertion commande:", err)
		utils.RespondInternal(c, "Could not create order")
		return
	}
	RecordCouponUsage(coupon, buyerID, o.ID)

	utils.LogAction(c, utils.ACTION_ORDER_CREATE, utils.RESOURCE_ORDER, o.ID.String(), nil, gin.H{
		"order_number": o.OrderNumber,
		"total_amount": o.TotalAmount,
	})

	if email := c.GetString("email"); email != "" {
		go func(order models.Order, orderItems []models.OrderItem, to string) {
			html := utils.GenerateOrderConfirmationHTML(order, orderItems)
			if err := utils.SendEmail(to, "Your order "+order.OrderNumber, html, nil); err != nil {
				log.Println("⚠️ Erreur email confirmation:", err)
			}
		}(*o, items, email)
	}

	log.Printf("✅ Commande créée : %s (%d NGN, %d articles)", o.OrderNumber, o.TotalAmount, o.ItemCount)
	utils.RespondOK(c, http.StatusCreated, "Order created", gin.H{
		"order": o,
		"items": items,
	})
}

// ActorFor dérive les rôles de l'appelant vis-à-vis d'une commande.
func ActorFor(c *gin.Context, o *models.Order, items []models.OrderItem) checkout.Actor {
	userID := c.GetString("user_id")
	actor := checkout.Actor{
		IsAdmin: c.GetString("role") == "admin",
		IsBuyer: userID == o.BuyerID,
	}
	for _, it := range items {
		if it.SellerID == userID {
			actor.IsSeller = true
			break
		}
	}
	return actor
}

//
// 🔄 PATCH /api/orders/:id/status
//
func UpdateStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Status         string `json:"status" binding:"required"`
		Reason         string `json:"reason"`
		TrackingNumber string `json:"tracking_number"`
		CarrierName    string `json:"carrier_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "status is required"))
		return
	}

	o, items, err := loadOrderWithItems(orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	target := checkout.OrderStatus(req.Status)
	actor := ActorFor(c, o, items)
	if err := checkout.ValidateTransition(o.Status, target, actor); err != nil {
		utils.LogFailedAction(c, utils.ACTION_ORDER_STATUS, utils.RESOURCE_ORDER, orderID, err.Error())
		utils.RespondError(c, err)
		return
	}

	if target == checkout.StatusCancelled {
		applyCancellation(c, o, items, req.Reason)
		return
	}

	now := time.Now()
	switch target {
	case checkout.StatusConfirmed:
		o.ConfirmedAt = &now
	case checkout.StatusShipped:
		o.ShippedAt = &now
		if req.TrackingNumber != "" {
			persistTracking(items, req.TrackingNumber, req.CarrierName)
		}
	case checkout.StatusDelivered:
		o.DeliveredAt = &now
	}

	o.Status = target
	AppendHistory(o, req.Status, req.Reason, c.GetString("user_id"))

	if err := PersistStatus(o); err != nil {
		log.Println("❌ Erreur persistance statut:", err)
		utils.RespondInternal(c, "Could not update order status")
		return
	}

	// Miroir au niveau des lignes et de la vue vendeur
	StampItemsStatus(items, req.Status, now)
	if err := PersistItemStatus(items); err != nil {
		log.Println("⚠️ Erreur miroir statut lignes:", err)
	}

	utils.LogAction(c, utils.ACTION_ORDER_STATUS, utils.RESOURCE_ORDER, orderID, nil, gin.H{"status": req.Status})
	PublishStatusUpdate(c.Request.Context(), o)
	notifyBuyer(*o, target)

	utils.RespondOK(c, http.StatusOK, "Order status updated", gin.H{"order": o})
}

//
// 🛑 POST /api/orders/:id/cancel
// Raccourci acheteur : transition vers cancelled avec motif obligatoire.
//
func CancelOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Reason string `json:"reason" binding:"required,min=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "A cancellation reason of at least 5 characters is required"))
		return
	}

	o, items, err := loadOrderWithItems(orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	actor := ActorFor(c, o, items)
	if err := checkout.ValidateTransition(o.Status, checkout.StatusCancelled, actor); err != nil {
		utils.LogFailedAction(c, utils.ACTION_ORDER_CANCEL, utils.RESOURCE_ORDER, orderID, err.Error())
		utils.RespondError(c, err)
		return
	}

	applyCancellation(c, o, items, req.Reason)
}

// applyCancellation exécute l'annulation : restitution du stock déjà
// consommé, horodatage, historique, notifications.
func applyCancellation(c *gin.Context, o *models.Order, items []models.OrderItem, reason string) {
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
		if err := ApplyStockOps(o.ID.String(), ops); err != nil {
			log.Println("❌ Erreur restitution stock:", err)
			utils.RespondInternal(c, "Could not restore inventory, order left unchanged")
			return
		}
		log.Printf("💰 Stock restitué pour %s (%d opérations)", o.OrderNumber, len(ops))
	}

	now := time.Now()
	o.Status = checkout.StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.CancelledBy = c.GetString("user_id")
	AppendHistory(o, string(checkout.StatusCancelled), reason, c.GetString("user_id"))

	if err := PersistStatus(o); err != nil {
		log.Println("❌ Erreur persistance annulation:", err)
		utils.RespondInternal(c, "Could not cancel order")
		return
	}

	// Chaque ligne porte le même motif et le même horodatage d'annulation
	StampItemsCancelled(items, reason, now)
	if err := PersistItemStatus(items); err != nil {
		log.Println("⚠️ Erreur miroir annulation lignes:", err)
	}

	utils.LogAction(c, utils.ACTION_ORDER_CANCEL, utils.RESOURCE_ORDER, o.ID.String(), nil, gin.H{"reason": reason})
	PublishStatusUpdate(c.Request.Context(), o)
	notifyBuyer(*o, checkout.StatusCancelled)

	utils.RespondOK(c, http.StatusOK, "Order cancelled", gin.H{"order": o})
}

func loadOrderWithItems(orderID string) (*models.Order, []models.OrderItem, error) {
	o, err := LoadOrder(orderID)
	if err == gocql.ErrNotFound {
		return nil, nil, checkout.E(checkout.KindNotFound, "Order not found")
	}
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		return nil, nil, checkout.E(checkout.KindUpstream, "Could not load order")
	}

	items, err := LoadOrderItems(orderID)
	if err != nil {
		log.Println("❌ Erreur lecture lignes commande:", err)
		return nil, nil, checkout.E(checkout.KindUpstream, "Could not load order items")
	}
	return o, items, nil
}

func persistTracking(items []models.OrderItem, tracking, carrier string) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return
	}
	for _, it := range items {
		if err := session.Query(`UPDATE order_items SET tracking_number = ?, carrier_name = ?, updated_at = ? WHERE order_id = ? AND item_id = ?`,
			tracking, carrier, time.Now(), it.OrderID, it.ID).Exec(); err != nil {
			log.Println("⚠️ Erreur tracking item:", err)
		}
	}
}

func notifyBuyer(o models.Order, status checkout.OrderStatus) {
	email, err := buyerEmail(o.BuyerID)
	if err != nil || email == "" {
		return
	}
	utils.NotifyOrderStatus(o, email, status)
}

func buyerEmail(buyerID string) (string, error) {
	var email, password, name, role, provider, providerID, phone string
	var isVerified bool
	if err := database.GetPreparedGetUserByID().Bind(buyerID).Scan(
		&email, &password, &name, &role, &provider, &providerID, &phone, &isVerified,
	); err != nil {
		return "", err
	}
	return email, nil
}
