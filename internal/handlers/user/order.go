package user

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/utils"
)

//
// 🟢 GET /api/orders/my?limit=20
// Historique de l'acheteur, du plus récent au plus ancien (clustering
// orders_by_buyer sur created_at DESC).
//
func GetMyOrders(c *gin.Context) {
	buyerID := c.GetString("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Order storage unavailable")
		return
	}

	iter := session.Query(`SELECT order_id, order_number, status, total_amount, created_at
		FROM orders_by_buyer WHERE buyer_id = ? LIMIT ?`, buyerID, limit).Iter()

	type orderSummary struct {
		OrderID     gocql.UUID `json:"order_id"`
		OrderNumber string     `json:"order_number"`
		Status      string     `json:"status"`
		TotalAmount int64      `json:"total_amount"`
		CreatedAt   time.Time  `json:"created_at"`
	}

	orders := []gin.H{}
	var s orderSummary
	for iter.Scan(&s.OrderID, &s.OrderNumber, &s.Status, &s.TotalAmount, &s.CreatedAt) {
		orders = append(orders, gin.H{
			"order_id":     s.OrderID.String(),
			"order_number": s.OrderNumber,
			"status":       s.Status,
			"total_amount": s.TotalAmount,
			"created_at":   s.CreatedAt,
		})
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur listing commandes:", err)
		utils.RespondInternal(c, "Could not list orders")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Orders", gin.H{"orders": orders, "count": len(orders)})
}

//
// 🟢 GET /api/orders/:id
// Visible par l'acheteur, un vendeur concerné ou un admin.
//
func GetOrderByID(c *gin.Context) {
	orderID := c.Param("id")

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

	items, err := order.LoadOrderItems(orderID)
	if err != nil {
		log.Println("❌ Erreur lecture lignes:", err)
		utils.RespondInternal(c, "Could not load order items")
		return
	}

	actor := order.ActorFor(c, o, items)
	if !actor.IsAdmin && !actor.IsBuyer && !actor.IsSeller {
		utils.RespondError(c, checkout.E(checkout.KindForbidden, "You are not a party to this order"))
		return
	}

	// Un vendeur ne voit que ses propres lignes et pas l'adresse complète
	if actor.IsSeller && !actor.IsBuyer && !actor.IsAdmin {
		mine := items[:0]
		userID := c.GetString("user_id")
		for _, it := range items {
			if it.SellerID == userID {
				mine = append(mine, it)
			}
		}
		items = mine
		o.ShippingAddress.Street = ""
		o.ShippingAddress.Phone = ""
	}

	utils.RespondOK(c, http.StatusOK, "Order", gin.H{"order": o, "items": items})
}

//
// 🟢 GET /api/seller/sales?limit=20
// Lignes vendues par le vendeur connecté (lookup order_items_by_seller).
//
func GetMySales(c *gin.Context) {
	sellerID := c.GetString("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Order storage unavailable")
		return
	}

	iter := session.Query(`SELECT item_id, order_id, product_id, title, quantity, seller_revenue, status, created_at
		FROM order_items_by_seller WHERE seller_id = ? LIMIT ?`, sellerID, limit).Iter()

	sales := []gin.H{}
	var itemID, orderID, productID gocql.UUID
	var title, status string
	var quantity int
	var revenue int64
	var createdAt time.Time
	for iter.Scan(&itemID, &orderID, &productID, &title, &quantity, &revenue, &status, &createdAt) {
		sales = append(sales, gin.H{
			"item_id":        itemID.String(),
			"order_id":       orderID.String(),
			"product_id":     productID.String(),
			"title":          title,
			"quantity":       quantity,
			"seller_revenue": revenue,
			"status":         status,
			"created_at":     createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur listing ventes:", err)
		utils.RespondInternal(c, "Could not list sales")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Sales", gin.H{"sales": sales, "count": len(sales)})
}
