package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
)

// Les colonnes composées (adresse, payouts, historique) sont stockées en
// JSON dans des colonnes text : le document complet est toujours lu et
// réécrit d'un bloc, jamais requêté champ par champ.

const selectOrderCQL = `SELECT order_id, order_number, buyer_id, status, payment_status,
	subtotal, total_shipping_cost, total_service_fee, total_taxes, coupon_discount, coupon_code, total_amount, currency,
	item_count, seller_count, shipping_address, shipping_method, buyer_notes, admin_notes,
	seller_payouts, status_history, payment_reference, payment_method, payment_gateway, paid_at,
	cancelled_at, cancel_reason, cancelled_by, confirmed_at, shipped_at, delivered_at, created_at, updated_at
	FROM orders WHERE order_id = ?`

const selectItemsCQL = `SELECT item_id, order_id, product_id, seller_id, title, brand, size, condition,
	quantity, unit_price, total_price, shipping_cost, item_service_fee, item_taxes, item_total, seller_revenue,
	status, available, reason, inventory_applied, tracking_number, carrier_name, cancel_reason, cancelled_at,
	created_at, updated_at
	FROM order_items WHERE order_id = ?`

// LoadOrder charge une commande par ID. gocql.ErrNotFound si absente.
func LoadOrder(orderID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	var addressJSON, payoutsJSON, historyJSON string
	if err := session.Query(selectOrderCQL, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.BuyerID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.TotalShippingCost, &o.TotalServiceFee, &o.TotalTaxes, &o.CouponDiscount, &o.CouponCode, &o.TotalAmount, &o.Currency,
		&o.ItemCount, &o.SellerCount, &addressJSON, &o.ShippingMethod, &o.BuyerNotes, &o.AdminNotes,
		&payoutsJSON, &historyJSON, &o.PaymentReference, &o.PaymentMethod, &o.PaymentGateway, &o.PaidAt,
		&o.CancelledAt, &o.CancelReason, &o.CancelledBy, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(addressJSON), &o.ShippingAddress)
	json.Unmarshal([]byte(payoutsJSON), &o.SellerPayouts)
	json.Unmarshal([]byte(historyJSON), &o.StatusHistory)
	return &o, nil
}

// LoadOrderItems charge les lignes d'une commande.
func LoadOrderItems(orderID string) ([]models.OrderItem, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(selectItemsCQL, orderID).Iter()
	items := []models.OrderItem{}
	var it models.OrderItem
	for iter.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.Title, &it.Brand, &it.Size, &it.Condition,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.ShippingCost, &it.ItemServiceFee, &it.ItemTaxes, &it.ItemTotal, &it.SellerRevenue,
		&it.Status, &it.Available, &it.Reason, &it.InventoryApplied, &it.TrackingNumber, &it.CarrierName, &it.CancelReason, &it.CancelledAt,
		&it.CreatedAt, &it.UpdatedAt,
	) {
		items = append(items, it)
		it = models.OrderItem{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return items, nil
}

// InsertOrder écrit la commande, ses lignes et les tables de lookup
// (orders_by_buyer, order_items_by_seller) dans un batch logged.
func InsertOrder(o *models.Order, items []models.OrderItem) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	addressJSON, _ := json.Marshal(o.ShippingAddress)
	payoutsJSON, _ := json.Marshal(o.SellerPayouts)
	historyJSON, _ := json.Marshal(o.StatusHistory)

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`INSERT INTO orders (order_id, order_number, buyer_id, status, payment_status,
		subtotal, total_shipping_cost, total_service_fee, total_taxes, coupon_discount, coupon_code, total_amount, currency,
		item_count, seller_count, shipping_address, shipping_method, buyer_notes, admin_notes,
		seller_payouts, status_history, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderNumber, o.BuyerID, string(o.Status), string(o.PaymentStatus),
		o.Subtotal, o.TotalShippingCost, o.TotalServiceFee, o.TotalTaxes, o.CouponDiscount, o.CouponCode, o.TotalAmount, o.Currency,
		o.ItemCount, o.SellerCount, string(addressJSON), o.ShippingMethod, o.BuyerNotes, o.AdminNotes,
		string(payoutsJSON), string(historyJSON), o.CreatedAt, o.UpdatedAt,
	)
	batch.Query(`INSERT INTO orders_by_buyer (buyer_id, created_at, order_id, order_number, status, total_amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.BuyerID, o.CreatedAt, o.ID, o.OrderNumber, string(o.Status), o.TotalAmount,
	)

	for _, it := range items {
		batch.Query(`INSERT INTO order_items (item_id, order_id, product_id, seller_id, title, brand, size, condition,
			quantity, unit_price, total_price, shipping_cost, item_service_fee, item_taxes, item_total, seller_revenue,
			status, available, reason, inventory_applied, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.OrderID, it.ProductID, it.SellerID, it.Title, it.Brand, it.Size, it.Condition,
			it.Quantity, it.UnitPrice, it.TotalPrice, it.ShippingCost, it.ItemServiceFee, it.ItemTaxes, it.ItemTotal, it.SellerRevenue,
			it.Status, it.Available, it.Reason, it.InventoryApplied, it.CreatedAt, it.UpdatedAt,
		)
		batch.Query(`INSERT INTO order_items_by_seller (seller_id, created_at, item_id, order_id, product_id, title, quantity, seller_revenue, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.SellerID, it.CreatedAt, it.ID, it.OrderID, it.ProductID, it.Title, it.Quantity, it.SellerRevenue, it.Status,
		)
	}

	return session.ExecuteBatch(batch)
}

// PersistStatus écrit le nouveau statut, l'historique et les horodatages
// de cycle de vie d'une commande déjà chargée.
func PersistStatus(o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	historyJSON, _ := json.Marshal(o.StatusHistory)
	o.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE orders SET status = ?, payment_status = ?, status_history = ?,
		payment_reference = ?, payment_method = ?, payment_gateway = ?, paid_at = ?,
		cancelled_at = ?, cancel_reason = ?, cancelled_by = ?, confirmed_at = ?, shipped_at = ?, delivered_at = ?,
		admin_notes = ?, updated_at = ? WHERE order_id = ?`,
		string(o.Status), string(o.PaymentStatus), string(historyJSON),
		o.PaymentReference, o.PaymentMethod, o.PaymentGateway, o.PaidAt,
		o.CancelledAt, o.CancelReason, o.CancelledBy, o.ConfirmedAt, o.ShippedAt, o.DeliveredAt,
		o.AdminNotes, o.UpdatedAt, o.ID,
	).Exec(); err != nil {
		return err
	}

	// Dénormalisation : la ligne de lookup acheteur porte aussi le statut
	return session.Query(`UPDATE orders_by_buyer SET status = ? WHERE buyer_id = ? AND created_at = ? AND order_id = ?`,
		string(o.Status), o.BuyerID, o.CreatedAt, o.ID).Exec()
}

// AppendHistory ajoute une entrée au journal de statut de la commande.
func AppendHistory(o *models.Order, status, reason, actor string) {
	o.StatusHistory = append(o.StatusHistory, models.StatusHistoryEntry{
		Status:    status,
		Timestamp: time.Now(),
		Reason:    reason,
		Actor:     actor,
	})
}

// StampItemsStatus applique un statut à toutes les lignes en mémoire.
func StampItemsStatus(items []models.OrderItem, status string, at time.Time) {
	for i := range items {
		items[i].Status = status
		items[i].UpdatedAt = at
	}
}

// StampItemsCancelled marque toutes les lignes annulées, avec le même motif
// et le même horodatage.
func StampItemsCancelled(items []models.OrderItem, reason string, at time.Time) {
	for i := range items {
		items[i].Status = string(checkout.StatusCancelled)
		items[i].CancelReason = reason
		items[i].CancelledAt = &at
		items[i].UpdatedAt = at
	}
}

// PersistItemStatus écrit le statut (et les champs d'annulation) des lignes,
// et le reflète dans la vue vendeur order_items_by_seller.
func PersistItemStatus(items []models.OrderItem) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	for _, it := range items {
		if err := session.Query(`UPDATE order_items SET status = ?, cancel_reason = ?, cancelled_at = ?, updated_at = ?
			WHERE order_id = ? AND item_id = ?`,
			it.Status, it.CancelReason, it.CancelledAt, it.UpdatedAt, it.OrderID, it.ID).Exec(); err != nil {
			return err
		}
		if err := session.Query(`UPDATE order_items_by_seller SET status = ? WHERE seller_id = ? AND created_at = ? AND item_id = ?`,
			it.Status, it.SellerID, it.CreatedAt, it.ID).Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PersistPayouts réécrit la colonne seller_payouts après un règlement.
func PersistPayouts(o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	payoutsJSON, _ := json.Marshal(o.SellerPayouts)
	return session.Query(`UPDATE orders SET seller_payouts = ?, updated_at = ? WHERE order_id = ?`,
		string(payoutsJSON), time.Now(), o.ID).Exec()
}

// MarkItemInventory persiste le marqueur inventory_applied d'une ligne.
func MarkItemInventory(orderID string, itemID string, applied bool) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE order_items SET inventory_applied = ?, updated_at = ? WHERE order_id = ? AND item_id = ?`,
		applied, time.Now(), orderID, itemID).Exec()
}

// ApplyStockOps exécute un plan d'inventaire. Chaque décrément passe par
// un LWT conditionné sur la quantité lue, rejoué en cas de course ; la
// restitution est le même mécanisme avec un delta positif. Le marqueur
// inventory_applied de la ligne est persisté après chaque opération
// réussie, pour que le plan soit rejouable.
func ApplyStockOps(orderID string, ops []checkout.StockOp) error {
	productsSession, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for _, op := range ops {
		if err := adjustStock(productsSession, op.ProductID, op.Delta); err != nil {
			return fmt.Errorf("stock produit %s: %w", op.ProductID, err)
		}
		if err := MarkItemInventory(orderID, op.ItemID, op.Apply); err != nil {
			return fmt.Errorf("marqueur item %s: %w", op.ItemID, err)
		}
	}
	return nil
}

const stockRetries = 5

func adjustStock(session *gocql.Session, productID string, delta int) error {
	for attempt := 0; attempt < stockRetries; attempt++ {
		var current int
		if err := session.Query(`SELECT quantity FROM products WHERE product_id = ?`, productID).Scan(&current); err != nil {
			return err
		}

		next := current + delta
		if next < 0 {
			return fmt.Errorf("stock insuffisant (%d demandé, %d restant)", -delta, current)
		}

		applied, err := session.Query(`UPDATE products SET quantity = ? WHERE product_id = ? IF quantity = ?`,
			next, productID, current).ScanCAS(&current)
		if err != nil {
			return err
		}
		if applied {
			// Le flag sold suit le stock : épuisé à zéro, re-disponible
			// après restitution
			if next == 0 && delta < 0 {
				session.Query(`UPDATE products SET sold = ? WHERE product_id = ?`, true, productID).Exec()
			} else if next > 0 && delta > 0 {
				session.Query(`UPDATE products SET sold = ? WHERE product_id = ?`, false, productID).Exec()
			}
			return nil
		}
		// Perdu la course, on relit et on retente
	}
	return fmt.Errorf("trop de conflits concurrents sur le produit %s", productID)
}

// PublishStatusUpdate pousse le changement de statut sur Redis pub/sub pour
// les clients websocket. Best-effort.
func PublishStatusUpdate(ctx context.Context, o *models.Order) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       o.ID.String(),
		"order_number":   o.OrderNumber,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"updated_at":     o.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := database.Redis.Publish(ctx, "orders:"+o.ID.String(), payload).Err(); err != nil {
		log.Println("⚠️ Erreur publication statut:", err)
	}
}
