package models

import (
	"time"

	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
)

// ShippingAddress est embarquée dans la commande (objet valeur, pas de
// table dédiée).
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// StatusHistoryEntry est une ligne du journal de statut, append-only.
// Piste d'audit affichable, aucun rôle de cohérence.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

type Order struct {
	ID            gocql.UUID             `json:"id" db:"order_id"`
	OrderNumber   string                 `json:"order_number" db:"order_number"`
	BuyerID       string                 `json:"buyer_id" db:"buyer_id"`
	Status        checkout.OrderStatus   `json:"status" db:"status"`
	PaymentStatus checkout.PaymentStatus `json:"payment_status" db:"payment_status"`

	Subtotal          int64  `json:"subtotal" db:"subtotal"`
	TotalShippingCost int64  `json:"total_shipping_cost" db:"total_shipping_cost"`
	TotalServiceFee   int64  `json:"total_service_fee" db:"total_service_fee"`
	TotalTaxes        int64  `json:"total_taxes" db:"total_taxes"`
	CouponDiscount    int64  `json:"coupon_discount" db:"coupon_discount"`
	CouponCode        string `json:"coupon_code,omitempty" db:"coupon_code"`
	TotalAmount       int64  `json:"total_amount" db:"total_amount"`
	Currency          string `json:"currency" db:"currency"`

	ItemCount   int `json:"item_count" db:"item_count"`
	SellerCount int `json:"seller_count" db:"seller_count"`

	ShippingAddress ShippingAddress         `json:"shipping_address"`
	ShippingMethod  string                  `json:"shipping_method,omitempty" db:"shipping_method"`
	BuyerNotes      string                  `json:"buyer_notes,omitempty" db:"buyer_notes"`
	AdminNotes      string                  `json:"admin_notes,omitempty" db:"admin_notes"`
	SellerPayouts   []checkout.SellerPayout `json:"seller_payouts"`
	StatusHistory   []StatusHistoryEntry    `json:"status_history"`

	// Champs copiés depuis le paiement à la confirmation
	PaymentReference string     `json:"payment_reference,omitempty" db:"payment_reference"`
	PaymentMethod    string     `json:"payment_method,omitempty" db:"payment_method"`
	PaymentGateway   string     `json:"payment_gateway,omitempty" db:"payment_gateway"`
	PaidAt           *time.Time `json:"paid_at,omitempty" db:"paid_at"`

	CancelledAt     *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelReason    string     `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledBy     string     `json:"cancelled_by,omitempty" db:"cancelled_by"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	ShippedAt       *time.Time `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderItem est une ligne de commande. Les champs prix sont un snapshot
// figé à la création, jamais réédités.
type OrderItem struct {
	ID        gocql.UUID `json:"id" db:"item_id"`
	OrderID   gocql.UUID `json:"order_id" db:"order_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	SellerID  string     `json:"seller_id" db:"seller_id"`

	Title     string `json:"title" db:"title"`
	Brand     string `json:"brand,omitempty" db:"brand"`
	Size      string `json:"size,omitempty" db:"size"`
	Condition string `json:"condition,omitempty" db:"condition"`

	Quantity       int   `json:"quantity" db:"quantity"`
	UnitPrice      int64 `json:"unit_price" db:"unit_price"`
	TotalPrice     int64 `json:"total_price" db:"total_price"`
	ShippingCost   int64 `json:"shipping_cost" db:"shipping_cost"`
	ItemServiceFee int64 `json:"item_service_fee" db:"item_service_fee"`
	ItemTaxes      int64 `json:"item_taxes" db:"item_taxes"`
	ItemTotal      int64 `json:"item_total" db:"item_total"`
	SellerRevenue  int64 `json:"seller_revenue" db:"seller_revenue"`

	Status    string `json:"status" db:"status"` // pending, confirmed, processing, shipped, delivered, cancelled, refunded
	Available bool   `json:"available" db:"available"`
	Reason    string `json:"reason,omitempty" db:"reason"`

	// InventoryApplied marque que le stock du produit a déjà été consommé
	// pour cet item — la confirmation de paiement est rejouable.
	InventoryApplied bool `json:"-" db:"inventory_applied"`

	TrackingNumber string     `json:"tracking_number,omitempty" db:"tracking_number"`
	CarrierName    string     `json:"carrier_name,omitempty" db:"carrier_name"`
	CancelReason   string     `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
