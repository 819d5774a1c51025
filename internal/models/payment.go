package models

import (
	"time"

	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
)

// Payment est une tentative de transaction auprès d'une passerelle.
// Une commande peut en porter plusieurs ; une seule doit atteindre
// "completed".
type Payment struct {
	ID        gocql.UUID              `json:"id" db:"payment_id"`
	OrderID   gocql.UUID              `json:"order_id" db:"order_id"`
	UserID    string                  `json:"user_id" db:"user_id"`
	Gateway   string                  `json:"gateway" db:"gateway"` // "paystack", "stripe"
	Reference string                  `json:"reference" db:"reference"`
	Status    checkout.PaymentStatus  `json:"status" db:"status"`
	Amount    int64                   `json:"amount" db:"amount"`
	Currency  string                  `json:"currency" db:"currency"`

	GatewayTransactionID string `json:"gateway_transaction_id,omitempty" db:"gateway_transaction_id"`
	AuthorizationCode    string `json:"-" db:"authorization_code"`
	CardType             string `json:"card_type,omitempty" db:"card_type"`
	CardLast4            string `json:"card_last4,omitempty" db:"card_last4"`
	Channel              string `json:"channel,omitempty" db:"channel"`
	CustomerEmail        string `json:"customer_email,omitempty" db:"customer_email"`

	RefundReference string     `json:"refund_reference,omitempty" db:"refund_reference"`
	RefundAmount    int64      `json:"refund_amount,omitempty" db:"refund_amount"`
	RefundReason    string     `json:"refund_reason,omitempty" db:"refund_reason"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty" db:"refunded_at"`

	RetryCount  int        `json:"retry_count" db:"retry_count"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// PendingExpiry : un paiement pending plus vieux que 30 minutes est
// considéré expiré et remplacé à la prochaine initialisation.
const PendingExpiry = 30 * time.Minute

// IsExpired indique si un paiement pending a dépassé la fenêtre.
func (p Payment) IsExpired(now time.Time) bool {
	return p.Status == checkout.PaymentPending && now.Sub(p.CreatedAt) > PendingExpiry
}
