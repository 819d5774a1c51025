package payement

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/payments"
)

// selectGateway résout la passerelle demandée. PayStack est la passerelle
// par défaut ; Stripe reste disponible pour les cartes internationales.
func selectGateway(name string) (payments.Gateway, error) {
	switch strings.ToLower(name) {
	case "", "paystack":
		key := os.Getenv("PAYSTACK_SECRET_KEY")
		if key == "" {
			return nil, checkout.E(checkout.KindUpstream, "Payment gateway is not configured")
		}
		return payments.NewPaystackClient(key), nil
	case "stripe":
		return payments.NewStripeGateway(), nil
	default:
		return nil, checkout.Ef(checkout.KindValidation, "Unknown payment gateway: %s", name)
	}
}

// newPaymentReference génère une référence unique côté plateforme,
// transmise telle quelle à la passerelle.
func newPaymentReference() string {
	return fmt.Sprintf("KSW-PAY-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:20])
}

// resolveCallbackURL : le client peut imposer son URL de retour, sinon la
// page de callback standard du front.
func resolveCallbackURL(override string) string {
	if override != "" {
		return override
	}
	return config.FrontendURL() + "/payment/callback"
}

const selectPaymentCQL = `SELECT payment_id, order_id, user_id, gateway, reference, status, amount, currency,
	gateway_transaction_id, authorization_code, card_type, card_last4, channel, customer_email,
	refund_reference, refund_amount, refund_reason, refunded_at, retry_count, completed_at, created_at, updated_at
	FROM payments WHERE payment_id = ?`

func loadPayment(paymentID gocql.UUID) (*models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var p models.Payment
	if err := session.Query(selectPaymentCQL, paymentID).Scan(
		&p.ID, &p.OrderID, &p.UserID, &p.Gateway, &p.Reference, &p.Status, &p.Amount, &p.Currency,
		&p.GatewayTransactionID, &p.AuthorizationCode, &p.CardType, &p.CardLast4, &p.Channel, &p.CustomerEmail,
		&p.RefundReference, &p.RefundAmount, &p.RefundReason, &p.RefundedAt, &p.RetryCount, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// loadPaymentByReference passe par la table de lookup payments_by_reference.
func loadPaymentByReference(reference string) (*models.Payment, error) {
	var paymentID gocql.UUID
	if err := database.GetPreparedGetPaymentByRef().Bind(reference).Scan(&paymentID); err != nil {
		return nil, err
	}
	return loadPayment(paymentID)
}

// latestPaymentForOrder renvoie la tentative la plus récente pour une
// commande, ou gocql.ErrNotFound.
func latestPaymentForOrder(orderID gocql.UUID) (*models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var paymentID gocql.UUID
	if err := session.Query(`SELECT payment_id FROM payments_by_order WHERE order_id = ? LIMIT 1`, orderID).Scan(&paymentID); err != nil {
		return nil, err
	}
	return loadPayment(paymentID)
}

func insertPayment(p *models.Payment) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if err := session.Query(`INSERT INTO payments (payment_id, order_id, user_id, gateway, reference, status, amount, currency,
		retry_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrderID, p.UserID, p.Gateway, p.Reference, string(p.Status), p.Amount, p.Currency,
		p.RetryCount, p.CreatedAt, p.UpdatedAt,
	).Exec(); err != nil {
		return err
	}

	if err := database.GetPreparedInsertPaymentByRef().Bind(p.Reference, p.ID).Exec(); err != nil {
		return err
	}
	return session.Query(`INSERT INTO payments_by_order (order_id, created_at, payment_id) VALUES (?, ?, ?)`,
		p.OrderID, p.CreatedAt, p.ID).Exec()
}

// persistPaymentStatus réécrit le verdict et les champs passerelle d'un
// paiement déjà chargé.
func persistPaymentStatus(p *models.Payment) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	return session.Query(`UPDATE payments SET status = ?, gateway_transaction_id = ?, authorization_code = ?,
		card_type = ?, card_last4 = ?, channel = ?, customer_email = ?,
		refund_reference = ?, refund_amount = ?, refund_reason = ?, refunded_at = ?,
		retry_count = ?, completed_at = ?, updated_at = ? WHERE payment_id = ?`,
		string(p.Status), p.GatewayTransactionID, p.AuthorizationCode,
		p.CardType, p.CardLast4, p.Channel, p.CustomerEmail,
		p.RefundReference, p.RefundAmount, p.RefundReason, p.RefundedAt,
		p.RetryCount, p.CompletedAt, p.UpdatedAt, p.ID,
	).Exec()
}
