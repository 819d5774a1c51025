package payments

import (
	"context"
	"time"

	"kasuwa_back_end/internal/checkout"
)

// InitializeParams regroupe ce qu'une passerelle attend pour ouvrir une
// transaction.
type InitializeParams struct {
	Reference   string
	Email       string
	Amount      int64 // unités entières NGN
	Currency    string
	CallbackURL string
	OrderID     string
}

// InitializationResult est ce que le front a besoin pour rediriger le
// client vers la page de paiement.
type InitializationResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Gateway          string `json:"gateway"`
}

// VerificationResult est le verdict brut de la passerelle pour une
// référence.
type VerificationResult struct {
	Reference            string
	GatewayStatus        string // "success", "failed", "abandoned", ...
	Amount               int64
	Currency             string
	GatewayTransactionID string
	Channel              string
	CardType             string
	CardLast4            string
	AuthorizationCode    string
	CustomerEmail        string
	PaidAt               time.Time
}

// RefundParams : montant nul = remboursement total.
type RefundParams struct {
	Reference string
	Amount    int64
	Reason    string
}

// Gateway est le contrat minimal d'un processeur de paiement externe.
type Gateway interface {
	Name() string
	Initialize(ctx context.Context, params InitializeParams) (*InitializationResult, error)
	Verify(ctx context.Context, reference string) (*VerificationResult, error)
	Refund(ctx context.Context, params RefundParams) (string, error)
}

// MapGatewayStatus traduit un statut passerelle vers le statut local.
func MapGatewayStatus(gatewayStatus string) checkout.PaymentStatus {
	switch gatewayStatus {
	case "success", "succeeded":
		return checkout.PaymentCompleted
	case "failed", "abandoned", "reversed", "canceled":
		return checkout.PaymentFailed
	default:
		return checkout.PaymentPending
	}
}

// DecideVerification est le cœur idempotent du bridge : un paiement déjà
// completed court-circuite (aucune écriture), sinon le statut passerelle
// s'applique. Le booléen indique si une écriture est nécessaire.
func DecideVerification(local checkout.PaymentStatus, gatewayStatus string) (checkout.PaymentStatus, bool) {
	if local == checkout.PaymentCompleted {
		return checkout.PaymentCompleted, false
	}
	next := MapGatewayStatus(gatewayStatus)
	if next == local {
		return local, false
	}
	return next, true
}

// DecideReconciliation couvre le rejeu après échec partiel : un paiement
// completed dont la commande n'a pas encore enregistré le règlement doit
// rejouer l'effet composé, même si le verdict est déjà persisté.
func DecideReconciliation(paymentStatus, orderPaymentStatus checkout.PaymentStatus) bool {
	return paymentStatus == checkout.PaymentCompleted && orderPaymentStatus != checkout.PaymentCompleted
}
