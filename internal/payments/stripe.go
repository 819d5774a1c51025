package payments

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"

	"kasuwa_back_end/internal/checkout"
)

// StripeGateway est la passerelle alternative (gateway=stripe à
// l'initialisation). La clé globale stripe.Key est posée au boot.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway { return &StripeGateway{} }

func (g *StripeGateway) Name() string { return "stripe" }

// Initialize crée un PaymentIntent. Le client_secret part dans AccessCode,
// le front monte Stripe Elements avec.
func (g *StripeGateway) Initialize(ctx context.Context, params InitializeParams) (*InitializationResult, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount * 100),
		Currency: stripe.String(strings.ToLower(params.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":  params.OrderID,
			"reference": params.Reference,
			"email":     params.Email,
		},
	}

	intent, err := paymentintent.New(piParams)
	if err != nil {
		log.Printf("❌ Erreur Stripe PaymentIntent: %v", err)
		return nil, checkout.E(checkout.KindUpstream, "Payment gateway error")
	}

	log.Printf("💳 PaymentIntent Stripe créé: %s (%d %s)", intent.ID, params.Amount, params.Currency)
	return &InitializationResult{
		Reference:  intent.ID,
		AccessCode: intent.ClientSecret,
		Amount:     params.Amount,
		Currency:   params.Currency,
		Gateway:    g.Name(),
	}, nil
}

// Verify relit le PaymentIntent et traduit son statut.
func (g *StripeGateway) Verify(ctx context.Context, reference string) (*VerificationResult, error) {
	intent, err := paymentintent.Get(reference, nil)
	if err != nil {
		log.Printf("❌ Erreur Stripe verify %s: %v", reference, err)
		return nil, checkout.E(checkout.KindUpstream, "Payment gateway error")
	}

	status := "pending"
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = "success"
	case stripe.PaymentIntentStatusCanceled:
		status = "failed"
	}

	result := &VerificationResult{
		Reference:            intent.ID,
		GatewayStatus:        status,
		Amount:               intent.Amount / 100,
		Currency:             strings.ToUpper(string(intent.Currency)),
		GatewayTransactionID: intent.ID,
		Channel:              "card",
		PaidAt:               time.Unix(intent.Created, 0),
	}
	if intent.Metadata != nil {
		result.CustomerEmail = intent.Metadata["email"]
	}
	return result, nil
}

// Refund rembourse le PaymentIntent, montant partiel accepté.
func (g *StripeGateway) Refund(ctx context.Context, params RefundParams) (string, error) {
	refundParams := &stripe.RefundParams{
		PaymentIntent: stripe.String(params.Reference),
		Reason:        stripe.String("requested_by_customer"),
	}
	if params.Amount > 0 {
		refundParams.Amount = stripe.Int64(params.Amount * 100)
	}

	r, err := refund.New(refundParams)
	if err != nil {
		log.Printf("❌ Erreur Stripe refund %s: %v", params.Reference, err)
		return "", checkout.E(checkout.KindUpstream, "Payment gateway error")
	}
	log.Printf("💰 Remboursement Stripe créé: %s", r.ID)
	return r.ID, nil
}
