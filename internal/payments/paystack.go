package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"kasuwa_back_end/internal/checkout"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackClient est le client HTTP PayStack. Timeout plat de 30 secondes
// sur tous les appels sortants.
type PaystackClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewPaystackClient construit le client avec la clé secrète du compte.
func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		secretKey: secretKey,
		baseURL:   paystackBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *PaystackClient) Name() string { return "paystack" }

// paystackEnvelope est l'enveloppe commune des réponses PayStack.
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *PaystackClient) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return checkout.Ef(checkout.KindUpstream, "Payment gateway request could not be built")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return checkout.Ef(checkout.KindUpstream, "Payment gateway request could not be built")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Le détail (timeout, DNS...) reste dans les logs, jamais côté client.
		log.Printf("❌ Erreur appel PayStack %s %s: %v", method, path, err)
		return checkout.E(checkout.KindUpstream, "Payment gateway is unreachable")
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		log.Printf("❌ Réponse PayStack illisible (%s %s, HTTP %d): %v", method, path, resp.StatusCode, err)
		return checkout.E(checkout.KindUpstream, "Payment gateway returned an unexpected response")
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		log.Printf("❌ PayStack a refusé %s %s (HTTP %d): %s", method, path, resp.StatusCode, envelope.Message)
		return checkout.Ef(checkout.KindUpstream, "Payment gateway error: %s", envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			log.Printf("❌ Données PayStack inattendues (%s %s): %v", method, path, err)
			return checkout.E(checkout.KindUpstream, "Payment gateway returned an unexpected response")
		}
	}
	return nil
}

// Initialize ouvre une transaction. PayStack attend le montant en kobo.
func (c *PaystackClient) Initialize(ctx context.Context, params InitializeParams) (*InitializationResult, error) {
	body := map[string]interface{}{
		"email":     params.Email,
		"amount":    params.Amount * 100,
		"reference": params.Reference,
		"currency":  params.Currency,
		"metadata":  map[string]string{"order_id": params.OrderID},
	}
	if params.CallbackURL != "" {
		body["callback_url"] = params.CallbackURL
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	log.Printf("💳 Transaction PayStack initialisée: %s (%d %s)", data.Reference, params.Amount, params.Currency)
	return &InitializationResult{
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Amount:           params.Amount,
		Currency:         params.Currency,
		Gateway:          c.Name(),
	}, nil
}

// Verify interroge la passerelle pour une référence donnée.
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerificationResult, error) {
	var data struct {
		ID        int64  `json:"id"`
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Channel   string `json:"channel"`
		PaidAt    string `json:"paid_at"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
		Authorization struct {
			AuthorizationCode string `json:"authorization_code"`
			CardType          string `json:"card_type"`
			Last4             string `json:"last4"`
		} `json:"authorization"`
	}
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}

	paidAt, _ := time.Parse(time.RFC3339, data.PaidAt)
	return &VerificationResult{
		Reference:            data.Reference,
		GatewayStatus:        data.Status,
		Amount:               data.Amount / 100, // kobo → NGN
		Currency:             data.Currency,
		GatewayTransactionID: fmt.Sprintf("%d", data.ID),
		Channel:              data.Channel,
		CardType:             data.Authorization.CardType,
		CardLast4:            data.Authorization.Last4,
		AuthorizationCode:    data.Authorization.AuthorizationCode,
		CustomerEmail:        data.Customer.Email,
		PaidAt:               paidAt,
	}, nil
}

// Refund demande un remboursement, total si Amount vaut zéro.
func (c *PaystackClient) Refund(ctx context.Context, params RefundParams) (string, error) {
	body := map[string]interface{}{
		"transaction": params.Reference,
	}
	if params.Amount > 0 {
		body["amount"] = params.Amount * 100
	}
	if params.Reason != "" {
		body["merchant_note"] = params.Reason
	}

	var data struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/refund", body, &data); err != nil {
		return "", err
	}
	log.Printf("💰 Remboursement PayStack créé: %d (transaction %s)", data.ID, params.Reference)
	return fmt.Sprintf("%d", data.ID), nil
}

// ValidateWebhookSignature vérifie le HMAC-SHA512 du corps brut contre le
// header x-paystack-signature, en comparaison à temps constant. Toujours
// appelé avant la moindre lecture ou écriture d'état.
func ValidateWebhookSignature(secretKey string, rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
