package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"kasuwa_back_end/internal/checkout"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhookSignature(t *testing.T) {
	secret := "sk_test_abcdef"
	body := []byte(`{"event":"charge.success","data":{"reference":"KSW-1-0001"}}`)

	if !ValidateWebhookSignature(secret, body, sign(secret, body)) {
		t.Error("signature correcte refusée")
	}
	if ValidateWebhookSignature(secret, body, sign("autre_secret", body)) {
		t.Error("signature d'un autre secret acceptée")
	}
	if ValidateWebhookSignature(secret, []byte(`{"event":"tampered"}`), sign(secret, body)) {
		t.Error("corps modifié accepté")
	}
	if ValidateWebhookSignature(secret, body, "") {
		t.Error("signature vide acceptée")
	}
	if ValidateWebhookSignature(secret, body, "deadbeef") {
		t.Error("signature arbitraire acceptée")
	}
}

func TestMapGatewayStatus(t *testing.T) {
	cases := map[string]checkout.PaymentStatus{
		"success":   checkout.PaymentCompleted,
		"succeeded": checkout.PaymentCompleted,
		"failed":    checkout.PaymentFailed,
		"abandoned": checkout.PaymentFailed,
		"ongoing":   checkout.PaymentPending,
		"":          checkout.PaymentPending,
	}
	for gateway, want := range cases {
		if got := MapGatewayStatus(gateway); got != want {
			t.Errorf("MapGatewayStatus(%q) = %s, attendu %s", gateway, got, want)
		}
	}
}

func TestDecideVerificationIdempotent(t *testing.T) {
	// Un paiement déjà completed court-circuite : même résultat, zéro
	// écriture, quel que soit le verdict passerelle.
	for _, gatewayStatus := range []string{"success", "failed", "ongoing"} {
		status, write := DecideVerification(checkout.PaymentCompleted, gatewayStatus)
		if status != checkout.PaymentCompleted || write {
			t.Errorf("verify rejoué (passerelle %q): status=%s write=%v", gatewayStatus, status, write)
		}
	}

	// Premier passage : le succès s'applique.
	status, write := DecideVerification(checkout.PaymentPending, "success")
	if status != checkout.PaymentCompleted || !write {
		t.Errorf("premier verify: status=%s write=%v", status, write)
	}

	// Statut identique : pas de réécriture inutile.
	if _, write := DecideVerification(checkout.PaymentPending, "ongoing"); write {
		t.Error("écriture pour un statut inchangé")
	}
}

func TestDecideReconciliation(t *testing.T) {
	// Un webhook rejoué après un échec partiel retombe sur un paiement déjà
	// completed : l'effet composé doit quand même se rejouer tant que la
	// commande n'a pas enregistré le règlement.
	if !DecideReconciliation(checkout.PaymentCompleted, checkout.PaymentPending) {
		t.Error("commande en retard sur le paiement : le règlement doit se rejouer")
	}

	// Tout est en place : plus aucune écriture.
	if DecideReconciliation(checkout.PaymentCompleted, checkout.PaymentCompleted) {
		t.Error("règlement rejoué alors que la commande est à jour")
	}

	// Paiement non abouti : rien à appliquer côté commande.
	for _, status := range []checkout.PaymentStatus{checkout.PaymentPending, checkout.PaymentFailed} {
		if DecideReconciliation(status, checkout.PaymentPending) {
			t.Errorf("règlement déclenché pour un paiement %s", status)
		}
	}
}
