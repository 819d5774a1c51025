package payement

import (
	"regexp"
	"testing"
)

func TestResolveCallbackURL(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://shop.kasuwa.ng")

	// Par défaut : la page de callback standard du front.
	if got := resolveCallbackURL(""); got != "https://shop.kasuwa.ng/payment/callback" {
		t.Errorf("callback par défaut: %q", got)
	}

	// Le client peut imposer son URL de retour.
	if got := resolveCallbackURL("https://app.kasuwa.ng/retour-paiement"); got != "https://app.kasuwa.ng/retour-paiement" {
		t.Errorf("override ignoré: %q", got)
	}
}

func TestNewPaymentReferenceShape(t *testing.T) {
	pattern := regexp.MustCompile(`^KSW-PAY-[0-9a-f]{20}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := newPaymentReference()
		if !pattern.MatchString(ref) {
			t.Fatalf("référence mal formée: %s", ref)
		}
		seen[ref] = true
	}
	if len(seen) != 50 {
		t.Error("des références identiques ont été générées")
	}
}
