package checkout

import "testing"

func snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:               "p1",
		SellerID:         "seller-1",
		Title:            "Vintage Denim Jacket",
		UnitPrice:        25000,
		DomesticShipping: 1250,
		Quantity:         5,
	}
}

func TestCheckAvailabilityOK(t *testing.T) {
	ok, reason := CheckAvailability(snapshot(), 2, "buyer-1")
	if !ok {
		t.Fatalf("attendu disponible, raison: %q", reason)
	}
	if reason != "" {
		t.Errorf("raison non vide pour un article disponible: %q", reason)
	}
}

func TestCheckAvailabilitySold(t *testing.T) {
	p := snapshot()
	p.Sold = true
	ok, reason := CheckAvailability(p, 1, "buyer-1")
	if ok {
		t.Fatal("un produit vendu ne doit pas être disponible")
	}
	if reason != "This product has already been sold" {
		t.Errorf("raison inattendue: %q", reason)
	}
}

func TestCheckAvailabilityInsufficientStock(t *testing.T) {
	ok, reason := CheckAvailability(snapshot(), 6, "buyer-1")
	if ok {
		t.Fatal("stock insuffisant accepté")
	}
	if reason == "" {
		t.Error("raison manquante pour stock insuffisant")
	}
}

func TestCheckAvailabilitySelfPurchase(t *testing.T) {
	ok, reason := CheckAvailability(snapshot(), 1, "seller-1")
	if ok {
		t.Fatal("l'auto-achat doit être refusé")
	}
	if reason != "You cannot buy your own product" {
		t.Errorf("raison auto-achat inattendue: %q", reason)
	}
}

func TestCheckAvailabilityRuleOrder(t *testing.T) {
	// vendu prime sur le stock et l'auto-achat
	p := snapshot()
	p.Sold = true
	p.Quantity = 0
	_, reason := CheckAvailability(p, 3, "seller-1")
	if reason != "This product has already been sold" {
		t.Errorf("la règle 'vendu' doit être évaluée en premier, raison: %q", reason)
	}
}
