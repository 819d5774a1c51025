package checkout

import (
	"regexp"
	"testing"
)

func catalogLookup(products map[string]ProductSnapshot) ProductLookup {
	return func(id string) (ProductSnapshot, bool) {
		p, ok := products[id]
		return p, ok
	}
}

func TestCalculateEndToEnd(t *testing.T) {
	// Scénario complet : panier à une ligne, acheteur ≠ vendeur, stock 5.
	lookup := catalogLookup(map[string]ProductSnapshot{
		"prod-a": {
			ID: "prod-a", SellerID: "seller-a", Title: "Air Max 95",
			UnitPrice: 25000, DomesticShipping: 1250, Quantity: 5,
		},
	})

	result := Calculate("buyer-1", []CartLine{{ProductID: "prod-a", Quantity: 2}}, lookup)

	if len(result.Errors) != 0 {
		t.Fatalf("erreurs inattendues: %v", result.Errors)
	}
	if result.Subtotal != 50000 || result.TotalShippingCost != 2500 ||
		result.TotalServiceFee != 1750 || result.TotalTaxes != 3881 {
		t.Errorf("totaux inattendus: %+v", result)
	}
	if result.TotalAmount != 58131 {
		t.Errorf("TotalAmount = %d, attendu 58131", result.TotalAmount)
	}
	if result.ItemCount != 2 || result.SellerCount != 1 {
		t.Errorf("compteurs inattendus: items=%d sellers=%d", result.ItemCount, result.SellerCount)
	}

	payouts := BuildSellerPayouts(result.Items)
	if len(payouts) != 1 {
		t.Fatalf("payouts = %d, attendu 1", len(payouts))
	}
	p := payouts[0]
	if p.SellerID != "seller-a" || p.ItemCount != 2 || p.Revenue != 48250 ||
		p.ServiceFee != 1750 || p.Paid {
		t.Errorf("payout inattendu: %+v", p)
	}
}

func TestCalculateAggregationInvariant(t *testing.T) {
	lookup := catalogLookup(map[string]ProductSnapshot{
		"a": {ID: "a", SellerID: "s1", UnitPrice: 4999, DomesticShipping: 300, Quantity: 10},
		"b": {ID: "b", SellerID: "s2", UnitPrice: 12000, DomesticShipping: 0, Quantity: 3},
		"c": {ID: "c", SellerID: "s1", UnitPrice: 777, DomesticShipping: 50, Quantity: 8},
	})

	result := Calculate("buyer-1", []CartLine{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
		{ProductID: "c", Quantity: 4},
	}, lookup)

	sum := result.Subtotal + result.TotalShippingCost + result.TotalServiceFee + result.TotalTaxes
	if result.TotalAmount != sum {
		t.Errorf("TotalAmount %d != somme des composantes %d", result.TotalAmount, sum)
	}
	if result.SellerCount != 2 {
		t.Errorf("SellerCount = %d, attendu 2 (vendeurs distincts)", result.SellerCount)
	}

	// La somme revenue+serviceFee des payouts doit couvrir subtotal + frais.
	var payoutTotal int64
	for _, p := range BuildSellerPayouts(result.Items) {
		payoutTotal += p.Revenue + p.ServiceFee
	}
	if payoutTotal != result.Subtotal+result.TotalServiceFee {
		t.Errorf("payouts %d != subtotal+frais %d", payoutTotal, result.Subtotal+result.TotalServiceFee)
	}
}

func TestCalculateExcludesUnavailable(t *testing.T) {
	lookup := catalogLookup(map[string]ProductSnapshot{
		"ok":   {ID: "ok", SellerID: "s1", UnitPrice: 1000, Quantity: 5},
		"sold": {ID: "sold", SellerID: "s2", UnitPrice: 9999, Quantity: 5, Sold: true},
		"mine": {ID: "mine", SellerID: "buyer-1", UnitPrice: 5000, Quantity: 5},
	})

	result := Calculate("buyer-1", []CartLine{
		{ProductID: "ok", Quantity: 1},
		{ProductID: "sold", Quantity: 1},
		{ProductID: "mine", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	}, lookup)

	if result.Subtotal != 1000 {
		t.Errorf("Subtotal = %d : les articles indisponibles ne doivent pas compter", result.Subtotal)
	}
	if result.ItemCount != 1 || result.SellerCount != 1 {
		t.Errorf("compteurs: items=%d sellers=%d", result.ItemCount, result.SellerCount)
	}
	if len(result.UnavailableItems) != 3 {
		t.Errorf("UnavailableItems = %v, attendu 3 entrées", result.UnavailableItems)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, attendu l'erreur produit introuvable", result.Errors)
	}

	// L'auto-achat porte la raison exacte affichée à l'utilisateur.
	for _, item := range result.Items {
		if item.ProductID == "mine" && item.Reason != "You cannot buy your own product" {
			t.Errorf("raison auto-achat: %q", item.Reason)
		}
	}
}

func TestBuildSellerPayoutsGroupsBySeller(t *testing.T) {
	items := []CalculatedItem{
		{SellerID: "s1", Quantity: 1, Available: true,
			ItemPricing: ItemPricing{TotalPrice: 1000, ItemServiceFee: 35}},
		{SellerID: "s2", Quantity: 2, Available: true,
			ItemPricing: ItemPricing{TotalPrice: 4000, ItemServiceFee: 140}},
		{SellerID: "s1", Quantity: 3, Available: true,
			ItemPricing: ItemPricing{TotalPrice: 9000, ItemServiceFee: 315}},
		{SellerID: "s3", Quantity: 1, Available: false,
			ItemPricing: ItemPricing{TotalPrice: 500, ItemServiceFee: 18}},
	}

	payouts := BuildSellerPayouts(items)
	if len(payouts) != 2 {
		t.Fatalf("payouts = %d, attendu 2 (l'indisponible est exclu)", len(payouts))
	}
	if payouts[0].SellerID != "s1" || payouts[0].ItemCount != 4 ||
		payouts[0].Revenue != 9650 || payouts[0].ServiceFee != 350 {
		t.Errorf("payout s1 inattendu: %+v", payouts[0])
	}
	if payouts[1].SellerID != "s2" || payouts[1].Revenue != 3860 {
		t.Errorf("payout s2 inattendu: %+v", payouts[1])
	}
}

func TestNewOrderNumberShape(t *testing.T) {
	pattern := regexp.MustCompile(`^KSW-\d{13}-\d{4}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := NewOrderNumber()
		if !pattern.MatchString(n) {
			t.Fatalf("numéro de commande mal formé: %s", n)
		}
		seen[n] = true
	}
	// Best effort : le générateur ne doit pas boucler sur la même valeur.
	if len(seen) < 2 {
		t.Error("le composant aléatoire ne varie pas")
	}
}
