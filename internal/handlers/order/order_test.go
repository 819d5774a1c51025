package order

import (
	"testing"
	"time"

	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/models"
)

const (
	prodA = "11111111-1111-1111-1111-111111111111"
	prodB = "22222222-2222-2222-2222-222222222222"
)

func catalogLookup(products map[string]checkout.ProductSnapshot) checkout.ProductLookup {
	return func(id string) (checkout.ProductSnapshot, bool) {
		p, ok := products[id]
		return p, ok
	}
}

func validRequest(lines []checkout.CartLine) CreateRequest {
	return CreateRequest{
		Items: lines,
		ShippingAddress: models.ShippingAddress{
			FullName: "Amina Bello", Street: "12 Marina Road", City: "Lagos", Country: "NG",
		},
	}
}

func TestBuildOrderRejectsUnknownProduct(t *testing.T) {
	// Un produit du panier a disparu entre le calcul et la création : la
	// commande entière est refusée, pas de commande partielle.
	lookup := catalogLookup(map[string]checkout.ProductSnapshot{
		prodA: {ID: prodA, SellerID: "seller-1", Title: "Air Max 95", UnitPrice: 25000, Quantity: 5},
	})
	lines := []checkout.CartLine{
		{ProductID: prodA, Quantity: 1},
		{ProductID: prodB, Quantity: 1},
	}

	result := checkout.Calculate("buyer-1", lines, lookup)
	o, items, err := BuildOrder("buyer-1", validRequest(lines), result, 0)

	if err == nil {
		t.Fatalf("commande créée malgré un produit introuvable: %+v (%d lignes)", o, len(items))
	}
	if checkout.KindOf(err) != checkout.KindValidation {
		t.Errorf("kind = %v, attendu Validation", checkout.KindOf(err))
	}
	if len(checkout.FieldsOf(err)) == 0 {
		t.Error("les erreurs par ligne doivent être rapportées")
	}
}

func TestBuildOrderRejectsUnavailableItem(t *testing.T) {
	// Produit connu mais plus en stock : conflit, rien n'est créé.
	lookup := catalogLookup(map[string]checkout.ProductSnapshot{
		prodA: {ID: prodA, SellerID: "seller-1", Title: "Air Max 95", UnitPrice: 25000, Quantity: 5},
		prodB: {ID: prodB, SellerID: "seller-2", Title: "Casio F-91W", UnitPrice: 8000, Quantity: 0},
	})
	lines := []checkout.CartLine{
		{ProductID: prodA, Quantity: 1},
		{ProductID: prodB, Quantity: 1},
	}

	result := checkout.Calculate("buyer-1", lines, lookup)
	o, items, err := BuildOrder("buyer-1", validRequest(lines), result, 0)

	if err == nil {
		t.Fatalf("commande créée malgré une ligne indisponible: %+v (%d lignes)", o, len(items))
	}
	if checkout.KindOf(err) != checkout.KindConflict {
		t.Errorf("kind = %v, attendu Conflict", checkout.KindOf(err))
	}
}

func TestBuildOrderAppliesCouponDiscount(t *testing.T) {
	lookup := catalogLookup(map[string]checkout.ProductSnapshot{
		prodA: {ID: prodA, SellerID: "seller-1", Title: "Air Max 95", UnitPrice: 25000, DomesticShipping: 1250, Quantity: 5},
	})
	lines := []checkout.CartLine{{ProductID: prodA, Quantity: 2}}
	req := validRequest(lines)
	req.CouponCode = "bienvenue10"

	result := checkout.Calculate("buyer-1", lines, lookup)
	o, _, err := BuildOrder("buyer-1", req, result, 5813)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}

	if o.CouponDiscount != 5813 || o.CouponCode != "BIENVENUE10" {
		t.Errorf("coupon mal reporté: discount=%d code=%q", o.CouponDiscount, o.CouponCode)
	}
	want := o.Subtotal + o.TotalShippingCost + o.TotalServiceFee + o.TotalTaxes - o.CouponDiscount
	if o.TotalAmount != want {
		t.Errorf("TotalAmount = %d, attendu %d (invariant avec remise)", o.TotalAmount, want)
	}
}

func TestBuildOrderHappyPath(t *testing.T) {
	lookup := catalogLookup(map[string]checkout.ProductSnapshot{
		prodA: {ID: prodA, SellerID: "seller-1", Title: "Air Max 95", UnitPrice: 25000, DomesticShipping: 1250, Quantity: 5},
	})
	lines := []checkout.CartLine{{ProductID: prodA, Quantity: 2}}

	result := checkout.Calculate("buyer-1", lines, lookup)
	o, items, err := BuildOrder("buyer-1", validRequest(lines), result, 0)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}

	if o.Status != checkout.StatusPending || o.PaymentStatus != checkout.PaymentPending {
		t.Errorf("statuts initiaux: %s / %s", o.Status, o.PaymentStatus)
	}
	if o.TotalAmount != 58131 {
		t.Errorf("TotalAmount = %d, attendu 58131", o.TotalAmount)
	}
	if len(items) != 1 || items[0].Status != string(checkout.StatusPending) {
		t.Errorf("lignes inattendues: %+v", items)
	}
	if len(o.SellerPayouts) != 1 || o.SellerPayouts[0].Revenue != 48250 {
		t.Errorf("payouts inattendus: %+v", o.SellerPayouts)
	}
}

func TestStampItemsCancelled(t *testing.T) {
	items := []models.OrderItem{
		{ID: gocql.TimeUUID(), Status: "confirmed"},
		{ID: gocql.TimeUUID(), Status: "confirmed"},
		{ID: gocql.TimeUUID(), Status: "pending"},
	}
	at := time.Now()

	StampItemsCancelled(items, "Changed my mind", at)

	for i, it := range items {
		if it.Status != string(checkout.StatusCancelled) {
			t.Errorf("ligne %d: statut %q", i, it.Status)
		}
		if it.CancelReason != "Changed my mind" {
			t.Errorf("ligne %d: motif %q", i, it.CancelReason)
		}
		if it.CancelledAt == nil || !it.CancelledAt.Equal(at) {
			t.Errorf("ligne %d: horodatage d'annulation %v, attendu %v", i, it.CancelledAt, at)
		}
	}
}

func TestStampItemsStatus(t *testing.T) {
	items := []models.OrderItem{
		{ID: gocql.TimeUUID(), Status: "pending"},
		{ID: gocql.TimeUUID(), Status: "pending"},
	}
	at := time.Now()

	StampItemsStatus(items, string(checkout.StatusConfirmed), at)

	for i, it := range items {
		if it.Status != string(checkout.StatusConfirmed) {
			t.Errorf("ligne %d: statut %q, attendu confirmed", i, it.Status)
		}
		if !it.UpdatedAt.Equal(at) {
			t.Errorf("ligne %d: updated_at non horodaté", i)
		}
	}
}
