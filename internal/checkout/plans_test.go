package checkout

import "testing"

func TestConfirmationPlanSkipsAppliedItems(t *testing.T) {
	items := []OrderItemState{
		{ItemID: "i1", ProductID: "p1", Quantity: 2, InventoryApplied: false},
		{ItemID: "i2", ProductID: "p2", Quantity: 1, InventoryApplied: true},
		{ItemID: "i3", ProductID: "p3", Quantity: 3, InventoryApplied: false},
	}

	ops := ConfirmationPlan(items)
	if len(ops) != 2 {
		t.Fatalf("ops = %d, attendu 2 (l'item déjà appliqué est ignoré)", len(ops))
	}
	if ops[0].ProductID != "p1" || ops[0].Delta != -2 || !ops[0].Apply {
		t.Errorf("op[0] inattendue: %+v", ops[0])
	}
	if ops[1].ProductID != "p3" || ops[1].Delta != -3 {
		t.Errorf("op[1] inattendue: %+v", ops[1])
	}
}

func TestConfirmationPlanIdempotent(t *testing.T) {
	// Rejouer la confirmation après application complète ne produit rien :
	// un retry webhook qui croise un verify synchrone converge.
	items := []OrderItemState{
		{ItemID: "i1", ProductID: "p1", Quantity: 2, InventoryApplied: true},
		{ItemID: "i2", ProductID: "p2", Quantity: 5, InventoryApplied: true},
	}
	if ops := ConfirmationPlan(items); len(ops) != 0 {
		t.Errorf("rejeu de confirmation: %d ops, attendu 0", len(ops))
	}
}

func TestCancellationPlanRestoresAppliedOnly(t *testing.T) {
	items := []OrderItemState{
		{ItemID: "i1", ProductID: "p1", Quantity: 2, InventoryApplied: true},
		{ItemID: "i2", ProductID: "p2", Quantity: 4, InventoryApplied: false},
	}

	ops := CancellationPlan(items)
	if len(ops) != 1 {
		t.Fatalf("ops = %d, attendu 1 (seul l'inventaire consommé est restitué)", len(ops))
	}
	if ops[0].ProductID != "p1" || ops[0].Delta != 2 || ops[0].Apply {
		t.Errorf("op inattendue: %+v", ops[0])
	}
}

func TestConfirmThenCancelRoundTrip(t *testing.T) {
	// Stock S, commande de Q : confirmation puis annulation doit ramener
	// le delta net à zéro.
	items := []OrderItemState{{ItemID: "i1", ProductID: "p1", Quantity: 3}}

	var net int
	for _, op := range ConfirmationPlan(items) {
		net += op.Delta
		items[0].InventoryApplied = op.Apply
	}
	for _, op := range CancellationPlan(items) {
		net += op.Delta
	}
	if net != 0 {
		t.Errorf("delta net après confirmation+annulation = %d, attendu 0", net)
	}
}
