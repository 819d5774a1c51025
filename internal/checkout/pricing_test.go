package checkout

import "testing"

func TestCalculateItemPricingWorkedExample(t *testing.T) {
	// 2 × 25000 NGN, livraison domestique 1250/unité
	p := CalculateItemPricing(25000, 2, 1250)

	if p.TotalPrice != 50000 {
		t.Errorf("TotalPrice = %d, attendu 50000", p.TotalPrice)
	}
	if p.ShippingCost != 2500 {
		t.Errorf("ShippingCost = %d, attendu 2500", p.ShippingCost)
	}
	if p.ItemServiceFee != 1750 {
		t.Errorf("ItemServiceFee = %d, attendu 1750", p.ItemServiceFee)
	}
	// round(51750 * 0.075) = round(3881.25) = 3881
	if p.ItemTaxes != 3881 {
		t.Errorf("ItemTaxes = %d, attendu 3881", p.ItemTaxes)
	}
	if p.ItemTotal != 58131 {
		t.Errorf("ItemTotal = %d, attendu 58131", p.ItemTotal)
	}
}

func TestCalculateItemPricingSumInvariant(t *testing.T) {
	cases := []struct {
		unitPrice int64
		quantity  int
		shipping  int64
	}{
		{1, 1, 0},
		{999, 3, 150},
		{25000, 2, 1250},
		{100000, 10, 0},
		{333, 7, 21},
		{1234567, 1, 890},
	}

	for _, tc := range cases {
		p := CalculateItemPricing(tc.unitPrice, tc.quantity, tc.shipping)
		sum := p.TotalPrice + p.ShippingCost + p.ItemServiceFee + p.ItemTaxes
		if p.ItemTotal != sum {
			t.Errorf("CalculateItemPricing(%d, %d, %d): ItemTotal %d != somme %d",
				tc.unitPrice, tc.quantity, tc.shipping, p.ItemTotal, sum)
		}
	}
}

func TestCalculateItemPricingDeterministic(t *testing.T) {
	first := CalculateItemPricing(4999, 3, 500)
	for i := 0; i < 100; i++ {
		if got := CalculateItemPricing(4999, 3, 500); got != first {
			t.Fatalf("résultat non déterministe au tour %d: %+v != %+v", i, got, first)
		}
	}
}

func TestCalculateItemPricingRoundsIndependently(t *testing.T) {
	// Le frais et la taxe sont arrondis chacun de leur côté, jamais
	// calculés depuis une base combinée arrondie.
	p := CalculateItemPricing(1001, 1, 0)

	fee := int64(35) // round(1001 * 0.035) = round(35.035)
	if p.ItemServiceFee != fee {
		t.Errorf("ItemServiceFee = %d, attendu %d", p.ItemServiceFee, fee)
	}
	taxes := int64(78) // round((1001+35) * 0.075) = round(77.7)
	if p.ItemTaxes != taxes {
		t.Errorf("ItemTaxes = %d, attendu %d", p.ItemTaxes, taxes)
	}
}
