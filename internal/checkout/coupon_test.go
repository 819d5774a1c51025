package checkout

import "testing"

func TestCouponDiscount(t *testing.T) {
	cases := []struct {
		name     string
		terms    CouponTerms
		total    int64
		shipping int64
		want     int64
	}{
		{"pourcentage simple", CouponTerms{Type: CouponPercentage, Value: 10}, 58131, 2500, 5813},
		{"pourcentage plafonné", CouponTerms{Type: CouponPercentage, Value: 50, MaxAmount: 5000}, 58131, 2500, 5000},
		{"montant fixe", CouponTerms{Type: CouponFixed, Value: 2000}, 58131, 2500, 2000},
		{"fixe supérieur au total", CouponTerms{Type: CouponFixed, Value: 99999}, 10000, 0, 10000},
		{"livraison offerte", CouponTerms{Type: CouponFreeShipping}, 58131, 2500, 2500},
		{"type inconnu", CouponTerms{Type: "mystere", Value: 50}, 58131, 2500, 0},
		{"valeur négative bornée", CouponTerms{Type: CouponFixed, Value: -500}, 10000, 0, 0},
	}

	for _, tc := range cases {
		if got := CouponDiscount(tc.terms, tc.total, tc.shipping); got != tc.want {
			t.Errorf("%s: remise = %d, attendu %d", tc.name, got, tc.want)
		}
	}
}

func TestCouponDiscountNeverExceedsTotal(t *testing.T) {
	// Quelle que soit la combinaison, total - remise reste >= 0.
	terms := []CouponTerms{
		{Type: CouponPercentage, Value: 100},
		{Type: CouponFixed, Value: 1 << 40},
		{Type: CouponFreeShipping},
	}
	for _, tm := range terms {
		for _, total := range []int64{0, 1, 999, 58131} {
			if d := CouponDiscount(tm, total, total*2); total-d < 0 {
				t.Errorf("remise %d > total %d pour %+v", d, total, tm)
			}
		}
	}
}
