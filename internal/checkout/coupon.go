package checkout

import "math"

// Types de coupons reconnus.
const (
	CouponPercentage   = "percentage"
	CouponFixed        = "fixed"
	CouponFreeShipping = "free_shipping"
)

// CouponTerms est la partie d'un coupon qui entre dans le calcul de la
// remise. La fenêtre de validité et les plafonds d'usage sont vérifiés en
// amont, sur le coupon complet.
type CouponTerms struct {
	Type      string
	Value     int64 // pourcentage (1-100) ou montant NGN selon Type
	MaxAmount int64 // plafond de remise pour les pourcentages, 0 = aucun
}

// CouponDiscount calcule la remise appliquée au total de la commande.
// Toujours bornée à [0, total] : le net à payer ne devient jamais négatif.
func CouponDiscount(terms CouponTerms, total, shipping int64) int64 {
	var discount int64
	switch terms.Type {
	case CouponPercentage:
		discount = int64(math.Round(float64(total) * float64(terms.Value) / 100))
		if terms.MaxAmount > 0 && discount > terms.MaxAmount {
			discount = terms.MaxAmount
		}
	case CouponFixed:
		discount = terms.Value
	case CouponFreeShipping:
		discount = shipping
	}
	if discount < 0 {
		discount = 0
	}
	if discount > total {
		discount = total
	}
	return discount
}
