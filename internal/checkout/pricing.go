package checkout

import "math"

const (
	// ServiceFeeRate est la part plateforme (3,5% du prix article)
	ServiceFeeRate = 0.035
	// TaxRate s'applique sur prix + frais de service (7,5%)
	TaxRate = 0.075
)

// ItemPricing est la décomposition monétaire d'une ligne de panier.
// Tous les montants sont en unités entières de la devise (NGN).
type ItemPricing struct {
	TotalPrice     int64 `json:"total_price"`
	ShippingCost   int64 `json:"shipping_cost"`
	ItemServiceFee int64 `json:"item_service_fee"`
	ItemTaxes      int64 `json:"item_taxes"`
	ItemTotal      int64 `json:"item_total"`
}

// CalculateItemPricing calcule la décomposition d'une ligne. Fonction pure.
// Les arrondis du frais de service et de la taxe sont appliqués séparément,
// jamais sur une base combinée — la cohérence avec les montants déjà
// enregistrés en dépend.
func CalculateItemPricing(unitPrice int64, quantity int, domesticShipping int64) ItemPricing {
	totalPrice := unitPrice * int64(quantity)
	shippingCost := domesticShipping * int64(quantity)
	serviceFee := int64(math.Round(float64(totalPrice) * ServiceFeeRate))
	taxes := int64(math.Round(float64(totalPrice+serviceFee) * TaxRate))

	return ItemPricing{
		TotalPrice:     totalPrice,
		ShippingCost:   shippingCost,
		ItemServiceFee: serviceFee,
		ItemTaxes:      taxes,
		ItemTotal:      totalPrice + shippingCost + serviceFee + taxes,
	}
}
