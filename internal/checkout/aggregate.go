package checkout

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// CartLine est une demande d'achat (produit, quantité) telle que reçue.
type CartLine struct {
	ProductID    string `json:"productId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	SelectedSize string `json:"selectedSize"`
}

// CalculatedItem est le snapshot validé d'une ligne, prêt à devenir un
// order item. Les champs produit sont figés au moment du calcul.
type CalculatedItem struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	Title     string `json:"title"`
	Brand     string `json:"brand"`
	Size      string `json:"size"`
	Condition string `json:"condition"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`

	ItemPricing

	// SellerRevenue = totalPrice - itemServiceFee. Le transport et les
	// taxes restent à la plateforme.
	SellerRevenue int64 `json:"seller_revenue"`

	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CalculationResult agrège les lignes calculées. Seuls les articles
// disponibles entrent dans les totaux et les compteurs ; les indisponibles
// sont rapportés mais exclus.
type CalculationResult struct {
	Items             []CalculatedItem `json:"items"`
	Subtotal          int64            `json:"subtotal"`
	TotalShippingCost int64            `json:"total_shipping_cost"`
	TotalServiceFee   int64            `json:"total_service_fee"`
	TotalTaxes        int64            `json:"total_taxes"`
	TotalAmount       int64            `json:"total_amount"`
	ItemCount         int              `json:"item_count"`
	SellerCount       int              `json:"seller_count"`
	UnavailableItems  []string         `json:"unavailable_items"`
	Errors            []string         `json:"errors"`
}

// ProductLookup résout un product ID vers son snapshot. Le second retour
// est faux quand le produit n'existe pas.
type ProductLookup func(productID string) (ProductSnapshot, bool)

// Calculate transforme les lignes du panier en résultat de calcul complet.
// Fonction pure sur (buyerID, lines, lookup) — aucune écriture.
func Calculate(buyerID string, lines []CartLine, lookup ProductLookup) CalculationResult {
	result := CalculationResult{
		Items:            []CalculatedItem{},
		UnavailableItems: []string{},
		Errors:           []string{},
	}
	sellers := map[string]bool{}

	for _, line := range lines {
		product, found := lookup(line.ProductID)
		if !found {
			result.UnavailableItems = append(result.UnavailableItems, line.ProductID)
			result.Errors = append(result.Errors, fmt.Sprintf("Product %s not found", line.ProductID))
			continue
		}

		available, reason := CheckAvailability(product, line.Quantity, buyerID)
		pricing := CalculateItemPricing(product.UnitPrice, line.Quantity, product.DomesticShipping)

		size := product.Size
		if line.SelectedSize != "" {
			size = line.SelectedSize
		}

		item := CalculatedItem{
			ProductID:     product.ID,
			SellerID:      product.SellerID,
			Title:         product.Title,
			Brand:         product.Brand,
			Size:          size,
			Condition:     product.Condition,
			Quantity:      line.Quantity,
			UnitPrice:     product.UnitPrice,
			ItemPricing:   pricing,
			SellerRevenue: pricing.TotalPrice - pricing.ItemServiceFee,
			Available:     available,
			Reason:        reason,
		}
		result.Items = append(result.Items, item)

		if !available {
			result.UnavailableItems = append(result.UnavailableItems, product.ID)
			continue
		}

		result.Subtotal += pricing.TotalPrice
		result.TotalShippingCost += pricing.ShippingCost
		result.TotalServiceFee += pricing.ItemServiceFee
		result.TotalTaxes += pricing.ItemTaxes
		result.ItemCount += line.Quantity
		sellers[product.SellerID] = true
	}

	result.SellerCount = len(sellers)
	result.TotalAmount = result.Subtotal + result.TotalShippingCost + result.TotalServiceFee + result.TotalTaxes
	return result
}

// SellerPayout est le règlement par vendeur embarqué dans la commande.
type SellerPayout struct {
	SellerID        string     `json:"seller_id"`
	ItemCount       int        `json:"item_count"`
	Revenue         int64      `json:"revenue"`
	ServiceFee      int64      `json:"service_fee"`
	Paid            bool       `json:"paid"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// BuildSellerPayouts regroupe les articles disponibles par vendeur, dans
// l'ordre de première apparition.
func BuildSellerPayouts(items []CalculatedItem) []SellerPayout {
	var order []string
	bySeller := map[string]*SellerPayout{}

	for _, item := range items {
		if !item.Available {
			continue
		}
		payout, exists := bySeller[item.SellerID]
		if !exists {
			payout = &SellerPayout{SellerID: item.SellerID}
			bySeller[item.SellerID] = payout
			order = append(order, item.SellerID)
		}
		payout.ItemCount += item.Quantity
		payout.Revenue += item.TotalPrice - item.ItemServiceFee
		payout.ServiceFee += item.ItemServiceFee
	}

	payouts := make([]SellerPayout, 0, len(order))
	for _, sellerID := range order {
		payouts = append(payouts, *bySeller[sellerID])
	}
	return payouts
}

// NewOrderNumber génère un numéro de commande lisible : préfixe, timestamp
// milliseconde et composant aléatoire. L'unicité réelle est garantie par la
// contrainte de stockage, pas par ce générateur.
func NewOrderNumber() string {
	return fmt.Sprintf("KSW-%d-%04d", time.Now().UnixMilli(), rand.IntN(10000))
}
