package checkout

import "fmt"

// ProductSnapshot est l'état d'un produit au moment du calcul.
// La vérification de disponibilité est purement consultative : rien n'est
// réservé, le stock n'est décrémenté qu'à la confirmation du paiement.
type ProductSnapshot struct {
	ID               string
	SellerID         string
	Title            string
	Brand            string
	Size             string
	Condition        string
	UnitPrice        int64
	DomesticShipping int64
	Quantity         int
	Sold             bool
}

// CheckAvailability applique les règles dans l'ordre : vendu, stock,
// auto-achat. Retourne la raison affichable quand l'article est indisponible.
func CheckAvailability(p ProductSnapshot, requested int, buyerID string) (bool, string) {
	if p.Sold {
		return false, "This product has already been sold"
	}
	if p.Quantity < requested {
		return false, fmt.Sprintf("Only %d unit(s) available, %d requested", p.Quantity, requested)
	}
	if buyerID != "" && buyerID == p.SellerID {
		return false, "You cannot buy your own product"
	}
	return true, ""
}
