package checkout

// OrderItemState est la vue minimale d'un order item nécessaire pour
// planifier les effets d'inventaire.
type OrderItemState struct {
	ItemID           string
	ProductID        string
	Quantity         int
	InventoryApplied bool
}

// StockOp est une opération d'inventaire à exécuter : Delta négatif pour
// une consommation (confirmation), positif pour une restitution
// (annulation). Apply indique la nouvelle valeur du marqueur
// inventory_applied de l'item.
type StockOp struct {
	ItemID    string
	ProductID string
	Delta     int
	Apply     bool
}

// ConfirmationPlan calcule les décréments de stock pour une confirmation de
// paiement. Les items déjà appliqués sont ignorés : rejouer la confirmation
// (retry webhook, verify concurrent) converge au lieu de décrémenter deux
// fois.
func ConfirmationPlan(items []OrderItemState) []StockOp {
	var ops []StockOp
	for _, item := range items {
		if item.InventoryApplied {
			continue
		}
		ops = append(ops, StockOp{
			ItemID:    item.ItemID,
			ProductID: item.ProductID,
			Delta:     -item.Quantity,
			Apply:     true,
		})
	}
	return ops
}

// CancellationPlan calcule les restitutions de stock pour une annulation.
// Seuls les items dont l'inventaire a réellement été consommé sont
// restitués — annuler une commande jamais payée ne gonfle pas le stock.
func CancellationPlan(items []OrderItemState) []StockOp {
	var ops []StockOp
	for _, item := range items {
		if !item.InventoryApplied {
			continue
		}
		ops = append(ops, StockOp{
			ItemID:    item.ItemID,
			ProductID: item.ProductID,
			Delta:     item.Quantity,
			Apply:     false,
		})
	}
	return ops
}
