package checkout

// Statuts de commande. Le cycle nominal est pending → confirmed →
// processing → shipped → delivered → refunded ; cancelled est accessible
// tant que la commande n'est pas expédiée.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// Statuts de paiement.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// transitions est la table des transitions légales. cancelled et refunded
// sont terminaux.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// IsValidStatus indique si la valeur est un statut connu.
func IsValidStatus(s OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition indique si from → to figure dans la table.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Actor décrit la relation de l'appelant à la commande.
type Actor struct {
	IsAdmin  bool
	IsBuyer  bool // propriétaire de la commande
	IsSeller bool // vendeur d'au moins un article de la commande
}

// ValidateTransition vérifie la légalité de la transition puis
// l'autorisation de l'acteur. L'échec d'autorisation est un Forbidden,
// distinct de la transition illégale (Validation).
func ValidateTransition(from, to OrderStatus, actor Actor) error {
	if !IsValidStatus(to) {
		return Ef(KindValidation, "Unknown order status: %s", to)
	}
	if !CanTransition(from, to) {
		return Ef(KindValidation, "Cannot transition order from %s to %s", from, to)
	}
	if actor.IsAdmin {
		return nil
	}
	switch {
	case actor.IsBuyer && to == StatusCancelled:
		return nil
	case actor.IsSeller && (to == StatusConfirmed || to == StatusProcessing || to == StatusShipped):
		return nil
	}
	return Ef(KindForbidden, "You are not allowed to move this order to %s", to)
}
