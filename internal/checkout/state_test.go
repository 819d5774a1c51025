package checkout

import "testing"

var allStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded,
}

var legalPairs = map[[2]OrderStatus]bool{
	{StatusPending, StatusConfirmed}:    true,
	{StatusPending, StatusCancelled}:    true,
	{StatusConfirmed, StatusProcessing}: true,
	{StatusConfirmed, StatusCancelled}:  true,
	{StatusProcessing, StatusShipped}:   true,
	{StatusProcessing, StatusCancelled}: true,
	{StatusShipped, StatusDelivered}:    true,
	{StatusDelivered, StatusRefunded}:   true,
}

func TestTransitionClosure(t *testing.T) {
	// Toute paire hors table doit échouer en erreur de validation,
	// même pour un admin.
	admin := Actor{IsAdmin: true}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateTransition(from, to, admin)
			if legalPairs[[2]OrderStatus{from, to}] {
				if err != nil {
					t.Errorf("%s → %s doit être légal, erreur: %v", from, to, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s → %s doit être refusé", from, to)
				continue
			}
			if KindOf(err) != KindValidation {
				t.Errorf("%s → %s : kind %v, attendu Validation", from, to, KindOf(err))
			}
		}
	}
}

func TestTransitionTerminalStates(t *testing.T) {
	for _, from := range []OrderStatus{StatusCancelled, StatusRefunded} {
		for _, to := range allStatuses {
			if err := ValidateTransition(from, to, Actor{IsAdmin: true}); err == nil {
				t.Errorf("état terminal %s : transition vers %s acceptée", from, to)
			}
		}
	}
}

func TestTransitionAuthorization(t *testing.T) {
	cases := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		actor   Actor
		allowed bool
	}{
		{"acheteur annule", StatusPending, StatusCancelled, Actor{IsBuyer: true}, true},
		{"acheteur confirme", StatusPending, StatusConfirmed, Actor{IsBuyer: true}, false},
		{"acheteur expédie", StatusProcessing, StatusShipped, Actor{IsBuyer: true}, false},
		{"vendeur confirme", StatusPending, StatusConfirmed, Actor{IsSeller: true}, true},
		{"vendeur traite", StatusConfirmed, StatusProcessing, Actor{IsSeller: true}, true},
		{"vendeur expédie", StatusProcessing, StatusShipped, Actor{IsSeller: true}, true},
		{"vendeur annule", StatusPending, StatusCancelled, Actor{IsSeller: true}, false},
		{"vendeur livre", StatusShipped, StatusDelivered, Actor{IsSeller: true}, false},
		{"admin livre", StatusShipped, StatusDelivered, Actor{IsAdmin: true}, true},
		{"admin rembourse", StatusDelivered, StatusRefunded, Actor{IsAdmin: true}, true},
		{"tiers quelconque", StatusPending, StatusCancelled, Actor{}, false},
	}

	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to, tc.actor)
		if tc.allowed && err != nil {
			t.Errorf("%s: refusé à tort (%v)", tc.name, err)
		}
		if !tc.allowed {
			if err == nil {
				t.Errorf("%s: autorisé à tort", tc.name)
			} else if KindOf(err) != KindForbidden {
				// L'échec d'autorisation doit être distinct de la
				// transition illégale.
				t.Errorf("%s: kind %v, attendu Forbidden", tc.name, KindOf(err))
			}
		}
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition(StatusPending, OrderStatus("teleported"), Actor{IsAdmin: true})
	if err == nil || KindOf(err) != KindValidation {
		t.Errorf("statut inconnu: erreur %v", err)
	}
}
