package models

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
)

// Coupon est un code de réduction, adressé par son code (toujours stocké en
// majuscules). Montants en NGN entiers ; Value porte un pourcentage (1-100)
// ou un montant fixe selon Type.
type Coupon struct {
	Code           string     `json:"code" db:"code"`
	ID             gocql.UUID `json:"id" db:"coupon_id"`
	Type           string     `json:"type" db:"type"` // percentage, fixed, free_shipping
	Value          int64      `json:"value" db:"value"`
	MinAmount      int64      `json:"min_amount" db:"min_amount"`
	MaxAmount      int64      `json:"max_amount,omitempty" db:"max_amount"` // 0 = pas de plafond
	MaxUses        int        `json:"max_uses" db:"max_uses"`               // 0 = illimité
	UsedCount      int        `json:"used_count" db:"used_count"`
	MaxUsesPerUser int        `json:"max_uses_per_user" db:"max_uses_per_user"`
	StartsAt       time.Time  `json:"starts_at" db:"starts_at"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Refusal retourne le motif affichable d'inutilisabilité du coupon pour ce
// panier, chaîne vide s'il est applicable.
func (cp Coupon) Refusal(now time.Time, cartTotal int64) string {
	if !cp.IsActive {
		return "This coupon is no longer active"
	}
	if now.Before(cp.StartsAt) {
		return "This coupon is not valid yet"
	}
	if now.After(cp.ExpiresAt) {
		return "This coupon has expired"
	}
	if cp.MaxUses > 0 && cp.UsedCount >= cp.MaxUses {
		return "This coupon has reached its usage limit"
	}
	if cartTotal < cp.MinAmount {
		return fmt.Sprintf("A minimum order of %d NGN is required for this coupon", cp.MinAmount)
	}
	return ""
}

// Terms projette le coupon vers ses termes de calcul de remise.
func (cp Coupon) Terms() checkout.CouponTerms {
	return checkout.CouponTerms{Type: cp.Type, Value: cp.Value, MaxAmount: cp.MaxAmount}
}
