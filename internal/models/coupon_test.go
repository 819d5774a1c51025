package models

import (
	"testing"
	"time"
)

func TestCouponRefusal(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	base := Coupon{
		Code:      "BIENVENUE10",
		Type:      "percentage",
		Value:     10,
		StartsAt:  now.Add(-24 * time.Hour),
		ExpiresAt: now.Add(24 * time.Hour),
		IsActive:  true,
	}

	if reason := base.Refusal(now, 50000); reason != "" {
		t.Errorf("coupon valide refusé: %q", reason)
	}

	inactive := base
	inactive.IsActive = false
	if inactive.Refusal(now, 50000) == "" {
		t.Error("coupon inactif accepté")
	}

	early := base
	early.StartsAt = now.Add(time.Hour)
	if early.Refusal(now, 50000) == "" {
		t.Error("coupon pas encore actif accepté")
	}

	expired := base
	expired.ExpiresAt = now.Add(-time.Hour)
	if expired.Refusal(now, 50000) == "" {
		t.Error("coupon expiré accepté")
	}

	exhausted := base
	exhausted.MaxUses = 100
	exhausted.UsedCount = 100
	if exhausted.Refusal(now, 50000) == "" {
		t.Error("coupon épuisé accepté")
	}

	minimum := base
	minimum.MinAmount = 100000
	if minimum.Refusal(now, 50000) == "" {
		t.Error("panier sous le minimum accepté")
	}
	if minimum.Refusal(now, 100000) != "" {
		t.Error("panier au minimum refusé")
	}
}
