package order

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

const selectCouponCQL = `SELECT code, coupon_id, type, value, min_amount, max_amount, max_uses, used_count,
	max_uses_per_user, starts_at, expires_at, is_active, created_by, created_at, updated_at
	FROM coupons WHERE code = ?`

func lookupCoupon(code string) (*models.Coupon, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var cp models.Coupon
	if err := session.Query(selectCouponCQL, strings.ToUpper(code)).Scan(
		&cp.Code, &cp.ID, &cp.Type, &cp.Value, &cp.MinAmount, &cp.MaxAmount, &cp.MaxUses, &cp.UsedCount,
		&cp.MaxUsesPerUser, &cp.StartsAt, &cp.ExpiresAt, &cp.IsActive, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cp, nil
}

// ResolveCoupon valide un code pour un panier donné et calcule la remise.
// Code vide : aucune remise, aucune erreur. Code inutilisable : erreur de
// validation avec le motif affichable.
func ResolveCoupon(code, buyerID string, cartTotal, shippingTotal int64) (*models.Coupon, int64, error) {
	if code == "" {
		return nil, 0, nil
	}

	cp, err := lookupCoupon(code)
	if err == gocql.ErrNotFound {
		return nil, 0, checkout.E(checkout.KindValidation, "Unknown coupon code")
	}
	if err != nil {
		log.Println("❌ Erreur lecture coupon:", err)
		return nil, 0, checkout.E(checkout.KindUpstream, "Could not check coupon code")
	}

	if reason := cp.Refusal(time.Now(), cartTotal); reason != "" {
		return nil, 0, checkout.E(checkout.KindValidation, reason)
	}

	if cp.MaxUsesPerUser > 0 {
		session, err := database.GetOrdersSession()
		if err != nil {
			return nil, 0, checkout.E(checkout.KindUpstream, "Could not check coupon code")
		}
		var used int
		if err := session.Query(`SELECT COUNT(*) FROM coupon_usage WHERE coupon_code = ? AND user_id = ?`,
			cp.Code, buyerID).Scan(&used); err == nil && used >= cp.MaxUsesPerUser {
			return nil, 0, checkout.E(checkout.KindValidation, "You have already used this coupon the maximum number of times")
		}
	}

	return cp, checkout.CouponDiscount(cp.Terms(), cartTotal, shippingTotal), nil
}

// RecordCouponUsage trace l'utilisation une fois la commande insérée.
// Best-effort : la commande est déjà écrite, elle n'est pas remise en cause.
func RecordCouponUsage(cp *models.Coupon, userID string, orderID gocql.UUID) {
	if cp == nil {
		return
	}
	session, err := database.GetOrdersSession()
	if err != nil {
		return
	}

	if err := session.Query(`INSERT INTO coupon_usage (coupon_code, user_id, order_id, used_at) VALUES (?, ?, ?, ?)`,
		cp.Code, userID, orderID, time.Now()).Exec(); err != nil {
		log.Println("⚠️ Erreur trace utilisation coupon:", err)
		return
	}
	if err := session.Query(`UPDATE coupons SET used_count = ?, updated_at = ? WHERE code = ?`,
		cp.UsedCount+1, time.Now(), cp.Code).Exec(); err != nil {
		log.Println("⚠️ Erreur compteur utilisation coupon:", err)
	}
}

//
// 🎟️ GET /api/coupons/validate?code=...&cart_total=...
// Aperçu côté panier : le front affiche la remise avant la commande.
//
func ValidateCoupon(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "code is required"))
		return
	}
	cartTotal, err := strconv.ParseInt(c.Query("cart_total"), 10, 64)
	if err != nil || cartTotal < 0 {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "cart_total must be a positive amount"))
		return
	}

	cp, discount, err := ResolveCoupon(code, c.GetString("user_id"), cartTotal, 0)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, "Coupon is valid", gin.H{
		"code":     cp.Code,
		"type":     cp.Type,
		"discount": discount,
	})
}

//
// 🎟️ POST /api/admin/coupons  (admin)
//
func CreateCoupon(c *gin.Context) {
	var req struct {
		Code           string    `json:"code" binding:"required"`
		Type           string    `json:"type" binding:"required,oneof=percentage fixed free_shipping"`
		Value          int64     `json:"value"`
		MinAmount      int64     `json:"min_amount"`
		MaxAmount      int64     `json:"max_amount"`
		MaxUses        int       `json:"max_uses"`
		MaxUsesPerUser int       `json:"max_uses_per_user"`
		StartsAt       time.Time `json:"starts_at"`
		ExpiresAt      time.Time `json:"expires_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid coupon payload"))
		return
	}

	if req.Type == checkout.CouponPercentage && (req.Value <= 0 || req.Value > 100) {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "A percentage coupon requires a value between 1 and 100"))
		return
	}
	if req.Type == checkout.CouponFixed && req.Value <= 0 {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "A fixed coupon requires a positive amount"))
		return
	}

	if _, err := lookupCoupon(req.Code); err == nil {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "This coupon code already exists"))
		return
	}

	now := time.Now()
	if req.StartsAt.IsZero() {
		req.StartsAt = now
	}

	cp := models.Coupon{
		Code:           strings.ToUpper(req.Code),
		ID:             gocql.TimeUUID(),
		Type:           req.Type,
		Value:          req.Value,
		MinAmount:      req.MinAmount,
		MaxAmount:      req.MaxAmount,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		StartsAt:       req.StartsAt,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       true,
		CreatedBy:      c.GetString("user_id"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Could not create coupon")
		return
	}
	if err := session.Query(`INSERT INTO coupons (code, coupon_id, type, value, min_amount, max_amount, max_uses, used_count,
		max_uses_per_user, starts_at, expires_at, is_active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.Code, cp.ID, cp.Type, cp.Value, cp.MinAmount, cp.MaxAmount, cp.MaxUses, cp.UsedCount,
		cp.MaxUsesPerUser, cp.StartsAt, cp.ExpiresAt, cp.IsActive, cp.CreatedBy, cp.CreatedAt, cp.UpdatedAt,
	).Exec(); err != nil {
		log.Println("❌ Erreur création coupon:", err)
		utils.RespondInternal(c, "Could not create coupon")
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_CREATE, utils.RESOURCE_COUPON, cp.Code, nil, gin.H{"type": cp.Type, "value": cp.Value})
	log.Printf("✅ Coupon créé : %s (%s)", cp.Code, cp.Type)
	utils.RespondOK(c, http.StatusCreated, "Coupon created", gin.H{"coupon": cp})
}

//
// 🎟️ GET /api/admin/coupons  (admin)
//
func ListCoupons(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Could not list coupons")
		return
	}

	iter := session.Query(`SELECT code, coupon_id, type, value, min_amount, max_amount, max_uses, used_count,
		max_uses_per_user, starts_at, expires_at, is_active, created_by, created_at, updated_at FROM coupons`).Iter()

	coupons := []models.Coupon{}
	var cp models.Coupon
	for iter.Scan(
		&cp.Code, &cp.ID, &cp.Type, &cp.Value, &cp.MinAmount, &cp.MaxAmount, &cp.MaxUses, &cp.UsedCount,
		&cp.MaxUsesPerUser, &cp.StartsAt, &cp.ExpiresAt, &cp.IsActive, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt,
	) {
		coupons = append(coupons, cp)
		cp = models.Coupon{}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture coupons:", err)
		utils.RespondInternal(c, "Could not list coupons")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Coupons retrieved", gin.H{"coupons": coupons, "total": len(coupons)})
}

//
// 🎟️ PATCH /api/admin/coupons/:code  (admin)
//
func UpdateCoupon(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	var req struct {
		IsActive  *bool      `json:"is_active"`
		MaxUses   *int       `json:"max_uses"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid coupon payload"))
		return
	}

	if _, err := lookupCoupon(code); err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Coupon not found"))
		return
	} else if err != nil {
		utils.RespondInternal(c, "Could not load coupon")
		return
	}

	updates := []string{}
	values := []interface{}{}
	if req.IsActive != nil {
		updates = append(updates, "is_active = ?")
		values = append(values, *req.IsActive)
	}
	if req.MaxUses != nil {
		updates = append(updates, "max_uses = ?")
		values = append(values, *req.MaxUses)
	}
	if req.ExpiresAt != nil {
		updates = append(updates, "expires_at = ?")
		values = append(values, *req.ExpiresAt)
	}
	if len(updates) == 0 {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "No updatable field provided"))
		return
	}
	updates = append(updates, "updated_at = ?")
	values = append(values, time.Now(), code)

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Could not update coupon")
		return
	}
	query := fmt.Sprintf("UPDATE coupons SET %s WHERE code = ?", strings.Join(updates, ", "))
	if err := session.Query(query, values...).Exec(); err != nil {
		log.Println("❌ Erreur mise à jour coupon:", err)
		utils.RespondInternal(c, "Could not update coupon")
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_UPDATE, utils.RESOURCE_COUPON, code, nil, nil)
	utils.RespondOK(c, http.StatusOK, "Coupon updated", nil)
}

//
// 🎟️ DELETE /api/admin/coupons/:code  (admin)
//
func DeleteCoupon(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondInternal(c, "Could not delete coupon")
		return
	}
	if err := session.Query(`DELETE FROM coupons WHERE code = ?`, code).Exec(); err != nil {
		log.Println("❌ Erreur suppression coupon:", err)
		utils.RespondInternal(c, "Could not delete coupon")
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_DELETE, utils.RESOURCE_COUPON, code, nil, nil)
	utils.RespondOK(c, http.StatusOK, "Coupon deleted", nil)
}
