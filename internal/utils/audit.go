package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
)

// LogAction enregistre une action dans les logs d'audit. Fire-and-forget :
// une erreur d'audit ne bloque jamais l'opération principale.
func LogAction(c *gin.Context, action, resource string, resourceID string, oldValue, newValue interface{}) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, oldValue, newValue, true, ""); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, nil, nil, false, errorMsg); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

func logActionAsync(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}, success bool, errorMsg string) error {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	userID, _ := c.Get("user_id")
	userEmail, _ := c.Get("email")

	var oldValueStr, newValueStr string
	if oldValue != nil {
		if oldBytes, err := json.Marshal(oldValue); err == nil {
			oldValueStr = string(oldBytes)
		}
	}
	if newValue != nil {
		if newBytes, err := json.Marshal(newValue); err == nil {
			newValueStr = string(newBytes)
		}
	}

	auditLog := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     getStringValue(userID),
		UserEmail:  getStringValue(userEmail),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValueStr,
		NewValue:   newValueStr,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  time.Now(),
		SessionID:  c.GetHeader("X-Session-ID"),
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource, resource_id,
			old_value, new_value, ip_address, user_agent, success,
			error_msg, timestamp, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return usersSession.Query(query,
		auditLog.ID, auditLog.UserID, auditLog.UserEmail, auditLog.Action,
		auditLog.Resource, auditLog.ResourceID, auditLog.OldValue, auditLog.NewValue,
		auditLog.IPAddress, auditLog.UserAgent, auditLog.Success, auditLog.ErrorMsg,
		auditLog.Timestamp, auditLog.SessionID,
	).Exec()
}

func getStringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

// Actions d'audit prédéfinies
const (
	ACTION_PRODUCT_CREATE = "product.create"
	ACTION_PRODUCT_UPDATE = "product.update"
	ACTION_PRODUCT_DELETE = "product.delete"

	ACTION_ORDER_CREATE = "order.create"
	ACTION_ORDER_STATUS = "order.status"
	ACTION_ORDER_CANCEL = "order.cancel"

	ACTION_PAYMENT_INIT    = "payment.initialize"
	ACTION_PAYMENT_VERIFY  = "payment.verify"
	ACTION_PAYMENT_REFUND  = "payment.refund"
	ACTION_PAYOUT_PROCESS  = "payout.process"

	ACTION_COUPON_CREATE = "coupon.create"
	ACTION_COUPON_UPDATE = "coupon.update"
	ACTION_COUPON_DELETE = "coupon.delete"

	ACTION_USER_CREATE = "user.create"
	ACTION_USER_UPDATE = "user.update"

	ACTION_LOGIN_SUCCESS = "auth.login_success"
	ACTION_LOGIN_FAILED  = "auth.login_failed"
	ACTION_LOGOUT        = "auth.logout"
)

// Resources d'audit
const (
	RESOURCE_PRODUCT = "product"
	RESOURCE_ORDER   = "order"
	RESOURCE_COUPON  = "coupon"
	RESOURCE_PAYMENT = "payment"
	RESOURCE_USER    = "user"
	RESOURCE_AUTH    = "auth"
)
