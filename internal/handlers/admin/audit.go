package admin

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

const auditColumns = `id, user_id, user_email, action, resource, resource_id,
	old_value, new_value, ip_address, user_agent, success,
	error_msg, timestamp, session_id`

// GetAuditLogs liste les logs d'audit avec filtres dynamiques.
func GetAuditLogs(c *gin.Context) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		utils.RespondInternal(c, "Audit storage unavailable")
		return
	}

	userID := c.Query("user_id")
	action := c.Query("action")
	resource := c.Query("resource")
	success := c.Query("success")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	// Requête construite dynamiquement selon les filtres présents
	query := "SELECT " + auditColumns + " FROM audit_logs"
	var conditions []string
	var args []interface{}

	if userID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, userID)
	}
	if action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, action)
	}
	if resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, resource)
	}
	if success != "" {
		successBool, _ := strconv.ParseBool(success)
		conditions = append(conditions, "success = ?")
		args = append(args, successBool)
	}

	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
	}
	query += " LIMIT ? ALLOW FILTERING"
	args = append(args, limit)

	iter := usersSession.Query(query, args...).Iter()

	logs := []models.AuditLog{}
	var entry models.AuditLog
	for iter.Scan(&entry.ID, &entry.UserID, &entry.UserEmail,
		&entry.Action, &entry.Resource, &entry.ResourceID,
		&entry.OldValue, &entry.NewValue, &entry.IPAddress,
		&entry.UserAgent, &entry.Success, &entry.ErrorMsg,
		&entry.Timestamp, &entry.SessionID) {
		logs = append(logs, entry)
		entry = models.AuditLog{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		utils.RespondInternal(c, "Could not read audit logs")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Audit logs", gin.H{
		"logs":  logs,
		"total": len(logs),
		"filters": gin.H{
			"user_id":  userID,
			"action":   action,
			"resource": resource,
			"success":  success,
			"limit":    limit,
		},
	})
}

// GetAuditLogsByResource liste les logs d'une ressource précise.
func GetAuditLogsByResource(c *gin.Context) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		utils.RespondInternal(c, "Audit storage unavailable")
		return
	}

	resource := c.Param("resource")
	resourceID := c.Param("resource_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	iter := usersSession.Query("SELECT "+auditColumns+` FROM audit_logs
		WHERE resource = ? AND resource_id = ? LIMIT ? ALLOW FILTERING`,
		resource, resourceID, limit).Iter()

	logs := []models.AuditLog{}
	var entry models.AuditLog
	for iter.Scan(&entry.ID, &entry.UserID, &entry.UserEmail,
		&entry.Action, &entry.Resource, &entry.ResourceID,
		&entry.OldValue, &entry.NewValue, &entry.IPAddress,
		&entry.UserAgent, &entry.Success, &entry.ErrorMsg,
		&entry.Timestamp, &entry.SessionID) {
		logs = append(logs, entry)
		entry = models.AuditLog{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur logs audit ressource: %v", err)
		utils.RespondInternal(c, "Could not read audit logs")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Audit logs", gin.H{
		"resource":    resource,
		"resource_id": resourceID,
		"logs":        logs,
		"total":       len(logs),
	})
}
