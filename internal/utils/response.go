package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
)

// Envelope est la réponse uniforme de l'API.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RespondOK renvoie un succès avec données.
func RespondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// RespondError mappe une erreur métier vers le code HTTP de son kind.
// Les erreurs non typées passent en Validation (400), message conservé.
func RespondError(c *gin.Context, err error) {
	c.JSON(checkout.HTTPStatus(err), Envelope{
		Success:   false,
		Message:   err.Error(),
		Errors:    checkout.FieldsOf(err),
		Timestamp: time.Now().UTC(),
	})
}

// AbortError : RespondError + arrêt de la chaîne middleware.
func AbortError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// RespondInternal masque les erreurs techniques (DB, etc.) derrière un 500
// générique ; le détail part dans les logs, pas chez le client.
func RespondInternal(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
