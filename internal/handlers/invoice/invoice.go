package invoice

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

// loadInvoiceOrder charge la commande et vérifie que l'appelant peut en
// demander la facture. Une facture n'existe qu'après paiement.
func loadInvoiceOrder(c *gin.Context) (*models.Order, error) {
	o, err := order.LoadOrder(c.Param("id"))
	if err == gocql.ErrNotFound {
		return nil, checkout.E(checkout.KindNotFound, "Order not found")
	}
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		return nil, checkout.E(checkout.KindUpstream, "Could not load order")
	}

	if o.BuyerID != c.GetString("user_id") && c.GetString("role") != "admin" {
		return nil, checkout.E(checkout.KindForbidden, "You cannot access this invoice")
	}
	if o.PaymentStatus != checkout.PaymentCompleted && o.PaymentStatus != checkout.PaymentRefunded {
		return nil, checkout.E(checkout.KindConflict, "No invoice for an unpaid order")
	}
	return o, nil
}

//
// 📄 GET /api/invoice/:id
// Télécharge la facture PDF (rendu Chrome headless + QR de reçu).
//
func DownloadInvoice(c *gin.Context) {
	o, err := loadInvoiceOrder(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	pdf, err := utils.GenerateInvoicePDF(*o)
	if err != nil {
		log.Println("❌ Erreur génération PDF:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not render invoice"))
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", o.OrderNumber)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

//
// 📧 POST /api/invoice/:id/send
// Envoie la facture PDF à l'acheteur par email.
//
func SendInvoice(c *gin.Context) {
	o, err := loadInvoiceOrder(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	items, err := order.LoadOrderItems(o.ID.String())
	if err != nil {
		utils.RespondInternal(c, "Could not load order items")
		return
	}

	email := c.GetString("email")
	if email == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "No email on this account"))
		return
	}

	pdf, err := utils.GenerateInvoicePDF(*o)
	if err != nil {
		log.Println("❌ Erreur génération PDF:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not render invoice"))
		return
	}

	subject := "Invoice for order " + o.OrderNumber
	html := utils.GenerateOrderConfirmationHTML(*o, items)
	if err := utils.SendEmail(email, subject, html, pdf); err != nil {
		log.Println("❌ Erreur envoi facture:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not send invoice email"))
		return
	}

	log.Printf("📧 Facture %s envoyée à %s", o.OrderNumber, email)
	utils.RespondOK(c, http.StatusOK, "Invoice sent", gin.H{"order_number": o.OrderNumber, "email": email})
}
