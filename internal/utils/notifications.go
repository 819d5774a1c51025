package utils

import (
	"fmt"
	"log"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/models"
)

// NotifyOrderStatus envoie l'e-mail de changement de statut. Best effort :
// l'échec est loggé et avalé, jamais propagé à l'opération principale.
func NotifyOrderStatus(order models.Order, userEmail string, newStatus checkout.OrderStatus) {
	go func() {
		subject := statusEmailSubject(newStatus)
		html := statusEmailHTML(order, newStatus)
		if err := SendEmail(userEmail, subject, html, nil); err != nil {
			log.Printf("❌ Erreur envoi email statut %s pour %s: %v", newStatus, order.OrderNumber, err)
			return
		}
		log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	}()
}

func statusEmailSubject(status checkout.OrderStatus) string {
	switch status {
	case checkout.StatusConfirmed:
		return "✅ Order confirmed - Kasuwa"
	case checkout.StatusShipped:
		return "📦 Your order has shipped - Kasuwa"
	case checkout.StatusDelivered:
		return "🎉 Your order has been delivered - Kasuwa"
	case checkout.StatusCancelled:
		return "❌ Order cancelled - Kasuwa"
	case checkout.StatusRefunded:
		return "💰 Refund processed - Kasuwa"
	default:
		return "📋 Order update - Kasuwa"
	}
}

func statusEmailHTML(order models.Order, status checkout.OrderStatus) string {
	message := map[checkout.OrderStatus]string{
		checkout.StatusConfirmed: "Your payment was received and your order is confirmed.",
		checkout.StatusShipped:   "Your order is on its way.",
		checkout.StatusDelivered: "Your order has been delivered. Enjoy!",
		checkout.StatusCancelled: "Your order has been cancelled.",
		checkout.StatusRefunded:  "Your refund has been processed.",
	}[status]

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Order %s</h2>
		<p>%s</p>
		<p style="color: #555;">Current status: <strong>%s</strong></p>
		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The Kasuwa team</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, message, status)
}
