package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/models"
)

// SendEmail envoie un e-mail HTML, avec pièce jointe PDF optionnelle.
// Les échecs sont de la responsabilité de l'appelant : les envois de
// confirmation se font en goroutine, loggés et jamais remontés au client.
func SendEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(config.Get("EMAIL_FROM", "noreply@kasuwa.ng")); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_kasuwa.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(config.Get("SMTP_HOST", "smtp.kasuwa.ng"),
		mail.WithPort(config.GetInt("SMTP_PORT", 587)),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande.
func GenerateOrderConfirmationHTML(order models.Order, items []models.OrderItem) string {
	itemsHTML := ""
	for _, item := range items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">₦%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">₦%d</td>
			</tr>`, item.Title, item.Quantity, item.UnitPrice, item.ItemTotal)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Your order is confirmed</h2>
		<p>Hello,</p>
		<p>Thank you for shopping on Kasuwa. Your order <strong>%s</strong> has been confirmed.</p>

		<h3>Order details</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Item</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Qty</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Unit price</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">₦%d</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Best regards,<br>
			<strong>The Kasuwa team</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, itemsHTML, order.TotalAmount)
}
