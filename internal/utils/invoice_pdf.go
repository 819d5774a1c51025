package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/models"
)

// GeneratePaymentQR encode le lien de reçu/vérification du paiement en QR,
// retourné en base64 prêt pour <img src="...">.
func GeneratePaymentQR(orderNumber, paymentReference string) (string, error) {
	receiptURL := fmt.Sprintf("%s/orders/receipt?number=%s&reference=%s",
		config.FrontendURL(), url.QueryEscape(orderNumber), url.QueryEscape(paymentReference))

	png, err := qrcode.Encode(receiptURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF charge la page facture du front et l'imprime en PDF via
// Chrome headless.
func RenderInvoicePDF(orderID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", orderID)
	q.Set("qr", qrBase64)
	fullURL := fmt.Sprintf("%s/invoice?%s", config.FrontendURL(), q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GenerateInvoicePDF : QR de paiement + rendu PDF de la facture.
func GenerateInvoicePDF(order models.Order) ([]byte, error) {
	qrBase64, err := GeneratePaymentQR(order.OrderNumber, order.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}
	return RenderInvoicePDF(order.ID.String(), qrBase64)
}
