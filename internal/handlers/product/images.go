package product

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/cache"
	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/services"
	"kasuwa_back_end/internal/utils"
)

const maxImagesPerProduct = 8

//
// 📤 POST /api/products/:id/images  (multipart, champ "image")
//
func UploadImage(c *gin.Context) {
	productID := c.Param("id")

	p, err := requireOwnedProduct(c, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if len(p.ImageURLs) >= maxImagesPerProduct {
		utils.RespondError(c, checkout.Ef(checkout.KindValidation, "A product can have at most %d images", maxImagesPerProduct))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "image file is required"))
		return
	}
	if file.Size > 5<<20 {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "image must be under 5MB"))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "file must be an image"))
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), productID, file)
	if err != nil {
		log.Println("❌ Erreur upload image:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not store image"))
		return
	}

	p.ImageURLs = append(p.ImageURLs, url)
	if err := persistImageURLs(c, productID, p.ImageURLs); err != nil {
		utils.RespondInternal(c, "Could not save image reference")
		return
	}

	go services.IndexProduct(*p)
	utils.RespondOK(c, http.StatusCreated, "Image uploaded", gin.H{"url": url, "image_urls": p.ImageURLs})
}

//
// 🗑️ DELETE /api/products/:id/images  (body: {"url": "..."})
//
func DeleteImage(c *gin.Context) {
	productID := c.Param("id")

	p, err := requireOwnedProduct(c, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "url is required"))
		return
	}

	kept := p.ImageURLs[:0]
	found := false
	for _, u := range p.ImageURLs {
		if u == req.URL {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Image not found on this product"))
		return
	}

	if err := services.DeleteProductImage(c.Request.Context(), req.URL); err != nil {
		log.Println("⚠️ Erreur suppression objet MinIO:", err)
		// la référence est retirée quand même, l'objet orphelin sera nettoyé à part
	}

	p.ImageURLs = kept
	if err := persistImageURLs(c, productID, p.ImageURLs); err != nil {
		utils.RespondInternal(c, "Could not update image references")
		return
	}

	go services.IndexProduct(*p)
	utils.RespondOK(c, http.StatusOK, "Image removed", gin.H{"image_urls": p.ImageURLs})
}

//
// 🔗 GET /api/products/:id/images/signed?url=...  (URL signée temporaire)
//
func SignedImageURL(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "url query parameter is required"))
		return
	}

	signed, err := services.GenerateSignedURL(c.Request.Context(), raw, 15*time.Minute)
	if err != nil {
		log.Println("❌ Erreur URL signée:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not sign URL"))
		return
	}

	utils.RespondOK(c, http.StatusOK, "Signed URL", gin.H{"url": signed})
}

func persistImageURLs(c *gin.Context, productID string, urls []string) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	if err := session.Query(`UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?`,
		urls, time.Now(), productID).Exec(); err != nil {
		log.Println("❌ Erreur persistance image_urls:", err)
		return err
	}
	cache.InvalidateProduct(c.Request.Context(), productID)
	return nil
}
