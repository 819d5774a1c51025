package product

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kasuwa_back_end/internal/cache"
	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/services"
	"kasuwa_back_end/internal/utils"
)

const selectProductCQL = `SELECT product_id, seller_id, title, description, brand, size, condition, category, slug,
	price, domestic_shipping, quantity, sold, views, image_urls, tags, is_active, created_at, updated_at
	FROM products WHERE product_id = ?`

//
// 🟢 POST /api/products
//
func CreateProduct(c *gin.Context) {
	sellerID := c.GetString("user_id")

	var req struct {
		Title            string   `json:"title" binding:"required,min=3"`
		Description      string   `json:"description"`
		Brand            string   `json:"brand"`
		Size             string   `json:"size"`
		Condition        string   `json:"condition" binding:"required,oneof=new like_new good fair"`
		Category         string   `json:"category"`
		Price            int64    `json:"price" binding:"required,min=1"`
		DomesticShipping int64    `json:"domestic_shipping" binding:"min=0"`
		Quantity         int      `json:"quantity" binding:"required,min=1"`
		Tags             []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid product payload"))
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondInternal(c, "Product storage unavailable")
		return
	}

	now := time.Now()
	p := models.Product{
		ID:               gocql.TimeUUID(),
		SellerID:         sellerID,
		Title:            req.Title,
		Description:      req.Description,
		Brand:            req.Brand,
		Size:             req.Size,
		Condition:        req.Condition,
		Category:         req.Category,
		Price:            req.Price,
		DomesticShipping: req.DomesticShipping,
		Quantity:         req.Quantity,
		Tags:             req.Tags,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.Slug = makeSlug(p.Title, p.ID)

	if err := session.Query(`INSERT INTO products (product_id, seller_id, title, description, brand, size, condition, category, slug,
		price, domestic_shipping, quantity, sold, views, image_urls, tags, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SellerID, p.Title, p.Description, p.Brand, p.Size, p.Condition, p.Category, p.Slug,
		p.Price, p.DomesticShipping, p.Quantity, p.Sold, p.Views, p.ImageURLs, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Exec(); err != nil {
		log.Println("❌ Erreur insertion produit:", err)
		utils.RespondInternal(c, "Could not create product")
		return
	}

	go services.IndexProduct(p)
	utils.LogAction(c, utils.ACTION_PRODUCT_CREATE, utils.RESOURCE_PRODUCT, p.ID.String(), nil, gin.H{"title": p.Title})

	log.Println("✅ Produit créé :", p.Title)
	utils.RespondOK(c, http.StatusCreated, "Product created", gin.H{"product": p})
}

//
// 🟢 GET /api/products/:id
//
func GetProduct(c *gin.Context) {
	productID := c.Param("id")

	if cached, ok := cache.GetCachedProduct(c.Request.Context(), productID); ok {
		go bumpViews(productID)
		utils.RespondOK(c, http.StatusOK, "Product", gin.H{"product": cached})
		return
	}

	p, err := fetchProduct(productID)
	if err == gocql.ErrNotFound {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Product not found"))
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture produit:", err)
		utils.RespondInternal(c, "Could not load product")
		return
	}

	cache.CacheProduct(c.Request.Context(), *p)
	go bumpViews(productID)

	utils.RespondOK(c, http.StatusOK, "Product", gin.H{"product": p})
}

//
// 🟢 GET /api/products  (listing récent, pagination par limit)
//
func ListProducts(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondInternal(c, "Product storage unavailable")
		return
	}

	limit := 50
	iter := session.Query(`SELECT product_id, seller_id, title, description, brand, size, condition, category, slug,
		price, domestic_shipping, quantity, sold, views, image_urls, tags, is_active, created_at, updated_at
		FROM products LIMIT ?`, limit).Iter()

	products := scanProducts(iter)
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur listing produits:", err)
		utils.RespondInternal(c, "Could not list products")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Products", gin.H{"products": products, "count": len(products)})
}

//
// 🟢 GET /api/seller/products  (produits du vendeur connecté)
//
func ListMyProducts(c *gin.Context) {
	sellerID := c.GetString("user_id")

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondInternal(c, "Product storage unavailable")
		return
	}

	iter := session.Query(`SELECT product_id, seller_id, title, description, brand, size, condition, category, slug,
		price, domestic_shipping, quantity, sold, views, image_urls, tags, is_active, created_at, updated_at
		FROM products WHERE seller_id = ? ALLOW FILTERING`, sellerID).Iter()

	products := scanProducts(iter)
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur listing produits vendeur:", err)
		utils.RespondInternal(c, "Could not list products")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Products", gin.H{"products": products, "count": len(products)})
}

//
// 🟢 PUT /api/products/:id
//
func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	p, err := requireOwnedProduct(c, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Title            *string  `json:"title"`
		Description      *string  `json:"description"`
		Brand            *string  `json:"brand"`
		Size             *string  `json:"size"`
		Condition        *string  `json:"condition"`
		Category         *string  `json:"category"`
		Price            *int64   `json:"price"`
		DomesticShipping *int64   `json:"domestic_shipping"`
		Quantity         *int     `json:"quantity"`
		Tags             []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid product payload"))
		return
	}

	old := *p
	applyIfSet := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyIfSet(&p.Title, req.Title)
	applyIfSet(&p.Description, req.Description)
	applyIfSet(&p.Brand, req.Brand)
	applyIfSet(&p.Size, req.Size)
	applyIfSet(&p.Condition, req.Condition)
	applyIfSet(&p.Category, req.Category)
	if req.Price != nil {
		if *req.Price < 1 {
			utils.RespondError(c, checkout.E(checkout.KindValidation, "price must be at least 1"))
			return
		}
		p.Price = *req.Price
	}
	if req.DomesticShipping != nil {
		if *req.DomesticShipping < 0 {
			utils.RespondError(c, checkout.E(checkout.KindValidation, "domestic_shipping cannot be negative"))
			return
		}
		p.DomesticShipping = *req.DomesticShipping
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			utils.RespondError(c, checkout.E(checkout.KindValidation, "quantity cannot be negative"))
			return
		}
		p.Quantity = *req.Quantity
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	p.UpdatedAt = time.Now()

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondInternal(c, "Product storage unavailable")
		return
	}

	if err := session.Query(`UPDATE products SET title = ?, description = ?, brand = ?, size = ?, condition = ?, category = ?,
		price = ?, domestic_shipping = ?, quantity = ?, tags = ?, updated_at = ? WHERE product_id = ?`,
		p.Title, p.Description, p.Brand, p.Size, p.Condition, p.Category,
		p.Price, p.DomesticShipping, p.Quantity, p.Tags, p.UpdatedAt, p.ID,
	).Exec(); err != nil {
		log.Println("❌ Erreur mise à jour produit:", err)
		utils.RespondInternal(c, "Could not update product")
		return
	}

	cache.InvalidateProduct(c.Request.Context(), productID)
	go services.IndexProduct(*p)
	utils.LogAction(c, utils.ACTION_PRODUCT_UPDATE, utils.RESOURCE_PRODUCT, productID, old, p)

	utils.RespondOK(c, http.StatusOK, "Product updated", gin.H{"product": p})
}

//
// 🟢 DELETE /api/products/:id  (désactivation, pas de suppression physique)
//
func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	p, err := requireOwnedProduct(c, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondInternal(c, "Product storage unavailable")
		return
	}

	if err := session.Query(`UPDATE products SET is_active = ?, updated_at = ? WHERE product_id = ?`,
		false, time.Now(), p.ID).Exec(); err != nil {
		log.Println("❌ Erreur désactivation produit:", err)
		utils.RespondInternal(c, "Could not delete product")
		return
	}

	cache.InvalidateProduct(c.Request.Context(), productID)
	go services.RemoveProductFromIndex(productID)
	utils.LogAction(c, utils.ACTION_PRODUCT_DELETE, utils.RESOURCE_PRODUCT, productID, gin.H{"title": p.Title}, nil)

	utils.RespondOK(c, http.StatusOK, "Product deleted", nil)
}

//
// --- Helpers ---
//

func fetchProduct(productID string) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := session.Query(selectProductCQL, productID).Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Brand, &p.Size, &p.Condition, &p.Category, &p.Slug,
		&p.Price, &p.DomesticShipping, &p.Quantity, &p.Sold, &p.Views, &p.ImageURLs, &p.Tags, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// requireOwnedProduct charge le produit et vérifie que l'appelant est le
// vendeur ou un admin.
func requireOwnedProduct(c *gin.Context, productID string) (*models.Product, error) {
	p, err := fetchProduct(productID)
	if err == gocql.ErrNotFound {
		return nil, checkout.E(checkout.KindNotFound, "Product not found")
	}
	if err != nil {
		log.Println("❌ Erreur lecture produit:", err)
		return nil, checkout.E(checkout.KindUpstream, "Could not load product")
	}

	if p.SellerID != c.GetString("user_id") && c.GetString("role") != "admin" {
		return nil, checkout.E(checkout.KindForbidden, "You do not own this product")
	}
	return p, nil
}

func scanProducts(iter *gocql.Iter) []models.Product {
	products := []models.Product{}
	var p models.Product
	for iter.Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Brand, &p.Size, &p.Condition, &p.Category, &p.Slug,
		&p.Price, &p.DomesticShipping, &p.Quantity, &p.Sold, &p.Views, &p.ImageURLs, &p.Tags, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	) {
		if p.IsActive {
			products = append(products, p)
		}
		p = models.Product{}
	}
	return products
}

// bumpViews incrémente le compteur de vues, en best-effort : la table
// product_views est une table counter séparée, jamais sur le chemin de la
// requête.
func bumpViews(productID string) {
	session, err := database.GetProductsSession()
	if err != nil {
		return
	}
	if err := session.Query(`UPDATE product_views SET views = views + 1 WHERE product_id = ?`, productID).Exec(); err != nil {
		log.Println("⚠️ Erreur compteur de vues:", err)
	}
}

// makeSlug : titre normalisé + suffixe court de l'UUID pour l'unicité.
func makeSlug(title string, id gocql.UUID) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	s = strings.Trim(strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '-' }), "-"), "-")
	short := strings.Split(id.String(), "-")[0]
	return fmt.Sprintf("%s-%s", s, short)
}
