package product

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/services"
	"kasuwa_back_end/internal/utils"
)

//
// 🔎 GET /api/products/search?q=...&category=...&brand=...&min_price=...&max_price=...
//
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" && c.Query("category") == "" && c.Query("brand") == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Provide a search query or at least one filter"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	filters := services.SearchFilters{
		Query:     query,
		Category:  c.Query("category"),
		Brand:     c.Query("brand"),
		Condition: c.Query("condition"),
		MinPrice:  services.ParsePriceFilter(c.Query("min_price")),
		MaxPrice:  services.ParsePriceFilter(c.Query("max_price")),
		Size:      size,
		From:      (page - 1) * size,
	}

	results, total, err := services.SearchProducts(filters)
	if err != nil {
		log.Println("❌ Erreur recherche Elastic:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Search is temporarily unavailable"))
		return
	}

	utils.RespondOK(c, http.StatusOK, "Search results", gin.H{
		"results": results,
		"total":   total,
		"page":    page,
	})
}
