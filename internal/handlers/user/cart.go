package user

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers/order"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

// Le panier vit dans Redis, une clé JSON par utilisateur. Il expire tout
// seul : un panier dormant n'est pas une donnée à conserver.
const cartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string { return "cart:" + userID }

func loadCart(c *gin.Context, userID string) []models.CartItem {
	data, err := database.Redis.Get(c.Request.Context(), cartKey(userID)).Result()
	if err != nil || data == "" {
		return []models.CartItem{}
	}

	var items []models.CartItem
	if json.Unmarshal([]byte(data), &items) != nil {
		return []models.CartItem{}
	}
	return items
}

func saveCart(c *gin.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return database.Redis.Set(c.Request.Context(), cartKey(userID), data, cartTTL).Err()
}

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
	items := loadCart(c, c.GetString("user_id"))
	utils.RespondOK(c, http.StatusOK, "Cart", gin.H{"items": items, "count": len(items)})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID    string `json:"productId" binding:"required"`
		Quantity     int    `json:"quantity" binding:"required,min=1"`
		SelectedSize string `json:"selectedSize"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "productId and quantity are required"))
		return
	}

	// Le snapshot sert à la fois de contrôle d'existence et d'enrichissement
	snapshot, ok := order.LookupSnapshot(input.ProductID)
	if !ok {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Product not found"))
		return
	}
	if available, reason := checkout.CheckAvailability(snapshot, input.Quantity, userID); !available {
		utils.RespondError(c, checkout.E(checkout.KindValidation, reason))
		return
	}

	items := loadCart(c, userID)
	merged := false
	for i := range items {
		if items[i].ProductID == input.ProductID && items[i].SelectedSize == input.SelectedSize {
			items[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{
			ProductID:    input.ProductID,
			Title:        snapshot.Title,
			Quantity:     input.Quantity,
			SelectedSize: input.SelectedSize,
			Price:        snapshot.UnitPrice,
		})
	}

	if err := saveCart(c, userID, items); err != nil {
		log.Println("❌ Erreur sauvegarde panier:", err)
		utils.RespondInternal(c, "Could not save cart")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Added to cart", gin.H{"items": items, "count": len(items)})
}

//
// 🟢 PUT /api/cart/update
//
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "productId is required"))
		return
	}

	items := loadCart(c, userID)
	updated := items[:0]
	found := false
	for _, item := range items {
		if item.ProductID == input.ProductID {
			found = true
			if input.Quantity == 0 {
				continue // quantité zéro = retrait
			}
			item.Quantity = input.Quantity
		}
		updated = append(updated, item)
	}
	if !found {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Product not in cart"))
		return
	}

	if err := saveCart(c, userID, updated); err != nil {
		log.Println("❌ Erreur sauvegarde panier:", err)
		utils.RespondInternal(c, "Could not save cart")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Cart updated", gin.H{"items": updated, "count": len(updated)})
}

//
// 🟢 DELETE /api/cart/remove/:productId
//
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	items := loadCart(c, userID)
	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if err := saveCart(c, userID, kept); err != nil {
		log.Println("❌ Erreur sauvegarde panier:", err)
		utils.RespondInternal(c, "Could not save cart")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Removed from cart", gin.H{"items": kept, "count": len(kept)})
}

//
// 🟢 DELETE /api/cart
//
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := database.Redis.Del(c.Request.Context(), cartKey(userID)).Err(); err != nil {
		log.Println("❌ Erreur vidage panier:", err)
		utils.RespondInternal(c, "Could not clear cart")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Cart cleared", gin.H{"items": []models.CartItem{}})
}
