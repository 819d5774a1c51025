package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
)

//
// --- REFRESH TOKENS ---
// Un seul refresh token actif par utilisateur. La rotation remplace la clé,
// le logout la supprime.
//

func StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return database.Redis.Set(ctx, "refresh:"+userID, token, ttl).Err()
}

// ValidateRefreshToken vérifie que le token présenté est bien celui stocké.
func ValidateRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	stored, err := database.Redis.Get(ctx, "refresh:"+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

func DeleteRefreshToken(ctx context.Context, userID string) error {
	return database.Redis.Del(ctx, "refresh:"+userID).Err()
}

//
// --- CACHE PRODUITS ---
// Évite un aller-retour ScyllaDB sur les fiches produit les plus consultées.
//

func GetCachedProduct(ctx context.Context, productID string) (*models.Product, bool) {
	data, err := database.Redis.Get(ctx, "product:"+productID).Result()
	if err != nil {
		return nil, false
	}

	var p models.Product
	if json.Unmarshal([]byte(data), &p) != nil {
		return nil, false
	}
	return &p, true
}

func CacheProduct(ctx context.Context, p models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "product:"+p.ID.String(), data, ProductCacheTTL)
}

func InvalidateProduct(ctx context.Context, productID string) {
	database.Redis.Del(ctx, "product:"+productID)
}
