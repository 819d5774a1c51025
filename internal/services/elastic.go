package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
)

const productIndex = "products"

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexProduct indexe un produit ScyllaDB dans Elasticsearch.
// Appelé en fire-and-forget après création/mise à jour, l'échec n'est que loggé.
func IndexProduct(p models.Product) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer:", p.Title)
		return
	}

	data, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Title, res.String())
	} else {
		log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Title)
	}
}

// RemoveProductFromIndex retire un produit de l'index (suppression ou désactivation).
func RemoveProductFromIndex(productID string) {
	if database.Elastic == nil {
		return
	}

	req := esapi.DeleteRequest{
		Index:      productIndex,
		DocumentID: productID,
		Refresh:    "true",
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	res.Body.Close()
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

type SearchFilters struct {
	Query     string
	Category  string
	Brand     string
	Condition string
	MinPrice  int64
	MaxPrice  int64
	Size      int
	From      int
}

// SearchProducts recherche des produits par titre, description, marque ou tags,
// avec filtres exacts optionnels et fourchette de prix.
func SearchProducts(f SearchFilters) ([]map[string]interface{}, int64, error) {
	if database.Elastic == nil {
		return nil, 0, errors.New("client Elasticsearch non initialisé")
	}

	must := []map[string]interface{}{}
	if f.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Query,
				"fields": []string{"title^3", "description", "brand^2", "tags"},
			},
		})
	}

	filter := []map[string]interface{}{}
	for field, value := range map[string]string{
		"category":  f.Category,
		"brand":     f.Brand,
		"condition": f.Condition,
	} {
		if value != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		priceRange := map[string]interface{}{}
		if f.MinPrice > 0 {
			priceRange["gte"] = f.MinPrice
		}
		if f.MaxPrice > 0 {
			priceRange["lte"] = f.MaxPrice
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}
	// On ne renvoie jamais les produits vendus ou désactivés
	filter = append(filter, map[string]interface{}{
		"term": map[string]interface{}{"sold": false},
	})

	size := f.Size
	if size <= 0 || size > 100 {
		size = 20
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"size": size,
		"from": f.From,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, 0, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{productIndex},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, 0, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch erreur: %+v", e)
		return nil, 0, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("erreur décodage réponse: %v", err)
	}

	results := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		results = append(results, h.Source)
	}
	return results, r.Hits.Total.Value, nil
}

// ParsePriceFilter convertit un paramètre de requête en montant NGN entier.
func ParsePriceFilter(raw string) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
