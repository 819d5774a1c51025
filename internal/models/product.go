package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID               gocql.UUID `json:"id" db:"product_id"`
	SellerID         string     `json:"seller_id" db:"seller_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Brand            string     `json:"brand" db:"brand"`
	Size             string     `json:"size" db:"size"`
	Condition        string     `json:"condition" db:"condition"` // "new", "like_new", "good", "fair"
	Category         string     `json:"category" db:"category"`
	Slug             string     `json:"slug" db:"slug"`
	Price            int64      `json:"price" db:"price"` // NGN, unités entières
	DomesticShipping int64      `json:"domestic_shipping" db:"domestic_shipping"`
	Quantity         int        `json:"quantity" db:"quantity"`
	Sold             bool       `json:"sold" db:"sold"`
	Views            int64      `json:"views" db:"views"`
	ImageURLs        []string   `json:"image_urls" db:"image_urls"`
	Tags             []string   `json:"tags" db:"tags"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}
