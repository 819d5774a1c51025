package models

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID    string `json:"product_id"`
	Title        string `json:"title,omitempty"`
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selected_size,omitempty"`
	Price        int64  `json:"price,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}
