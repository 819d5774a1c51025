package models

type User struct {
	ID         string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role,omitempty"` // "user" ou "admin"
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"-"`
	Phone      string `json:"phone,omitempty"`
	IsVerified bool   `json:"is_verified"`
}
