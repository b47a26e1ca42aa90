package domain

import "time"

// Manager links an identity to the product category it oversees.
type Manager struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
}
