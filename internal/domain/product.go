package domain

import "time"

// Product is a supported product line entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketType classifies tickets (e.g. technical, billing).
type TicketType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
