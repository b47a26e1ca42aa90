package dto

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// ProductRequest payload for product catalog edits.
type ProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Category    string `json:"category" validate:"required,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
	Description string `json:"description" validate:"max=1000"`
}

// TicketTypeRequest payload for ticket type edits.
type TicketTypeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// NewProductListResponse maps a slice of products.
func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// TicketTypeResponse is the wire shape of a ticket type.
type TicketTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTicketTypeResponse maps a domain ticket type.
func NewTicketTypeResponse(t *domain.TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// NewTicketTypeListResponse maps a slice of ticket types.
func NewTicketTypeListResponse(types []domain.TicketType) []TicketTypeResponse {
	out := make([]TicketTypeResponse, 0, len(types))
	for i := range types {
		out = append(out, NewTicketTypeResponse(&types[i]))
	}
	return out
}
