package dto

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// EngineerCreateRequest payload for provisioning an engineer.
type EngineerCreateRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Category   string `json:"category" validate:"required,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
	Level      int    `json:"level" validate:"required,min=1,max=3"`
	MaxTickets int    `json:"max_tickets" validate:"required,min=1"`
}

// EngineerUpdateRequest payload for directory edits.
type EngineerUpdateRequest struct {
	Category   *string `json:"category" validate:"omitempty,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
	Level      *int    `json:"level" validate:"omitempty,min=1,max=3"`
	MaxTickets *int    `json:"max_tickets" validate:"omitempty,min=1"`
}

// EngineerResponse is the wire shape of an engineer.
type EngineerResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Category       string    `json:"category"`
	Level          int       `json:"level"`
	CurrentTickets int       `json:"current_tickets"`
	MaxTickets     int       `json:"max_tickets"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewEngineerResponse maps a domain engineer.
func NewEngineerResponse(e *domain.Engineer) EngineerResponse {
	return EngineerResponse{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Category:       string(e.Category),
		Level:          e.Level,
		CurrentTickets: e.CurrentTickets,
		MaxTickets:     e.MaxTickets,
		Available:      e.Available(),
		CreatedAt:      e.CreatedAt,
	}
}

// NewEngineerListResponse maps a slice of engineers.
func NewEngineerListResponse(engineers []domain.Engineer) []EngineerResponse {
	out := make([]EngineerResponse, 0, len(engineers))
	for i := range engineers {
		out = append(out, NewEngineerResponse(&engineers[i]))
	}
	return out
}
