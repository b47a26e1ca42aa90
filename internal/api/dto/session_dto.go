package dto

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// SessionResponse is the wire shape of a session.
type SessionResponse struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customer_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
	Active       bool       `json:"active"`
}

// NewSessionResponse maps a domain session.
func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		CustomerID:   s.CustomerID,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
		LastActivity: s.LastActivity,
		Active:       s.Active(),
	}
}

// NewSessionListResponse maps a slice of sessions.
func NewSessionListResponse(sessions []domain.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, NewSessionResponse(&sessions[i]))
	}
	return out
}
