package domain

import "time"

// Session is the originating conversation a ticket is created from.
type Session struct {
	ID           string
	CustomerID   string
	StartedAt    time.Time
	EndedAt      *time.Time
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the session has not been ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}
