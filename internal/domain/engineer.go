package domain

import "time"

// MaxEngineerLevel caps the escalation ladder.
const MaxEngineerLevel = 3

// Engineer tracks a support engineer's routing category, seniority level and
// ticket-handling capacity. Invariant: 0 <= CurrentTickets <= MaxTickets.
type Engineer struct {
	ID             string
	UserID         string
	Name           string
	Email          string
	Category       Category
	Level          int
	CurrentTickets int
	MaxTickets     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Available reports whether the engineer has a free slot.
func (e *Engineer) Available() bool {
	return e.CurrentTickets < e.MaxTickets
}
