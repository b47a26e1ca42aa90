package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	// TicketStatusOpen is transient: creation either assigns an engineer and
	// moves straight to IN_PROGRESS, or fails.
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is known.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the lifecycle.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Urgency is ticket priority derived from the customer's tier at creation.
type Urgency string

const (
	UrgencyNormal   Urgency = "NORMAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// Valid reports whether the urgency is known.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// UrgencyForTier maps a customer tier to ticket urgency.
func UrgencyForTier(tier CustomerTier) Urgency {
	switch tier {
	case TierVIP:
		return UrgencyCritical
	case TierPremium:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}

// Ticket is the aggregate for support requests. EngineerID is non-nil iff the
// ticket currently holds a slot on that engineer (IN_PROGRESS, or ESCALATED
// while waiting for higher-level capacity).
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Urgency     Urgency
	Status      TicketStatus
	CustomerID  string
	EngineerID  *string
	TypeID      string
	SessionID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved, TicketStatusClosed},
	TicketStatusEscalated:  {TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {},
	TicketStatusClosed:     {},
}

// CanTransition reports whether moving from current to next is allowed.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
