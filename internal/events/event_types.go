package events

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventTicketAutoClosed    EventType = "ticket_auto_closed"
)

// Actor encapsulates actor metadata for an event. UserID is nil for
// system-initiated events such as the auto-close sweep.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID *string     `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID string          `json:"customer_id"`
	EngineerID string          `json:"engineer_id"`
	Category   domain.Category `json:"category"`
	Urgency    domain.Urgency  `json:"urgency"`
	Title      string          `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	EngineerID         string  `json:"engineer_id"`
	PreviousEngineerID *string `json:"previous_engineer_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketEscalatedPayload payload. EngineerID is nil when no higher-level
// engineer had capacity and the ticket is waiting in the escalated state.
type TicketEscalatedPayload struct {
	FromLevel  int     `json:"from_level"`
	ToLevel    int     `json:"to_level"`
	EngineerID *string `json:"engineer_id,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string             `json:"message_id"`
	AuthorRole  domain.MessageRole `json:"author_role"`
	BodyPreview string             `json:"body_preview"`
}

// TicketAutoClosedPayload payload.
type TicketAutoClosedPayload struct {
	IdleSince time.Time `json:"idle_since"`
}
