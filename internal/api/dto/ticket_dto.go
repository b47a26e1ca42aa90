package dto

import (
	"time"

	"github.com/elvificent/supportdesk/internal/domain"
)

// TicketCreateRequest payload for ticket creation. Category may be given
// directly or derived from the product name.
type TicketCreateRequest struct {
	SessionID   string `json:"session_id" validate:"required,uuid4"`
	TypeID      string `json:"type_id" validate:"required,uuid4"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=1"`
	Category    string `json:"category" validate:"omitempty,oneof=MODEL_S MODEL_3 MODEL_X MODEL_Y CYBERTRUCK"`
	Product     string `json:"product" validate:"omitempty,max=120"`
}

// TicketAssignRequest payload for manual assignment.
type TicketAssignRequest struct {
	EngineerID string `json:"engineer_id" validate:"required,uuid4"`
}

// TicketStatusRequest payload for status transitions.
type TicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=IN_PROGRESS ESCALATED RESOLVED CLOSED"`
}

// TicketMessageRequest payload for appending a message.
type TicketMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Urgency     string     `json:"urgency"`
	Status      string     `json:"status"`
	CustomerID  string     `json:"customer_id"`
	EngineerID  *string    `json:"engineer_id,omitempty"`
	TypeID      string     `json:"type_id"`
	SessionID   string     `json:"session_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Urgency:     string(t.Urgency),
		Status:      string(t.Status),
		CustomerID:  t.CustomerID,
		EngineerID:  t.EngineerID,
		TypeID:      t.TypeID,
		SessionID:   t.SessionID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ResolvedAt:  t.ResolvedAt,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// TicketMessageResponse is the wire shape of a conversation entry.
type TicketMessageResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Role      string    `json:"role"`
	AuthorID  *string   `json:"author_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketMessageResponse maps a domain message.
func NewTicketMessageResponse(m *domain.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		ID:        m.ID,
		TicketID:  m.TicketID,
		Role:      string(m.Role),
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// NewTicketMessageListResponse maps a slice of messages.
func NewTicketMessageListResponse(messages []domain.TicketMessage) []TicketMessageResponse {
	out := make([]TicketMessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, NewTicketMessageResponse(&messages[i]))
	}
	return out
}

// AttachmentResponse is the wire shape of attachment metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAttachmentResponse maps domain attachment metadata.
func NewAttachmentResponse(a *domain.TicketAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		TicketID:    a.TicketID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt,
	}
}
