package domain

import "time"

// MessageRole indicates who authored a history entry.
type MessageRole string

const (
	MessageRoleCustomer MessageRole = "customer"
	MessageRoleEngineer MessageRole = "engineer"
	MessageRoleManager  MessageRole = "manager"
	MessageRoleAdmin    MessageRole = "admin"
	MessageRoleSystem   MessageRole = "system"
)

// TicketMessage is one entry of a ticket's append-only history. AuthorID is
// nil for system-authored entries.
type TicketMessage struct {
	ID        string
	TicketID  string
	Role      MessageRole
	AuthorID  *string
	Content   string
	CreatedAt time.Time
}

// TicketAttachment stores metadata for a file attached to a ticket. The bytes
// live in the blob store under StorageKey.
type TicketAttachment struct {
	ID          string
	TicketID    string
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}
