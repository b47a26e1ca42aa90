package repository

import (
	"context"

	"github.com/elvificent/supportdesk/internal/domain"
)

// TicketMessageRepository is the append-only conversation log. Messages are
// never updated in place; corrections go in as new entries.
type TicketMessageRepository interface {
	Append(ctx context.Context, message *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type ticketMessageRepository struct {
	db DBTX
}

func (r *ticketMessageRepository) Append(ctx context.Context, message *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, author_role, author_id, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		message.TicketID,
		message.Role,
		message.AuthorID,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt)
}

// ListByTicket returns the conversation in insertion order.
func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, author_role, author_id, content, created_at
        FROM ticket_messages WHERE ticket_id=$1
        ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var message domain.TicketMessage
		if err := rows.Scan(
			&message.ID,
			&message.TicketID,
			&message.Role,
			&message.AuthorID,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

func (r *ticketMessageRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ticket_messages WHERE ticket_id=$1`, ticketID)
	return err
}
