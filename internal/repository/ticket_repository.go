package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
)

// TicketFilter captures listing parameters. Every field maps to one of the
// filtered queries the store exposes (customer, engineer, status, category,
// urgency, type).
type TicketFilter struct {
	CustomerID *string
	EngineerID *string
	Status     *domain.TicketStatus
	Category   *domain.Category
	Urgency    *domain.Urgency
	TypeID     *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListStale(ctx context.Context, updatedBefore time.Time) ([]domain.Ticket, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

type ticketRepository struct {
	db DBTX
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ticketColumns = `id, title, description, category, urgency, status, customer_id, engineer_id, type_id, session_id, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, urgency, status, customer_id, engineer_id, type_id, session_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Urgency,
		ticket.Status,
		ticket.CustomerID,
		ticket.EngineerID,
		ticket.TypeID,
		ticket.SessionID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, urgency=$4, status=$5,
            engineer_id=$6, type_id=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Urgency,
		ticket.Status,
		ticket.EngineerID,
		ticket.TypeID,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Urgency,
		&ticket.Status,
		&ticket.CustomerID,
		&ticket.EngineerID,
		&ticket.TypeID,
		&ticket.SessionID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	builder := psql.Select(ticketColumns).From("tickets")

	if filter.CustomerID != nil {
		builder = builder.Where(sq.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.EngineerID != nil {
		builder = builder.Where(sq.Eq{"engineer_id": *filter.EngineerID})
	}
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Category != nil {
		builder = builder.Where(sq.Eq{"category": *filter.Category})
	}
	if filter.Urgency != nil {
		builder = builder.Where(sq.Eq{"urgency": *filter.Urgency})
	}
	if filter.TypeID != nil {
		builder = builder.Where(sq.Eq{"type_id": *filter.TypeID})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder = builder.OrderBy("updated_at DESC").Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListStale returns non-closed tickets idle since before the cutoff, for the
// auto-close sweep.
func (r *ticketRepository) ListStale(ctx context.Context, updatedBefore time.Time) ([]domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns).
		From("tickets").
		Where(sq.NotEq{"status": domain.TicketStatusClosed}).
		Where(sq.Lt{"updated_at": updatedBefore}).
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Touch bumps updated_at, used when a message is appended.
func (r *ticketRepository) Touch(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET updated_at=$1 WHERE id=$2`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Urgency,
			&ticket.Status,
			&ticket.CustomerID,
			&ticket.EngineerID,
			&ticket.TypeID,
			&ticket.SessionID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
