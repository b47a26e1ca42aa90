package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
)

// TicketTypeRepository handles the ticket type catalog.
type TicketTypeRepository interface {
	Create(ctx context.Context, ticketType *domain.TicketType) error
	Update(ctx context.Context, ticketType *domain.TicketType) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	GetByName(ctx context.Context, name string) (*domain.TicketType, error)
	List(ctx context.Context) ([]domain.TicketType, error)
	Count(ctx context.Context) (int, error)
}

type ticketTypeRepository struct {
	db DBTX
}

func (r *ticketTypeRepository) Create(ctx context.Context, ticketType *domain.TicketType) error {
	const query = `
        INSERT INTO ticket_types (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticketType.Name,
		ticketType.Description,
	).Scan(&ticketType.ID, &ticketType.CreatedAt, &ticketType.UpdatedAt)
}

func (r *ticketTypeRepository) Update(ctx context.Context, ticketType *domain.TicketType) error {
	const query = `UPDATE ticket_types SET name=$1, description=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query,
		ticketType.Name,
		ticketType.Description,
		ticketType.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketTypeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM ticket_types WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM ticket_types WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketTypeRepository) GetByName(ctx context.Context, name string) (*domain.TicketType, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM ticket_types WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *ticketTypeRepository) List(ctx context.Context) ([]domain.TicketType, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM ticket_types ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var ticketType domain.TicketType
		if err := rows.Scan(
			&ticketType.ID,
			&ticketType.Name,
			&ticketType.Description,
			&ticketType.CreatedAt,
			&ticketType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticketType)
	}
	return result, rows.Err()
}

func (r *ticketTypeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_types`).Scan(&count)
	return count, err
}

func (r *ticketTypeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TicketType, error) {
	var ticketType domain.TicketType
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&ticketType.ID,
		&ticketType.Name,
		&ticketType.Description,
		&ticketType.CreatedAt,
		&ticketType.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticketType, nil
}
