package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
)

// SessionRepository handles persistence for support sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	End(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	db DBTX
}

const sessionColumns = `id, customer_id, started_at, ended_at, last_activity, created_at, updated_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (customer_id, started_at, last_activity)
        VALUES ($1,$2,$2)
        RETURNING id, created_at, updated_at`
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	session.LastActivity = session.StartedAt
	return r.db.QueryRow(ctx, query,
		session.CustomerID,
		session.StartedAt,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id=$1`
	var session domain.Session
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.CustomerID,
		&session.StartedAt,
		&session.EndedAt,
		&session.LastActivity,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE customer_id=$1` +
		fmt.Sprintf(" ORDER BY started_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.ID,
			&session.CustomerID,
			&session.StartedAt,
			&session.EndedAt,
			&session.LastActivity,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}

// Touch records customer activity on a still-open session.
func (r *sessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET last_activity=$1, updated_at=NOW() WHERE id=$2 AND ended_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) End(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET ended_at=$1, last_activity=$1, updated_at=NOW() WHERE id=$2 AND ended_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
