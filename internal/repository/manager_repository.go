package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
)

// ManagerRepository handles persistence for managers.
type ManagerRepository interface {
	Create(ctx context.Context, manager *domain.Manager) error
	Update(ctx context.Context, manager *domain.Manager) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Manager, error)
	GetByEmail(ctx context.Context, email string) (*domain.Manager, error)
	List(ctx context.Context, limit, offset int) ([]domain.Manager, error)
}

type managerRepository struct {
	db DBTX
}

const managerColumns = `m.id, m.user_id, u.name, m.email, m.category, m.created_at, m.updated_at`

func (r *managerRepository) Create(ctx context.Context, manager *domain.Manager) error {
	const query = `
        INSERT INTO managers (user_id, email, category)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		manager.UserID,
		manager.Email,
		manager.Category,
	).Scan(&manager.ID, &manager.CreatedAt, &manager.UpdatedAt)
}

func (r *managerRepository) Update(ctx context.Context, manager *domain.Manager) error {
	const query = `UPDATE managers SET category=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, manager.Category, manager.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *managerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM managers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *managerRepository) GetByID(ctx context.Context, id string) (*domain.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers m JOIN users u ON u.id = m.user_id WHERE m.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *managerRepository) GetByEmail(ctx context.Context, email string) (*domain.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers m JOIN users u ON u.id = m.user_id WHERE m.email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *managerRepository) List(ctx context.Context, limit, offset int) ([]domain.Manager, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + managerColumns + ` FROM managers m JOIN users u ON u.id = m.user_id` +
		fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Manager
	for rows.Next() {
		var manager domain.Manager
		if err := rows.Scan(
			&manager.ID,
			&manager.UserID,
			&manager.Name,
			&manager.Email,
			&manager.Category,
			&manager.CreatedAt,
			&manager.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, manager)
	}
	return result, rows.Err()
}

func (r *managerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Manager, error) {
	var manager domain.Manager
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&manager.ID,
		&manager.UserID,
		&manager.Name,
		&manager.Email,
		&manager.Category,
		&manager.CreatedAt,
		&manager.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &manager, nil
}
