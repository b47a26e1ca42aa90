package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
)

// ProductRepository handles the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db DBTX
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, category, description)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		product.Name,
		product.Category,
		product.Description,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `UPDATE products SET name=$1, category=$2, description=$3, updated_at=NOW() WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		product.Name,
		product.Category,
		product.Description,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT id, name, category, description, created_at, updated_at FROM products WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	const query = `SELECT id, name, category, description, created_at, updated_at FROM products WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT id, name, category, description, created_at, updated_at FROM products ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (r *productRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}
