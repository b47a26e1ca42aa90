package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// EngineerRepository is the engineer directory: CRUD plus the availability
// queries and atomic slot accounting the lifecycle manager depends on.
type EngineerRepository interface {
	Create(ctx context.Context, engineer *domain.Engineer) error
	Update(ctx context.Context, engineer *domain.Engineer) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Engineer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Engineer, error)
	List(ctx context.Context, filter EngineerFilter) ([]domain.Engineer, error)
	FindLeastLoadedAvailable(ctx context.Context, category domain.Category, level int) (*domain.Engineer, error)
	FindHigherLevel(ctx context.Context, category domain.Category, level int) ([]domain.Engineer, error)
	ClaimLeastLoaded(ctx context.Context, category *domain.Category, level int) (*domain.Engineer, error)
	ReserveSlot(ctx context.Context, id string) error
	ReleaseSlot(ctx context.Context, id string) error
}

// EngineerFilter defines query params for engineer listing.
type EngineerFilter struct {
	Category      *domain.Category
	Level         *int
	AvailableOnly bool
	Limit         int
	Offset        int
}

type engineerRepository struct {
	db DBTX
}

const engineerColumns = `e.id, e.user_id, u.name, e.email, e.category, e.level, e.current_tickets, e.max_tickets, e.created_at, e.updated_at`

func (r *engineerRepository) Create(ctx context.Context, engineer *domain.Engineer) error {
	const query = `
        INSERT INTO engineers (user_id, email, category, level, current_tickets, max_tickets)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		engineer.UserID,
		engineer.Email,
		engineer.Category,
		engineer.Level,
		engineer.CurrentTickets,
		engineer.MaxTickets,
	).Scan(&engineer.ID, &engineer.CreatedAt, &engineer.UpdatedAt)
}

func (r *engineerRepository) Update(ctx context.Context, engineer *domain.Engineer) error {
	const query = `
        UPDATE engineers SET category=$1, level=$2, max_tickets=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		engineer.Category,
		engineer.Level,
		engineer.MaxTickets,
		engineer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *engineerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM engineers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *engineerRepository) GetByID(ctx context.Context, id string) (*domain.Engineer, error) {
	query := `SELECT ` + engineerColumns + ` FROM engineers e JOIN users u ON u.id = e.user_id WHERE e.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *engineerRepository) GetByEmail(ctx context.Context, email string) (*domain.Engineer, error) {
	query := `SELECT ` + engineerColumns + ` FROM engineers e JOIN users u ON u.id = e.user_id WHERE e.email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *engineerRepository) List(ctx context.Context, filter EngineerFilter) ([]domain.Engineer, error) {
	query := `SELECT ` + engineerColumns + ` FROM engineers e JOIN users u ON u.id = e.user_id WHERE 1=1`
	args := []any{}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND e.category=$%d", len(args))
	}
	if filter.Level != nil {
		args = append(args, *filter.Level)
		query += fmt.Sprintf(" AND e.level=$%d", len(args))
	}
	if filter.AvailableOnly {
		query += ` AND e.current_tickets < e.max_tickets`
	}
	query += ` ORDER BY e.level ASC, e.current_tickets ASC, e.id ASC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEngineers(rows)
}

// FindLeastLoadedAvailable returns the engineer with the smallest load in the
// given category and level, ties broken by id ascending. pgx.ErrNoRows when
// nobody has capacity.
func (r *engineerRepository) FindLeastLoadedAvailable(ctx context.Context, category domain.Category, level int) (*domain.Engineer, error) {
	query := `SELECT ` + engineerColumns + `
        FROM engineers e JOIN users u ON u.id = e.user_id
        WHERE e.category=$1 AND e.level=$2 AND e.current_tickets < e.max_tickets
        ORDER BY e.current_tickets ASC, e.id ASC
        LIMIT 1`
	return r.fetchSingle(ctx, query, category, level)
}

// FindHigherLevel lists engineers in the category above the given level with
// spare capacity, ordered for deterministic escalation.
func (r *engineerRepository) FindHigherLevel(ctx context.Context, category domain.Category, level int) ([]domain.Engineer, error) {
	query := `SELECT ` + engineerColumns + `
        FROM engineers e JOIN users u ON u.id = e.user_id
        WHERE e.category=$1 AND e.level > $2 AND e.current_tickets < e.max_tickets
        ORDER BY e.level ASC, e.current_tickets ASC, e.id ASC`
	rows, err := r.db.Query(ctx, query, category, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEngineers(rows)
}

// ClaimLeastLoaded atomically picks the least-loaded available engineer at the
// given level (any category when category is nil) and increments its counter.
// The subselect locks the chosen row, so concurrent claims cannot both take
// the last slot. pgx.ErrNoRows when no engineer has capacity.
func (r *engineerRepository) ClaimLeastLoaded(ctx context.Context, category *domain.Category, level int) (*domain.Engineer, error) {
	const query = `
        UPDATE engineers SET current_tickets = current_tickets + 1, updated_at = NOW()
        WHERE id = (
            SELECT id FROM engineers
            WHERE ($1::text IS NULL OR category = $1) AND level = $2 AND current_tickets < max_tickets
            ORDER BY current_tickets ASC, id ASC
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, user_id, email, category, level, current_tickets, max_tickets, created_at, updated_at`

	var cat *string
	if category != nil {
		s := string(*category)
		cat = &s
	}

	var engineer domain.Engineer
	if err := r.db.QueryRow(ctx, query, cat, level).Scan(
		&engineer.ID,
		&engineer.UserID,
		&engineer.Email,
		&engineer.Category,
		&engineer.Level,
		&engineer.CurrentTickets,
		&engineer.MaxTickets,
		&engineer.CreatedAt,
		&engineer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.fillName(ctx, &engineer)
	return &engineer, nil
}

// ReserveSlot increments the engineer's load. The capacity check and the
// increment are a single statement, so the counter can never exceed max.
func (r *engineerRepository) ReserveSlot(ctx context.Context, id string) error {
	const query = `
        UPDATE engineers SET current_tickets = current_tickets + 1, updated_at = NOW()
        WHERE id=$1 AND current_tickets < max_tickets`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if exists, err := r.exists(ctx, id); err != nil {
			return err
		} else if !exists {
			return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
		}
		return apperrors.NewCapacityExceeded(id)
	}
	return nil
}

// ReleaseSlot decrements the engineer's load. Releasing at zero is a logic
// error and is reported, not absorbed.
func (r *engineerRepository) ReleaseSlot(ctx context.Context, id string) error {
	const query = `
        UPDATE engineers SET current_tickets = current_tickets - 1, updated_at = NOW()
        WHERE id=$1 AND current_tickets > 0`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if exists, err := r.exists(ctx, id); err != nil {
			return err
		} else if !exists {
			return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
		}
		return apperrors.NewInvalidState("engineer has no held slots to release", map[string]any{"engineer_id": id})
	}
	return nil
}

func (r *engineerRepository) exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM engineers WHERE id=$1)`, id).Scan(&found)
	return found, err
}

// fillName is best-effort; the claim statement cannot join users inside the
// locking subselect, so the display name is fetched separately.
func (r *engineerRepository) fillName(ctx context.Context, engineer *domain.Engineer) {
	_ = r.db.QueryRow(ctx, `SELECT name FROM users WHERE id=$1`, engineer.UserID).Scan(&engineer.Name)
}

func (r *engineerRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Engineer, error) {
	var engineer domain.Engineer
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&engineer.ID,
		&engineer.UserID,
		&engineer.Name,
		&engineer.Email,
		&engineer.Category,
		&engineer.Level,
		&engineer.CurrentTickets,
		&engineer.MaxTickets,
		&engineer.CreatedAt,
		&engineer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &engineer, nil
}

func scanEngineers(rows pgx.Rows) ([]domain.Engineer, error) {
	var result []domain.Engineer
	for rows.Next() {
		var engineer domain.Engineer
		if err := rows.Scan(
			&engineer.ID,
			&engineer.UserID,
			&engineer.Name,
			&engineer.Email,
			&engineer.Category,
			&engineer.Level,
			&engineer.CurrentTickets,
			&engineer.MaxTickets,
			&engineer.CreatedAt,
			&engineer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, engineer)
	}
	return result, rows.Err()
}
