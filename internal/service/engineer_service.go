package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// EngineerService manages the engineer directory.
type EngineerService struct {
	store      repository.Store
	bcryptCost int
}

// NewEngineerService builds the service.
func NewEngineerService(store repository.Store, bcryptCost int) *EngineerService {
	return &EngineerService{store: store, bcryptCost: bcryptCost}
}

// EngineerCreateInput describes provisioning payload. A linked identity
// record is created alongside the directory entry.
type EngineerCreateInput struct {
	Name       string
	Email      string
	Password   string
	Category   domain.Category
	Level      int
	MaxTickets int
}

// EngineerUpdateInput describes mutable directory fields.
type EngineerUpdateInput struct {
	Category   *domain.Category
	Level      *int
	MaxTickets *int
}

// Create provisions an engineer with a linked user account.
func (s *EngineerService) Create(ctx context.Context, input EngineerCreateInput) (*domain.Engineer, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Level < 1 || input.Level > domain.MaxEngineerLevel {
		return nil, apperrors.NewValidationError("level out of range", map[string]any{"level": input.Level})
	}
	if input.MaxTickets < 1 {
		return nil, apperrors.NewValidationError("max tickets must be positive", map[string]any{"max_tickets": input.MaxTickets})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var engineer *domain.Engineer
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, input.Email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		user := &domain.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hash,
			Role:         domain.RoleEngineer,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		engineer = &domain.Engineer{
			UserID:     user.ID,
			Name:       user.Name,
			Email:      input.Email,
			Category:   input.Category,
			Level:      input.Level,
			MaxTickets: input.MaxTickets,
		}
		return tx.Engineers().Create(ctx, engineer)
	})
	if err != nil {
		return nil, err
	}
	return engineer, nil
}

// Update applies directory changes. Lowering MaxTickets below the current
// load is rejected; the counter invariant must hold.
func (s *EngineerService) Update(ctx context.Context, id string, input EngineerUpdateInput) (*domain.Engineer, error) {
	var engineer *domain.Engineer
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		engineer, err = tx.Engineers().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
			}
			return err
		}

		if input.Category != nil {
			if !input.Category.Valid() {
				return apperrors.NewValidationError("unknown category", map[string]any{"category": *input.Category})
			}
			engineer.Category = *input.Category
		}
		if input.Level != nil {
			if *input.Level < 1 || *input.Level > domain.MaxEngineerLevel {
				return apperrors.NewValidationError("level out of range", map[string]any{"level": *input.Level})
			}
			engineer.Level = *input.Level
		}
		if input.MaxTickets != nil {
			if *input.MaxTickets < engineer.CurrentTickets {
				return apperrors.NewInvalidState("max tickets below current load",
					map[string]any{"current_tickets": engineer.CurrentTickets, "max_tickets": *input.MaxTickets})
			}
			engineer.MaxTickets = *input.MaxTickets
		}
		return tx.Engineers().Update(ctx, engineer)
	})
	if err != nil {
		return nil, err
	}
	return engineer, nil
}

// Delete removes an engineer that is not holding any tickets.
func (s *EngineerService) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		engineer, err := tx.Engineers().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
			}
			return err
		}
		if engineer.CurrentTickets > 0 {
			return apperrors.NewInvalidState("engineer still holds tickets",
				map[string]any{"engineer_id": id, "current_tickets": engineer.CurrentTickets})
		}
		if err := tx.Engineers().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, engineer.UserID)
	})
}

// Get fetches one engineer.
func (s *EngineerService) Get(ctx context.Context, id string) (*domain.Engineer, error) {
	engineer, err := s.store.Engineers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
		}
		return nil, err
	}
	return engineer, nil
}

// List returns engineers matching the filter.
func (s *EngineerService) List(ctx context.Context, filter repository.EngineerFilter) ([]domain.Engineer, error) {
	return s.store.Engineers().List(ctx, filter)
}

// EscalationCandidates lists engineers above the given level with spare
// capacity in a category, in assignment order.
func (s *EngineerService) EscalationCandidates(ctx context.Context, category domain.Category, level int) ([]domain.Engineer, error) {
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	return s.store.Engineers().FindHigherLevel(ctx, category, level)
}

// NextAvailable returns the engineer creation would pick for a category,
// without claiming a slot.
func (s *EngineerService) NextAvailable(ctx context.Context, category domain.Category, level int) (*domain.Engineer, error) {
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	engineer, err := s.store.Engineers().FindLeastLoadedAvailable(ctx, category, level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNoEngineerAvailable(map[string]any{"category": category, "level": level})
		}
		return nil, err
	}
	return engineer, nil
}
