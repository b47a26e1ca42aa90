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

// AccountService manages customer and manager accounts and admin-side user
// listing. Engineer accounts have their own service because of the capacity
// bookkeeping.
type AccountService struct {
	store      repository.Store
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(store repository.Store, bcryptCost int) *AccountService {
	return &AccountService{store: store, bcryptCost: bcryptCost}
}

// ManagerCreateInput describes manager provisioning payload.
type ManagerCreateInput struct {
	Name     string
	Email    string
	Password string
	Category domain.Category
}

// CreateManager provisions a manager with a linked user account.
func (s *AccountService) CreateManager(ctx context.Context, input ManagerCreateInput) (*domain.Manager, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var manager *domain.Manager
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
			Role:         domain.RoleManager,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		manager = &domain.Manager{
			UserID:   user.ID,
			Name:     user.Name,
			Email:    input.Email,
			Category: input.Category,
		}
		return tx.Managers().Create(ctx, manager)
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// UpdateManagerCategory moves a manager to another category.
func (s *AccountService) UpdateManagerCategory(ctx context.Context, id string, category domain.Category) (*domain.Manager, error) {
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	manager, err := s.store.Managers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("manager", map[string]any{"manager_id": id})
		}
		return nil, err
	}
	manager.Category = category
	if err := s.store.Managers().Update(ctx, manager); err != nil {
		return nil, err
	}
	return manager, nil
}

// DeleteManager removes a manager and its identity record.
func (s *AccountService) DeleteManager(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		manager, err := tx.Managers().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("manager", map[string]any{"manager_id": id})
			}
			return err
		}
		if err := tx.Managers().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, manager.UserID)
	})
}

// GetManager fetches one manager.
func (s *AccountService) GetManager(ctx context.Context, id string) (*domain.Manager, error) {
	manager, err := s.store.Managers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("manager", map[string]any{"manager_id": id})
		}
		return nil, err
	}
	return manager, nil
}

// ListManagers returns managers.
func (s *AccountService) ListManagers(ctx context.Context, limit, offset int) ([]domain.Manager, error) {
	return s.store.Managers().List(ctx, limit, offset)
}

// GetCustomer fetches one customer.
func (s *AccountService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns customers.
func (s *AccountService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return s.store.Customers().List(ctx, limit, offset)
}

// UpdateCustomerTier changes a customer's tier. Urgency of existing tickets
// is unchanged; the tier only affects future tickets.
func (s *AccountService) UpdateCustomerTier(ctx context.Context, id string, tier domain.CustomerTier) (*domain.Customer, error) {
	if !tier.Valid() {
		return nil, apperrors.NewValidationError("unknown tier", map[string]any{"tier": tier})
	}
	customer, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
		}
		return nil, err
	}
	customer.Tier = tier
	if err := s.store.Customers().Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListUsers returns identity records, optionally filtered by role.
func (s *AccountService) ListUsers(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.User, error) {
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *role})
	}
	return s.store.Users().List(ctx, role, limit, offset)
}
