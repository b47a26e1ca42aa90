package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/config"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	store      repository.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, store repository.Store) *AuthService {
	return &AuthService{
		store:      store,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// RegisterCustomer creates a customer account: the identity record plus the
// tier-bearing customer row, in one transaction.
func (s *AuthService) RegisterCustomer(ctx context.Context, name, email, password string, tier domain.CustomerTier) (*domain.Customer, string, time.Time, error) {
	if !tier.Valid() {
		tier = domain.TierStandard
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	var (
		user     *domain.User
		customer *domain.Customer
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"email": email})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		user = &domain.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         domain.RoleCustomer,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		customer = &domain.Customer{
			UserID: user.ID,
			Name:   user.Name,
			Email:  email,
			Tier:   tier,
		}
		return tx.Customers().Create(ctx, customer)
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return customer, token, exp, nil
}

// Login authenticates any account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// RequestPasswordReset persists a single-use reset token. The token is handed
// to the notification layer; it is never returned over the API.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.store.PasswordResets().Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.store.PasswordResets().GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return err
	}
	if !token.Usable(time.Now()) {
		return apperrors.NewUnauthorized("reset token expired or already used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return tx.PasswordResets().MarkUsed(ctx, token.ID)
	})
}

// ChangePassword verifies the current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.store.Users().Update(ctx, user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
