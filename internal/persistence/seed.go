package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/config"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
)

const (
	seedAdminEmail    = "admin@supportdesk.local"
	seedAdminPassword = "ChangeMe123!"
)

// Seed inserts the bootstrap admin account and catalog rows on an empty
// database. Re-running against a populated database is a no-op.
func Seed(ctx context.Context, store repository.Store, cfg *config.Config, logger *zap.Logger) error {
	if err := seedAdmin(ctx, store, cfg, logger); err != nil {
		return err
	}
	if err := seedProducts(ctx, store, logger); err != nil {
		return err
	}
	return seedTicketTypes(ctx, store, logger)
}

func seedAdmin(ctx context.Context, store repository.Store, cfg *config.Config, logger *zap.Logger) error {
	_, err := store.Users().GetByEmail(ctx, seedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(seedAdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         "Administrator",
		Email:        seedAdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", seedAdminEmail))
	return nil
}

func seedProducts(ctx context.Context, store repository.Store, logger *zap.Logger) error {
	count, err := store.Products().Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	products := []domain.Product{
		{Name: "Model S", Category: domain.CategoryModelS, Description: "Full-size luxury sedan"},
		{Name: "Model 3", Category: domain.CategoryModel3, Description: "Mid-size sedan"},
		{Name: "Model X", Category: domain.CategoryModelX, Description: "Full-size SUV"},
		{Name: "Model Y", Category: domain.CategoryModelY, Description: "Compact SUV"},
		{Name: "Cybertruck", Category: domain.CategoryCybertruck, Description: "Electric pickup truck"},
	}
	for i := range products {
		if err := store.Products().Create(ctx, &products[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded product catalog", zap.Int("count", len(products)))
	return nil
}

func seedTicketTypes(ctx context.Context, store repository.Store, logger *zap.Logger) error {
	count, err := store.TicketTypes().Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	types := []domain.TicketType{
		{Name: "technical", Description: "Hardware or software malfunction"},
		{Name: "billing", Description: "Invoices, payments and refunds"},
		{Name: "general", Description: "Questions and feedback"},
	}
	for i := range types {
		if err := store.TicketTypes().Create(ctx, &types[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded ticket types", zap.Int("count", len(types)))
	return nil
}
