package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// CatalogService manages the product and ticket type catalogs.
type CatalogService struct {
	store repository.Store
}

// NewCatalogService builds the service.
func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// ListProducts returns all products.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products().List(ctx)
}

// GetProduct fetches one product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct adds a catalog entry.
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if !product.Category.Valid() {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": product.Category})
	}
	return s.store.Products().Create(ctx, product)
}

// UpdateProduct edits a catalog entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if !product.Category.Valid() {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": product.Category})
	}
	if err := s.store.Products().Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"product_id": product.ID})
		}
		return err
	}
	return nil
}

// DeleteProduct removes a catalog entry.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return err
	}
	return nil
}

// ListTicketTypes returns all ticket types.
func (s *CatalogService) ListTicketTypes(ctx context.Context) ([]domain.TicketType, error) {
	return s.store.TicketTypes().List(ctx)
}

// GetTicketType fetches one ticket type.
func (s *CatalogService) GetTicketType(ctx context.Context, id string) (*domain.TicketType, error) {
	ticketType, err := s.store.TicketTypes().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket type", map[string]any{"type_id": id})
		}
		return nil, err
	}
	return ticketType, nil
}

// CreateTicketType adds a ticket type.
func (s *CatalogService) CreateTicketType(ctx context.Context, ticketType *domain.TicketType) error {
	return s.store.TicketTypes().Create(ctx, ticketType)
}

// UpdateTicketType edits a ticket type.
func (s *CatalogService) UpdateTicketType(ctx context.Context, ticketType *domain.TicketType) error {
	if err := s.store.TicketTypes().Update(ctx, ticketType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket type", map[string]any{"type_id": ticketType.ID})
		}
		return err
	}
	return nil
}

// DeleteTicketType removes a ticket type.
func (s *CatalogService) DeleteTicketType(ctx context.Context, id string) error {
	if err := s.store.TicketTypes().Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket type", map[string]any{"type_id": id})
		}
		return err
	}
	return nil
}
