package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/dto"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/service"
)

// CatalogHandler exposes the product and ticket type catalogs.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /products.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductListResponse(products)})
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	product := &domain.Product{
		Name:        req.Name,
		Category:    domain.Category(req.Category),
		Description: req.Description,
	}
	if err := h.catalog.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// UpdateProduct handles PUT /products/:id.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	product := &domain.Product{
		ID:          c.Params("id"),
		Name:        req.Name,
		Category:    domain.Category(req.Category),
		Description: req.Description,
	}
	if err := h.catalog.UpdateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// DeleteProduct handles DELETE /products/:id.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListTicketTypes handles GET /ticket-types.
func (h *CatalogHandler) ListTicketTypes(c *fiber.Ctx) error {
	types, err := h.catalog.ListTicketTypes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeListResponse(types)})
}

// GetTicketType handles GET /ticket-types/:id.
func (h *CatalogHandler) GetTicketType(c *fiber.Ctx) error {
	ticketType, err := h.catalog.GetTicketType(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// CreateTicketType handles POST /ticket-types.
func (h *CatalogHandler) CreateTicketType(c *fiber.Ctx) error {
	var req dto.TicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticketType := &domain.TicketType{Name: req.Name, Description: req.Description}
	if err := h.catalog.CreateTicketType(c.UserContext(), ticketType); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// UpdateTicketType handles PUT /ticket-types/:id.
func (h *CatalogHandler) UpdateTicketType(c *fiber.Ctx) error {
	var req dto.TicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticketType := &domain.TicketType{
		ID:          c.Params("id"),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.catalog.UpdateTicketType(c.UserContext(), ticketType); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// DeleteTicketType handles DELETE /ticket-types/:id.
func (h *CatalogHandler) DeleteTicketType(c *fiber.Ctx) error {
	if err := h.catalog.DeleteTicketType(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
