package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/dto"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/service"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// AccountsHandler exposes customer, manager and user administration.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs the handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// ListCustomers handles GET /customers.
func (h *AccountsHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.accounts.ListCustomers(c.UserContext(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerListResponse(customers)})
}

// GetCustomer handles GET /customers/:id.
func (h *AccountsHandler) GetCustomer(c *fiber.Ctx) error {
	customer, err := h.accounts.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// UpdateCustomerTier handles PATCH /customers/:id/tier.
func (h *AccountsHandler) UpdateCustomerTier(c *fiber.Ctx) error {
	var req dto.CustomerTierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	customer, err := h.accounts.UpdateCustomerTier(c.UserContext(), c.Params("id"), domain.CustomerTier(req.Tier))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// CreateManager handles POST /managers.
func (h *AccountsHandler) CreateManager(c *fiber.Ctx) error {
	var req dto.ManagerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	manager, err := h.accounts.CreateManager(c.UserContext(), service.ManagerCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Category: domain.Category(req.Category),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewManagerResponse(manager)})
}

// UpdateManager handles PATCH /managers/:id.
func (h *AccountsHandler) UpdateManager(c *fiber.Ctx) error {
	var req dto.ManagerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	manager, err := h.accounts.UpdateManagerCategory(c.UserContext(), c.Params("id"), domain.Category(req.Category))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewManagerResponse(manager)})
}

// DeleteManager handles DELETE /managers/:id.
func (h *AccountsHandler) DeleteManager(c *fiber.Ctx) error {
	if err := h.accounts.DeleteManager(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetManager handles GET /managers/:id.
func (h *AccountsHandler) GetManager(c *fiber.Ctx) error {
	manager, err := h.accounts.GetManager(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewManagerResponse(manager)})
}

// ListManagers handles GET /managers.
func (h *AccountsHandler) ListManagers(c *fiber.Ctx) error {
	managers, err := h.accounts.ListManagers(c.UserContext(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewManagerListResponse(managers)})
}

// ListUsers handles GET /users.
func (h *AccountsHandler) ListUsers(c *fiber.Ctx) error {
	var role *domain.Role
	if roleStr := c.Query("role"); roleStr != "" {
		parsed := domain.Role(roleStr)
		if !parsed.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": roleStr})
		}
		role = &parsed
	}
	users, err := h.accounts.ListUsers(c.UserContext(), role, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserListResponse(users)})
}
