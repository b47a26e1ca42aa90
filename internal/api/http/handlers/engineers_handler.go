package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/dto"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	"github.com/elvificent/supportdesk/internal/service"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// EngineersHandler exposes the engineer directory.
type EngineersHandler struct {
	engineers *service.EngineerService
}

// NewEngineersHandler constructs the handler.
func NewEngineersHandler(engineers *service.EngineerService) *EngineersHandler {
	return &EngineersHandler{engineers: engineers}
}

// Create handles POST /engineers.
func (h *EngineersHandler) Create(c *fiber.Ctx) error {
	var req dto.EngineerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	engineer, err := h.engineers.Create(c.UserContext(), service.EngineerCreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Category:   domain.Category(req.Category),
		Level:      req.Level,
		MaxTickets: req.MaxTickets,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}

// Update handles PATCH /engineers/:id.
func (h *EngineersHandler) Update(c *fiber.Ctx) error {
	var req dto.EngineerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.EngineerUpdateInput{
		Level:      req.Level,
		MaxTickets: req.MaxTickets,
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		input.Category = &category
	}

	engineer, err := h.engineers.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}

// Delete handles DELETE /engineers/:id.
func (h *EngineersHandler) Delete(c *fiber.Ctx) error {
	if err := h.engineers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get handles GET /engineers/:id.
func (h *EngineersHandler) Get(c *fiber.Ctx) error {
	engineer, err := h.engineers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}

// List handles GET /engineers.
func (h *EngineersHandler) List(c *fiber.Ctx) error {
	filter := repository.EngineerFilter{
		AvailableOnly: c.Query("available") == "true",
		Limit:         queryInt(c, "limit", 50),
		Offset:        queryInt(c, "offset", 0),
	}
	if category := c.Query("category"); category != "" {
		parsed := domain.Category(category)
		if !parsed.Valid() {
			return apperrors.NewValidationError("unknown category", map[string]any{"category": category})
		}
		filter.Category = &parsed
	}
	if levelStr := c.Query("level"); levelStr != "" {
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 || level > domain.MaxEngineerLevel {
			return apperrors.NewValidationError("level out of range", map[string]any{"level": levelStr})
		}
		filter.Level = &level
	}

	engineers, err := h.engineers.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerListResponse(engineers)})
}

// EscalationCandidates handles GET /engineers/escalation-candidates.
func (h *EngineersHandler) EscalationCandidates(c *fiber.Ctx) error {
	category := domain.Category(c.Query("category"))
	level := queryInt(c, "level", 1)

	engineers, err := h.engineers.EscalationCandidates(c.UserContext(), category, level)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerListResponse(engineers)})
}

// NextAvailable handles GET /engineers/next-available.
func (h *EngineersHandler) NextAvailable(c *fiber.Ctx) error {
	category := domain.Category(c.Query("category"))
	level := queryInt(c, "level", 1)

	engineer, err := h.engineers.NextAvailable(c.UserContext(), category, level)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}
