package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/dto"
	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/service"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// SessionsHandler exposes support session endpoints.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs the handler.
func NewSessionsHandler(sessions *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// Start handles POST /sessions.
func (h *SessionsHandler) Start(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewForbidden("customer account required")
	}

	session, err := h.sessions.Start(c.UserContext(), principal.Customer.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// Get handles GET /sessions/:id.
func (h *SessionsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewSession(principal, session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// List handles GET /sessions for the calling customer.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	customerID := c.Query("customer_id")
	if principal.Role() == domain.RoleCustomer {
		if principal.Customer == nil {
			return apperrors.NewForbidden("customer record missing")
		}
		customerID = principal.Customer.ID
	}
	if customerID == "" {
		return apperrors.NewValidationError("customer_id is required", nil)
	}

	sessions, err := h.sessions.ListByCustomer(c.UserContext(), customerID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionListResponse(sessions)})
}

// Touch handles POST /sessions/:id/touch.
func (h *SessionsHandler) Touch(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewSession(principal, session); err != nil {
		return err
	}
	if err := h.sessions.Touch(c.UserContext(), session.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "touched"}})
}

// End handles POST /sessions/:id/end.
func (h *SessionsHandler) End(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewSession(principal, session); err != nil {
		return err
	}
	if err := h.sessions.End(c.UserContext(), session.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ended"}})
}

func canViewSession(principal *auth.Principal, session *domain.Session) error {
	if principal.Role().Staff() {
		return nil
	}
	if principal.Customer != nil && session.CustomerID == principal.Customer.ID {
		return nil
	}
	return apperrors.NewForbidden("access denied")
}
