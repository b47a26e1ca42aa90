package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/dto"
	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/events"
	"github.com/elvificent/supportdesk/internal/repository"
	"github.com/elvificent/supportdesk/internal/service"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	attachments *service.AttachmentService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService, attachments *service.AttachmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, attachments: attachments}
}

// Create handles POST /tickets. Customers open tickets against one of their
// own sessions.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return apperrors.NewForbidden("customer account required")
	}

	var req dto.TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.TicketCreateInput{
		CustomerID:  principal.Customer.ID,
		SessionID:   req.SessionID,
		TypeID:      req.TypeID,
		Title:       req.Title,
		Description: req.Description,
		ProductName: req.Product,
	}
	if req.Category != "" {
		category := domain.Category(req.Category)
		input.Category = &category
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /tickets. Customers see their own tickets; engineers their
// assignments; managers and admins everything, with query filters.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.TicketFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		parsed := domain.TicketStatus(status)
		if !parsed.Valid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": status})
		}
		filter.Status = &parsed
	}
	if category := c.Query("category"); category != "" {
		parsed := domain.Category(category)
		if !parsed.Valid() {
			return apperrors.NewValidationError("unknown category", map[string]any{"category": category})
		}
		filter.Category = &parsed
	}
	if urgency := c.Query("urgency"); urgency != "" {
		parsed := domain.Urgency(urgency)
		if !parsed.Valid() {
			return apperrors.NewValidationError("unknown urgency", map[string]any{"urgency": urgency})
		}
		filter.Urgency = &parsed
	}
	if typeID := c.Query("type_id"); typeID != "" {
		filter.TypeID = &typeID
	}

	switch principal.Role() {
	case domain.RoleCustomer:
		if principal.Customer == nil {
			return apperrors.NewForbidden("customer record missing")
		}
		filter.CustomerID = &principal.Customer.ID
	case domain.RoleEngineer:
		if principal.Engineer == nil {
			return apperrors.NewForbidden("engineer record missing")
		}
		filter.EngineerID = &principal.Engineer.ID
	default:
		if customerID := c.Query("customer_id"); customerID != "" {
			filter.CustomerID = &customerID
		}
		if engineerID := c.Query("engineer_id"); engineerID != "" {
			filter.EngineerID = &engineerID
		}
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// Get handles GET /tickets/:id, returning the ticket with its conversation.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, messages, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":   dto.NewTicketResponse(ticket),
		"messages": dto.NewTicketMessageListResponse(messages),
	}})
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TicketAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.tickets.AssignTicket(c.UserContext(), c.Params("id"), req.EngineerID, actorFor(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateStatus handles PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), c.Params("id"), domain.TicketStatus(req.Status), actorFor(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Escalate handles POST /tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.tickets.EscalateTicket(c.UserContext(), c.Params("id"), actorFor(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AppendMessage handles POST /tickets/:id/messages.
func (h *TicketsHandler) AppendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TicketMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, _, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}

	userID := principal.User.ID
	message, err := h.tickets.AppendMessage(c.UserContext(), ticket.ID, messageRoleFor(principal), &userID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketMessageResponse(message)})
}

// ListMessages handles GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, messages, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketMessageListResponse(messages)})
}

// UploadAttachment handles POST /tickets/:id/attachments (multipart).
func (h *TicketsHandler) UploadAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, _, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file field required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	attachment, err := h.attachments.Upload(c.UserContext(), ticket.ID, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(attachment)})
}

// ListAttachments handles GET /tickets/:id/attachments.
func (h *TicketsHandler) ListAttachments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, _, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}

	attachments, err := h.attachments.ListByTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, dto.NewAttachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// DownloadAttachment handles GET /attachments/:id.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	attachment, data, err := h.attachments.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	ticket, _, err := h.tickets.GetTicket(c.UserContext(), attachment.TicketID)
	if err != nil {
		return err
	}
	if err := canViewTicket(principal, ticket); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+attachment.FileName+`"`)
	return c.Send(data)
}

// canViewTicket enforces record-level access: customers see their own
// tickets, engineers their assignments, managers and admins everything.
func canViewTicket(principal *auth.Principal, ticket *domain.Ticket) error {
	switch principal.Role() {
	case domain.RoleAdmin, domain.RoleManager:
		return nil
	case domain.RoleEngineer:
		if principal.Engineer != nil && ticket.EngineerID != nil && *ticket.EngineerID == principal.Engineer.ID {
			return nil
		}
	case domain.RoleCustomer:
		if principal.Customer != nil && ticket.CustomerID == principal.Customer.ID {
			return nil
		}
	}
	return apperrors.NewForbidden("access denied")
}

func actorFor(principal *auth.Principal) events.Actor {
	userID := principal.User.ID
	return events.Actor{Role: principal.Role(), UserID: &userID}
}

func messageRoleFor(principal *auth.Principal) domain.MessageRole {
	switch principal.Role() {
	case domain.RoleAdmin:
		return domain.MessageRoleAdmin
	case domain.RoleManager:
		return domain.MessageRoleManager
	case domain.RoleEngineer:
		return domain.MessageRoleEngineer
	default:
		return domain.MessageRoleCustomer
	}
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
