package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/events"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation with automatic
// assignment, reassignment, escalation, status transitions, the conversation
// log and the stale-ticket sweep. Every mutation that touches a ticket
// together with an engineer's counters runs inside one transaction.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	staleAfter time.Duration
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	StaleAfter time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	staleAfter := deps.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 168 * time.Hour
	}
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// TicketCreateInput describes ticket creation payload. Category may be given
// directly or derived from ProductName; one of the two is required.
type TicketCreateInput struct {
	CustomerID  string
	SessionID   string
	TypeID      string
	Title       string
	Description string
	Category    *domain.Category
	ProductName string
}

// CreateTicket creates a ticket and assigns a level-1 engineer in one
// transaction. If nobody in the resolved category has capacity, assignment
// falls back to level-1 engineers of any category; if that also fails the
// transaction rolls back and nothing is persisted.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	var (
		ticket   *domain.Ticket
		customer *domain.Customer
		engineer *domain.Engineer
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		customer, err = tx.Customers().GetByID(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("customer", map[string]any{"customer_id": input.CustomerID})
			}
			return err
		}

		if _, err := tx.TicketTypes().GetByID(ctx, input.TypeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket type", map[string]any{"type_id": input.TypeID})
			}
			return err
		}

		session, err := tx.Sessions().GetByID(ctx, input.SessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("session", map[string]any{"session_id": input.SessionID})
			}
			return err
		}
		if session.CustomerID != customer.ID {
			return apperrors.NewForbidden("session belongs to another customer")
		}
		if !session.Active() {
			return apperrors.NewInvalidState("session has ended", map[string]any{"session_id": session.ID})
		}

		category, err := resolveCategory(input)
		if err != nil {
			return err
		}

		engineer, err = s.claimInitialEngineer(ctx, tx, category)
		if err != nil {
			return err
		}

		ticket = &domain.Ticket{
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Category:    engineer.Category,
			Urgency:     domain.UrgencyForTier(customer.Tier),
			Status:      domain.TicketStatusInProgress,
			CustomerID:  customer.ID,
			EngineerID:  &engineer.ID,
			TypeID:      input.TypeID,
			SessionID:   session.ID,
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		return tx.Sessions().Touch(ctx, session.ID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	s.appendGreeting(ctx, ticket, customer, engineer)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    customerActor(customer.UserID),
		Payload: events.TicketCreatedPayload{
			CustomerID: customer.ID,
			EngineerID: engineer.ID,
			Category:   ticket.Category,
			Urgency:    ticket.Urgency,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// claimInitialEngineer takes a level-1 slot in the requested category, falling
// back to any category before giving up.
func (s *TicketService) claimInitialEngineer(ctx context.Context, tx repository.Store, category domain.Category) (*domain.Engineer, error) {
	engineer, err := tx.Engineers().ClaimLeastLoaded(ctx, &category, 1)
	if err == nil {
		return engineer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	engineer, err = tx.Engineers().ClaimLeastLoaded(ctx, nil, 1)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNoEngineerAvailable(map[string]any{"category": category})
		}
		return nil, err
	}
	return engineer, nil
}

func resolveCategory(input TicketCreateInput) (domain.Category, error) {
	if input.Category != nil {
		if !input.Category.Valid() {
			return "", apperrors.NewValidationError("unknown category", map[string]any{"category": *input.Category})
		}
		return *input.Category, nil
	}
	if input.ProductName != "" {
		category, ok := domain.CategoryForProduct(input.ProductName)
		if !ok {
			return "", apperrors.NewValidationError("unknown product", map[string]any{"product": input.ProductName})
		}
		return category, nil
	}
	return "", apperrors.NewValidationError("category or product is required", nil)
}

// AssignTicket moves the ticket to the given engineer, reserving the new slot
// before releasing the old one so the target's capacity is checked first.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, engineerID string, actor events.Actor) (*domain.Ticket, error) {
	var (
		ticket   *domain.Ticket
		previous *string
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = s.getTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(ticket.Status, domain.TicketStatusInProgress) {
			return apperrors.NewInvalidState("ticket cannot be assigned in its current status",
				map[string]any{"ticket_id": ticket.ID, "status": ticket.Status})
		}
		if ticket.EngineerID != nil && *ticket.EngineerID == engineerID {
			return nil
		}

		engineer, err := tx.Engineers().GetByID(ctx, engineerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": engineerID})
			}
			return err
		}
		if err := tx.Engineers().ReserveSlot(ctx, engineer.ID); err != nil {
			return err
		}
		if ticket.EngineerID != nil {
			previous = ticket.EngineerID
			if err := tx.Engineers().ReleaseSlot(ctx, *ticket.EngineerID); err != nil {
				return err
			}
		}

		ticket.EngineerID = &engineer.ID
		ticket.Category = engineer.Category
		ticket.Status = domain.TicketStatusInProgress
		return tx.Tickets().Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketAssignedPayload{
			EngineerID:         *ticket.EngineerID,
			PreviousEngineerID: previous,
		},
	})
	return ticket, nil
}

// UpdateStatus applies a lifecycle transition. Entering RESOLVED or CLOSED
// releases the held engineer slot and clears the reference, so a later
// transition attempt cannot release it twice.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, actor events.Actor) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = s.getTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		oldStatus = ticket.Status
		if !domain.CanTransition(ticket.Status, newStatus) {
			return apperrors.NewInvalidState(
				fmt.Sprintf("cannot transition from %s to %s", ticket.Status, newStatus),
				map[string]any{"ticket_id": ticket.ID})
		}

		if newStatus.Terminal() && ticket.EngineerID != nil {
			if err := tx.Engineers().ReleaseSlot(ctx, *ticket.EngineerID); err != nil {
				return err
			}
			ticket.EngineerID = nil
		}
		if newStatus == domain.TicketStatusResolved {
			resolvedAt := s.now().UTC()
			ticket.ResolvedAt = &resolvedAt
		}
		ticket.Status = newStatus
		return tx.Tickets().Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// EscalateTicket hands the ticket to the next seniority level in its current
// engineer's category. When nobody at that level has capacity the ticket is
// parked in ESCALATED with its current engineer still holding the slot; a
// later assignment or retry picks it up from there.
func (s *TicketService) EscalateTicket(ctx context.Context, ticketID string, actor events.Actor) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		fromLevel int
		toLevel   int
		claimedID *string
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = s.getTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(ticket.Status, domain.TicketStatusEscalated) {
			return apperrors.NewInvalidState("ticket cannot be escalated in its current status",
				map[string]any{"ticket_id": ticket.ID, "status": ticket.Status})
		}
		if ticket.EngineerID == nil {
			return apperrors.NewInvalidState("ticket has no engineer to escalate from",
				map[string]any{"ticket_id": ticket.ID})
		}

		current, err := tx.Engineers().GetByID(ctx, *ticket.EngineerID)
		if err != nil {
			return err
		}
		fromLevel = current.Level
		toLevel = current.Level + 1
		if toLevel > domain.MaxEngineerLevel {
			return apperrors.NewEscalationExhausted(ticket.ID, current.Level)
		}

		next, err := tx.Engineers().ClaimLeastLoaded(ctx, &current.Category, toLevel)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Nobody senior has capacity: park the ticket, keep the slot.
				ticket.Status = domain.TicketStatusEscalated
				return tx.Tickets().Update(ctx, ticket)
			}
			return err
		}

		if err := tx.Engineers().ReleaseSlot(ctx, current.ID); err != nil {
			return err
		}
		ticket.EngineerID = &next.ID
		ticket.Category = next.Category
		ticket.Status = domain.TicketStatusInProgress
		claimedID = &next.ID
		return tx.Tickets().Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketEscalatedPayload{
			FromLevel:  fromLevel,
			ToLevel:    toLevel,
			EngineerID: claimedID,
		},
	})
	return ticket, nil
}

// AppendMessage adds an entry to the ticket's conversation log and bumps the
// ticket's activity timestamp so it does not count as stale.
func (s *TicketService) AppendMessage(ctx context.Context, ticketID string, role domain.MessageRole, authorID *string, content string) (*domain.TicketMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required", nil)
	}

	var message *domain.TicketMessage
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.getTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == domain.TicketStatusClosed {
			return apperrors.NewInvalidState("ticket is closed", map[string]any{"ticket_id": ticket.ID})
		}

		message = &domain.TicketMessage{
			TicketID: ticket.ID,
			Role:     role,
			AuthorID: authorID,
			Content:  content,
		}
		if err := tx.Messages().Append(ctx, message); err != nil {
			return err
		}
		return tx.Tickets().Touch(ctx, ticket.ID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		Actor:    events.Actor{Role: roleForMessage(role), UserID: authorID},
		Payload: events.TicketMessageAddedPayload{
			MessageID:   message.ID,
			AuthorRole:  role,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return message, nil
}

// AutoCloseStale closes tickets idle beyond the configured threshold. Each
// ticket is handled in its own transaction and re-checked inside it, so the
// sweep is idempotent and safe to run concurrently with normal traffic.
func (s *TicketService) AutoCloseStale(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.staleAfter)
	stale, err := s.store.Tickets().ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range stale {
		candidate := stale[i]
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			ticket, err := tx.Tickets().GetByID(ctx, candidate.ID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil
				}
				return err
			}
			// Re-check: the ticket may have moved since the sweep listed it.
			// Anything not yet CLOSED, including RESOLVED, still ages out.
			if ticket.Status == domain.TicketStatusClosed || !ticket.UpdatedAt.Before(cutoff) {
				return nil
			}
			if ticket.EngineerID != nil {
				if err := tx.Engineers().ReleaseSlot(ctx, *ticket.EngineerID); err != nil {
					return err
				}
				ticket.EngineerID = nil
			}
			ticket.Status = domain.TicketStatusClosed
			if err := tx.Tickets().Update(ctx, ticket); err != nil {
				return err
			}
			note := &domain.TicketMessage{
				TicketID: ticket.ID,
				Role:     domain.MessageRoleSystem,
				Content:  "Ticket closed automatically due to inactivity.",
			}
			return tx.Messages().Append(ctx, note)
		})
		if err != nil {
			s.logger.Warn("auto-close failed", zap.String("ticket_id", candidate.ID), zap.Error(err))
			continue
		}
		closed++
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAutoClosed,
			TicketID: candidate.ID,
			Actor:    events.Actor{Role: domain.RoleAdmin},
			Payload:  events.TicketAutoClosedPayload{IdleSince: candidate.UpdatedAt},
		})
	}
	return closed, nil
}

// DeleteTicket removes a ticket and its child records, releasing any engineer
// slot it still holds.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.getTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.EngineerID != nil {
			if err := tx.Engineers().ReleaseSlot(ctx, *ticket.EngineerID); err != nil {
				return err
			}
		}
		if err := tx.Messages().DeleteByTicket(ctx, ticket.ID); err != nil {
			return err
		}
		if err := tx.Attachments().DeleteByTicket(ctx, ticket.ID); err != nil {
			return err
		}
		return tx.Tickets().Delete(ctx, ticket.ID)
	})
}

// GetTicket fetches a ticket with its conversation log.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.getTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.store.Messages().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, messages, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.store.Tickets().List(ctx, filter)
}

func (s *TicketService) getTicket(ctx context.Context, tx repository.Store, ticketID string) (*domain.Ticket, error) {
	ticket, err := tx.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// appendGreeting posts the automatic first reply after the creation
// transaction committed. Failure here must not fail creation.
func (s *TicketService) appendGreeting(ctx context.Context, ticket *domain.Ticket, customer *domain.Customer, engineer *domain.Engineer) {
	greeting := &domain.TicketMessage{
		TicketID: ticket.ID,
		Role:     domain.MessageRoleSystem,
		Content:  fmt.Sprintf("Hi %s, I am %s. I will be handling your ticket.", customer.Name, engineer.Name),
	}
	if err := s.store.Messages().Append(ctx, greeting); err != nil {
		s.logger.Warn("greeting message failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func customerActor(userID string) events.Actor {
	return events.Actor{Role: domain.RoleCustomer, UserID: &userID}
}

func roleForMessage(role domain.MessageRole) domain.Role {
	switch role {
	case domain.MessageRoleEngineer:
		return domain.RoleEngineer
	case domain.MessageRoleManager:
		return domain.RoleManager
	case domain.MessageRoleAdmin, domain.MessageRoleSystem:
		return domain.RoleAdmin
	default:
		return domain.RoleCustomer
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
