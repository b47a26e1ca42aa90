package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/events"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

func newTestTicketService(store *fakeStore) *TicketService {
	svc := NewTicketService(TicketDependencies{
		Store:      store,
		Dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
		Logger:     zap.NewNop(),
		StaleAfter: 72 * time.Hour,
	})
	svc.now = func() time.Time { return store.state.clock }
	return svc
}

func seedCustomer(store *fakeStore, id string, tier domain.CustomerTier) *domain.Customer {
	customer := domain.Customer{ID: id, UserID: "usr-" + id, Name: "Alice", Email: id + "@example.com", Tier: tier}
	store.state.customers[id] = customer
	return &customer
}

func seedSession(store *fakeStore, id, customerID string) *domain.Session {
	session := domain.Session{
		ID:           id,
		CustomerID:   customerID,
		StartedAt:    store.state.clock,
		LastActivity: store.state.clock,
	}
	store.state.sessions[id] = session
	return &session
}

func seedTicketType(store *fakeStore, id string) {
	store.state.ticketTypes[id] = domain.TicketType{ID: id, Name: "technical"}
}

func seedEngineer(store *fakeStore, id string, category domain.Category, level, current, max int) {
	store.state.engineers[id] = domain.Engineer{
		ID:             id,
		UserID:         "usr-" + id,
		Name:           "Engineer " + id,
		Email:          id + "@example.com",
		Category:       category,
		Level:          level,
		CurrentTickets: current,
		MaxTickets:     max,
	}
}

func createInput(customerID, sessionID string, category domain.Category) TicketCreateInput {
	return TicketCreateInput{
		CustomerID:  customerID,
		SessionID:   sessionID,
		TypeID:      "typ-1",
		Title:       "Screen frozen",
		Description: "The touchscreen stopped responding mid-drive.",
		Category:    &category,
	}
}

func seedBaseline(store *fakeStore, tier domain.CustomerTier) {
	seedCustomer(store, "cus-1", tier)
	seedSession(store, "ses-1", "cus-1")
	seedTicketType(store, "typ-1")
}

func TestCreateTicketAssignsLeastLoadedEngineer(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierVIP)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 2, 5)
	seedEngineer(store, "eng-b", domain.CategoryModelS, 1, 1, 5)

	ticket, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", domain.CategoryModelS))
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	require.Equal(t, domain.UrgencyCritical, ticket.Urgency)
	require.NotNil(t, ticket.EngineerID)
	require.Equal(t, "eng-b", *ticket.EngineerID)
	require.Equal(t, 2, store.state.engineers["eng-b"].CurrentTickets)
	require.Equal(t, 2, store.state.engineers["eng-a"].CurrentTickets)

	messages, err := store.Messages().ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, domain.MessageRoleSystem, messages[0].Role)
	require.Equal(t, "Hi Alice, I am Engineer eng-b. I will be handling your ticket.", messages[0].Content)
}

func TestCreateTicketBreaksLoadTiesByID(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-b", domain.CategoryModel3, 1, 1, 5)
	seedEngineer(store, "eng-a", domain.CategoryModel3, 1, 1, 5)

	ticket, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", domain.CategoryModel3))
	require.NoError(t, err)
	require.Equal(t, "eng-a", *ticket.EngineerID)
	require.Equal(t, domain.UrgencyNormal, ticket.Urgency)
}

func TestCreateTicketFallsBackToAnyCategory(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierPremium)
	seedEngineer(store, "eng-full", domain.CategoryModelS, 1, 3, 3)
	seedEngineer(store, "eng-free", domain.CategoryModelY, 1, 0, 3)

	ticket, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", domain.CategoryModelS))
	require.NoError(t, err)

	require.Equal(t, "eng-free", *ticket.EngineerID)
	require.Equal(t, domain.CategoryModelY, ticket.Category)
	require.Equal(t, 1, store.state.engineers["eng-free"].CurrentTickets)
}

func TestCreateTicketNoEngineerPersistsNothing(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-full", domain.CategoryModelS, 1, 3, 3)
	seedEngineer(store, "eng-senior", domain.CategoryModelS, 2, 0, 3)

	_, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", domain.CategoryModelS))
	require.True(t, apperrors.IsCode(err, "NO_ENGINEER_AVAILABLE"))

	require.Empty(t, store.state.tickets)
	require.Empty(t, store.state.messages)
	require.Equal(t, 3, store.state.engineers["eng-full"].CurrentTickets)
	require.Equal(t, 0, store.state.engineers["eng-senior"].CurrentTickets)
	require.Equal(t, store.state.clock, store.state.sessions["ses-1"].LastActivity)
}

func TestCreateTicketDerivesCategoryFromProduct(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryCybertruck, 1, 0, 3)

	input := createInput("cus-1", "ses-1", domain.CategoryModelS)
	input.Category = nil
	input.ProductName = "Cybertruck"

	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryCybertruck, ticket.Category)
}

func TestCreateTicketRejectsEndedSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)

	ended := store.state.clock.Add(-time.Hour)
	session := store.state.sessions["ses-1"]
	session.EndedAt = &ended
	store.state.sessions["ses-1"] = session

	_, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", domain.CategoryModelS))
	require.True(t, apperrors.IsCode(err, "INVALID_STATE"))
	require.Empty(t, store.state.tickets)
}

func TestCreateTicketRejectsForeignSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedCustomer(store, "cus-2", domain.TierStandard)
	seedSession(store, "ses-2", "cus-2")
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)

	_, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-2", domain.CategoryModelS))
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func mustCreateTicket(t *testing.T, svc *TicketService, store *fakeStore, category domain.Category) *domain.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), createInput("cus-1", "ses-1", category))
	require.NoError(t, err)
	return ticket
}

func TestAssignTicketMovesSlotToNewEngineer(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	seedEngineer(store, "eng-b", domain.CategoryModelX, 2, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	actor := events.Actor{Role: domain.RoleManager}
	updated, err := svc.AssignTicket(context.Background(), ticket.ID, "eng-b", actor)
	require.NoError(t, err)

	require.Equal(t, "eng-b", *updated.EngineerID)
	require.Equal(t, domain.CategoryModelX, updated.Category)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)
	require.Equal(t, 1, store.state.engineers["eng-b"].CurrentTickets)
}

func TestAssignTicketToFullEngineerLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	seedEngineer(store, "eng-full", domain.CategoryModelS, 2, 2, 2)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	_, err := svc.AssignTicket(context.Background(), ticket.ID, "eng-full", events.Actor{Role: domain.RoleAdmin})
	require.True(t, apperrors.IsCode(err, "CAPACITY_EXCEEDED"))

	stored := store.state.tickets[ticket.ID]
	require.Equal(t, "eng-a", *stored.EngineerID)
	require.Equal(t, 1, store.state.engineers["eng-a"].CurrentTickets)
	require.Equal(t, 2, store.state.engineers["eng-full"].CurrentTickets)
}

func TestEscalateClaimsNextLevelAndReleasesCurrent(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-l1", domain.CategoryModelS, 1, 0, 3)
	seedEngineer(store, "eng-l2", domain.CategoryModelS, 2, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	updated, err := svc.EscalateTicket(context.Background(), ticket.ID, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Equal(t, "eng-l2", *updated.EngineerID)
	require.Equal(t, 0, store.state.engineers["eng-l1"].CurrentTickets)
	require.Equal(t, 1, store.state.engineers["eng-l2"].CurrentTickets)
}

func TestEscalateWithoutCapacityParksTicketEscalated(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-l1", domain.CategoryModelS, 1, 0, 3)
	seedEngineer(store, "eng-l2", domain.CategoryModelS, 2, 2, 2)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	updated, err := svc.EscalateTicket(context.Background(), ticket.ID, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusEscalated, updated.Status)
	require.Equal(t, "eng-l1", *updated.EngineerID)
	require.Equal(t, 1, store.state.engineers["eng-l1"].CurrentTickets)
	require.Equal(t, 2, store.state.engineers["eng-l2"].CurrentTickets)
}

func TestEscalateRetriesFromEscalatedOnceCapacityFrees(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-l1", domain.CategoryModelS, 1, 0, 3)
	seedEngineer(store, "eng-l2", domain.CategoryModelS, 2, 2, 2)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	_, err := svc.EscalateTicket(context.Background(), ticket.ID, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)

	// A senior slot frees up, the retry completes the hand-off.
	senior := store.state.engineers["eng-l2"]
	senior.CurrentTickets = 1
	store.state.engineers["eng-l2"] = senior

	updated, err := svc.EscalateTicket(context.Background(), ticket.ID, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Equal(t, "eng-l2", *updated.EngineerID)
	require.Equal(t, 0, store.state.engineers["eng-l1"].CurrentTickets)
	require.Equal(t, 2, store.state.engineers["eng-l2"].CurrentTickets)
}

func TestEscalateAtTopLevelIsExhausted(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)

	engineerID := "eng-l3"
	store.state.engineers[engineerID] = domain.Engineer{
		ID: engineerID, UserID: "usr-" + engineerID, Name: "Engineer", Email: engineerID + "@example.com",
		Category: domain.CategoryModelS, Level: 3, CurrentTickets: 1, MaxTickets: 3,
	}
	store.state.tickets["tkt-1"] = domain.Ticket{
		ID: "tkt-1", Title: "t", Description: "d",
		Category: domain.CategoryModelS, Urgency: domain.UrgencyNormal,
		Status: domain.TicketStatusInProgress, CustomerID: "cus-1",
		EngineerID: &engineerID, TypeID: "typ-1", SessionID: "ses-1",
		CreatedAt: store.state.clock, UpdatedAt: store.state.clock,
	}

	_, err := svc.EscalateTicket(context.Background(), "tkt-1", events.Actor{Role: domain.RoleManager})
	require.True(t, apperrors.IsCode(err, "ESCALATION_EXHAUSTED"))
	require.Equal(t, domain.TicketStatusInProgress, store.state.tickets["tkt-1"].Status)
	require.Equal(t, 1, store.state.engineers[engineerID].CurrentTickets)
}

func TestResolveReleasesSlotExactlyOnce(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	resolved, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)

	require.Nil(t, resolved.EngineerID)
	require.NotNil(t, resolved.ResolvedAt)
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)

	// A resolved ticket is terminal, so there is no second release path.
	_, err = svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed, events.Actor{Role: domain.RoleEngineer})
	require.True(t, apperrors.IsCode(err, "INVALID_STATE"))
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)
}

func TestCloseEscalatedTicketReleasesHeldSlot(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-l1", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	_, err := svc.EscalateTicket(context.Background(), ticket.ID, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)
	require.Equal(t, 1, store.state.engineers["eng-l1"].CurrentTickets)

	closed, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed, events.Actor{Role: domain.RoleManager})
	require.NoError(t, err)
	require.Nil(t, closed.EngineerID)
	require.Equal(t, 0, store.state.engineers["eng-l1"].CurrentTickets)
}

func TestAppendMessageBumpsActivity(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	later := store.state.clock.Add(2 * time.Hour)
	svc.now = func() time.Time { return later }

	authorID := "usr-cus-1"
	message, err := svc.AppendMessage(context.Background(), ticket.ID, domain.MessageRoleCustomer, &authorID, "  Any update?  ")
	require.NoError(t, err)
	require.Equal(t, "Any update?", message.Content)
	require.Equal(t, later, store.state.tickets[ticket.ID].UpdatedAt)
}

func TestAppendMessageRejectsClosedTicket(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	_, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed, events.Actor{Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.AppendMessage(context.Background(), ticket.ID, domain.MessageRoleCustomer, nil, "hello?")
	require.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestAutoCloseStaleSweepIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	stale := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	// Second ticket stays active past the cutoff.
	store.state.clock = store.state.clock.Add(5 * 24 * time.Hour)
	svc.now = func() time.Time { return store.state.clock }
	fresh := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	closed, err := svc.AutoCloseStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	require.Equal(t, domain.TicketStatusClosed, store.state.tickets[stale.ID].Status)
	require.Nil(t, store.state.tickets[stale.ID].EngineerID)
	require.Equal(t, domain.TicketStatusInProgress, store.state.tickets[fresh.ID].Status)
	require.Equal(t, 1, store.state.engineers["eng-a"].CurrentTickets)

	messages, err := store.Messages().ListByTicket(context.Background(), stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MessageRoleSystem, messages[len(messages)-1].Role)
	require.Equal(t, "Ticket closed automatically due to inactivity.", messages[len(messages)-1].Content)

	closed, err = svc.AutoCloseStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, closed)
	require.Equal(t, 1, store.state.engineers["eng-a"].CurrentTickets)
}

func TestAutoCloseStaleClosesResolvedTickets(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	_, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, events.Actor{Role: domain.RoleEngineer})
	require.NoError(t, err)
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)

	store.state.clock = store.state.clock.Add(10 * 24 * time.Hour)

	closed, err := svc.AutoCloseStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	stored := store.state.tickets[ticket.ID]
	require.Equal(t, domain.TicketStatusClosed, stored.Status)
	require.NotNil(t, stored.ResolvedAt)
	require.Nil(t, stored.EngineerID)
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)

	closed, err = svc.AutoCloseStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, closed)
}

func TestDeleteTicketReleasesSlotAndChildren(t *testing.T) {
	store := newFakeStore()
	svc := newTestTicketService(store)
	seedBaseline(store, domain.TierStandard)
	seedEngineer(store, "eng-a", domain.CategoryModelS, 1, 0, 3)
	ticket := mustCreateTicket(t, svc, store, domain.CategoryModelS)

	require.NoError(t, svc.DeleteTicket(context.Background(), ticket.ID))

	require.Empty(t, store.state.tickets)
	require.Equal(t, 0, store.state.engineers["eng-a"].CurrentTickets)
	messages, err := store.Messages().ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Empty(t, messages)
}
