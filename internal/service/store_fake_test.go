package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// fakeStore is an in-memory repository.Store. WithinTx snapshots the state
// and restores it when fn fails, mirroring transactional rollback.
type fakeStore struct {
	state *fakeState
}

type fakeState struct {
	seq         int
	users       map[string]domain.User
	customers   map[string]domain.Customer
	engineers   map[string]domain.Engineer
	managers    map[string]domain.Manager
	products    map[string]domain.Product
	ticketTypes map[string]domain.TicketType
	sessions    map[string]domain.Session
	tickets     map[string]domain.Ticket
	messages    []domain.TicketMessage
	attachments map[string]domain.TicketAttachment
	resets      map[string]domain.PasswordResetToken
	clock       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: &fakeState{
		users:       map[string]domain.User{},
		customers:   map[string]domain.Customer{},
		engineers:   map[string]domain.Engineer{},
		managers:    map[string]domain.Manager{},
		products:    map[string]domain.Product{},
		ticketTypes: map[string]domain.TicketType{},
		sessions:    map[string]domain.Session{},
		tickets:     map[string]domain.Ticket{},
		attachments: map[string]domain.TicketAttachment{},
		resets:      map[string]domain.PasswordResetToken{},
		clock:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func (s *fakeState) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func (s *fakeState) clone() *fakeState {
	dup := &fakeState{
		seq:         s.seq,
		users:       map[string]domain.User{},
		customers:   map[string]domain.Customer{},
		engineers:   map[string]domain.Engineer{},
		managers:    map[string]domain.Manager{},
		products:    map[string]domain.Product{},
		ticketTypes: map[string]domain.TicketType{},
		sessions:    map[string]domain.Session{},
		tickets:     map[string]domain.Ticket{},
		attachments: map[string]domain.TicketAttachment{},
		resets:      map[string]domain.PasswordResetToken{},
		messages:    append([]domain.TicketMessage{}, s.messages...),
		clock:       s.clock,
	}
	for k, v := range s.users {
		dup.users[k] = v
	}
	for k, v := range s.customers {
		dup.customers[k] = v
	}
	for k, v := range s.engineers {
		dup.engineers[k] = v
	}
	for k, v := range s.managers {
		dup.managers[k] = v
	}
	for k, v := range s.products {
		dup.products[k] = v
	}
	for k, v := range s.ticketTypes {
		dup.ticketTypes[k] = v
	}
	for k, v := range s.sessions {
		dup.sessions[k] = v
	}
	for k, v := range s.tickets {
		dup.tickets[k] = v
	}
	for k, v := range s.attachments {
		dup.attachments[k] = v
	}
	for k, v := range s.resets {
		dup.resets[k] = v
	}
	return dup
}

func (s *fakeStore) Users() repository.UserRepository                   { return &fakeUserRepo{s.state} }
func (s *fakeStore) Customers() repository.CustomerRepository           { return &fakeCustomerRepo{s.state} }
func (s *fakeStore) Engineers() repository.EngineerRepository           { return &fakeEngineerRepo{s.state} }
func (s *fakeStore) Managers() repository.ManagerRepository             { return &fakeManagerRepo{s.state} }
func (s *fakeStore) Products() repository.ProductRepository             { return &fakeProductRepo{s.state} }
func (s *fakeStore) TicketTypes() repository.TicketTypeRepository       { return &fakeTicketTypeRepo{s.state} }
func (s *fakeStore) Sessions() repository.SessionRepository             { return &fakeSessionRepo{s.state} }
func (s *fakeStore) Tickets() repository.TicketRepository               { return &fakeTicketRepo{s.state} }
func (s *fakeStore) Messages() repository.TicketMessageRepository       { return &fakeMessageRepo{s.state} }
func (s *fakeStore) Attachments() repository.AttachmentRepository       { return &fakeAttachmentRepo{s.state} }
func (s *fakeStore) PasswordResets() repository.PasswordResetRepository { return &fakeResetRepo{s.state} }

func (s *fakeStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	snapshot := s.state.clone()
	if err := fn(s); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

// --- engineers ---

type fakeEngineerRepo struct{ state *fakeState }

func (r *fakeEngineerRepo) Create(_ context.Context, engineer *domain.Engineer) error {
	if engineer.ID == "" {
		engineer.ID = r.state.nextID("eng")
	}
	engineer.CreatedAt = r.state.clock
	engineer.UpdatedAt = r.state.clock
	r.state.engineers[engineer.ID] = *engineer
	return nil
}

func (r *fakeEngineerRepo) Update(_ context.Context, engineer *domain.Engineer) error {
	if _, ok := r.state.engineers[engineer.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.engineers[engineer.ID] = *engineer
	return nil
}

func (r *fakeEngineerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.engineers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.engineers, id)
	return nil
}

func (r *fakeEngineerRepo) GetByID(_ context.Context, id string) (*domain.Engineer, error) {
	engineer, ok := r.state.engineers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &engineer, nil
}

func (r *fakeEngineerRepo) GetByEmail(_ context.Context, email string) (*domain.Engineer, error) {
	for _, engineer := range r.state.engineers {
		if engineer.Email == email {
			e := engineer
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEngineerRepo) List(_ context.Context, filter repository.EngineerFilter) ([]domain.Engineer, error) {
	var out []domain.Engineer
	for _, engineer := range r.state.engineers {
		if filter.Category != nil && engineer.Category != *filter.Category {
			continue
		}
		if filter.Level != nil && engineer.Level != *filter.Level {
			continue
		}
		if filter.AvailableOnly && !engineer.Available() {
			continue
		}
		out = append(out, engineer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEngineerRepo) candidates(category *domain.Category, match func(domain.Engineer) bool) []domain.Engineer {
	var out []domain.Engineer
	for _, engineer := range r.state.engineers {
		if category != nil && engineer.Category != *category {
			continue
		}
		if match(engineer) {
			out = append(out, engineer)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentTickets != out[j].CurrentTickets {
			return out[i].CurrentTickets < out[j].CurrentTickets
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeEngineerRepo) FindLeastLoadedAvailable(_ context.Context, category domain.Category, level int) (*domain.Engineer, error) {
	out := r.candidates(&category, func(e domain.Engineer) bool {
		return e.Level == level && e.Available()
	})
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &out[0], nil
}

func (r *fakeEngineerRepo) FindHigherLevel(_ context.Context, category domain.Category, level int) ([]domain.Engineer, error) {
	out := r.candidates(&category, func(e domain.Engineer) bool {
		return e.Level > level && e.Available()
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].CurrentTickets != out[j].CurrentTickets {
			return out[i].CurrentTickets < out[j].CurrentTickets
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeEngineerRepo) ClaimLeastLoaded(_ context.Context, category *domain.Category, level int) (*domain.Engineer, error) {
	out := r.candidates(category, func(e domain.Engineer) bool {
		return e.Level == level && e.Available()
	})
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	chosen := out[0]
	chosen.CurrentTickets++
	r.state.engineers[chosen.ID] = chosen
	return &chosen, nil
}

func (r *fakeEngineerRepo) ReserveSlot(_ context.Context, id string) error {
	engineer, ok := r.state.engineers[id]
	if !ok {
		return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
	}
	if !engineer.Available() {
		return apperrors.NewCapacityExceeded(id)
	}
	engineer.CurrentTickets++
	r.state.engineers[id] = engineer
	return nil
}

func (r *fakeEngineerRepo) ReleaseSlot(_ context.Context, id string) error {
	engineer, ok := r.state.engineers[id]
	if !ok {
		return apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
	}
	if engineer.CurrentTickets == 0 {
		return apperrors.NewInvalidState("engineer has no held slots to release", map[string]any{"engineer_id": id})
	}
	engineer.CurrentTickets--
	r.state.engineers[id] = engineer
	return nil
}

// --- tickets ---

type fakeTicketRepo struct{ state *fakeState }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = r.state.nextID("tkt")
	}
	ticket.CreatedAt = r.state.clock
	ticket.UpdatedAt = r.state.clock
	r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.state.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = r.state.clock
	r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.state.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.state.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.EngineerID != nil && (ticket.EngineerID == nil || *ticket.EngineerID != *filter.EngineerID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		if filter.Urgency != nil && ticket.Urgency != *filter.Urgency {
			continue
		}
		if filter.TypeID != nil && ticket.TypeID != *filter.TypeID {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) ListStale(_ context.Context, updatedBefore time.Time) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.state.tickets {
		if ticket.Status != domain.TicketStatusClosed && ticket.UpdatedAt.Before(updatedBefore) {
			out = append(out, ticket)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) Touch(_ context.Context, id string, at time.Time) error {
	ticket, ok := r.state.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = at
	r.state.tickets[id] = ticket
	return nil
}

// --- messages ---

type fakeMessageRepo struct{ state *fakeState }

func (r *fakeMessageRepo) Append(_ context.Context, message *domain.TicketMessage) error {
	if message.ID == "" {
		message.ID = r.state.nextID("msg")
	}
	message.CreatedAt = r.state.clock
	r.state.messages = append(r.state.messages, *message)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var out []domain.TicketMessage
	for _, message := range r.state.messages {
		if message.TicketID == ticketID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteByTicket(_ context.Context, ticketID string) error {
	kept := r.state.messages[:0]
	for _, message := range r.state.messages {
		if message.TicketID != ticketID {
			kept = append(kept, message)
		}
	}
	r.state.messages = kept
	return nil
}

// --- sessions ---

type fakeSessionRepo struct{ state *fakeState }

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = r.state.nextID("ses")
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = r.state.clock
	}
	session.LastActivity = session.StartedAt
	r.state.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	session, ok := r.state.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &session, nil
}

func (r *fakeSessionRepo) ListByCustomer(_ context.Context, customerID string, _, _ int) ([]domain.Session, error) {
	var out []domain.Session
	for _, session := range r.state.sessions {
		if session.CustomerID == customerID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Touch(_ context.Context, id string, at time.Time) error {
	session, ok := r.state.sessions[id]
	if !ok || session.EndedAt != nil {
		return pgx.ErrNoRows
	}
	session.LastActivity = at
	r.state.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) End(_ context.Context, id string, at time.Time) error {
	session, ok := r.state.sessions[id]
	if !ok || session.EndedAt != nil {
		return pgx.ErrNoRows
	}
	session.EndedAt = &at
	session.LastActivity = at
	r.state.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.sessions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.sessions, id)
	return nil
}

// --- customers, users, ticket types and the rest ---

type fakeCustomerRepo struct{ state *fakeState }

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = r.state.nextID("cus")
	}
	r.state.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *domain.Customer) error {
	if _, ok := r.state.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.customers, id)
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := r.state.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &customer, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, customer := range r.state.customers {
		if customer.Email == email {
			c := customer
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCustomerRepo) GetByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	for _, customer := range r.state.customers {
		if customer.UserID == userID {
			c := customer
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCustomerRepo) List(_ context.Context, _, _ int) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, customer := range r.state.customers {
		out = append(out, customer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserRepo struct{ state *fakeState }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = r.state.nextID("usr")
	}
	r.state.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.state.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.state.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.state.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, role *domain.Role, _, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.state.users {
		if role != nil && user.Role != *role {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeTicketTypeRepo struct{ state *fakeState }

func (r *fakeTicketTypeRepo) Create(_ context.Context, ticketType *domain.TicketType) error {
	if ticketType.ID == "" {
		ticketType.ID = r.state.nextID("typ")
	}
	r.state.ticketTypes[ticketType.ID] = *ticketType
	return nil
}

func (r *fakeTicketTypeRepo) Update(_ context.Context, ticketType *domain.TicketType) error {
	if _, ok := r.state.ticketTypes[ticketType.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.ticketTypes[ticketType.ID] = *ticketType
	return nil
}

func (r *fakeTicketTypeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.ticketTypes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.ticketTypes, id)
	return nil
}

func (r *fakeTicketTypeRepo) GetByID(_ context.Context, id string) (*domain.TicketType, error) {
	ticketType, ok := r.state.ticketTypes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticketType, nil
}

func (r *fakeTicketTypeRepo) GetByName(_ context.Context, name string) (*domain.TicketType, error) {
	for _, ticketType := range r.state.ticketTypes {
		if ticketType.Name == name {
			t := ticketType
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketTypeRepo) List(_ context.Context) ([]domain.TicketType, error) {
	var out []domain.TicketType
	for _, ticketType := range r.state.ticketTypes {
		out = append(out, ticketType)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketTypeRepo) Count(_ context.Context) (int, error) {
	return len(r.state.ticketTypes), nil
}

type fakeProductRepo struct{ state *fakeState }

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = r.state.nextID("prd")
	}
	r.state.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.state.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.products, id)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, ok := r.state.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

func (r *fakeProductRepo) GetByName(_ context.Context, name string) (*domain.Product, error) {
	for _, product := range r.state.products {
		if product.Name == name {
			p := product
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range r.state.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int, error) {
	return len(r.state.products), nil
}

type fakeManagerRepo struct{ state *fakeState }

func (r *fakeManagerRepo) Create(_ context.Context, manager *domain.Manager) error {
	if manager.ID == "" {
		manager.ID = r.state.nextID("mgr")
	}
	r.state.managers[manager.ID] = *manager
	return nil
}

func (r *fakeManagerRepo) Update(_ context.Context, manager *domain.Manager) error {
	if _, ok := r.state.managers[manager.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.state.managers[manager.ID] = *manager
	return nil
}

func (r *fakeManagerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.managers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.managers, id)
	return nil
}

func (r *fakeManagerRepo) GetByID(_ context.Context, id string) (*domain.Manager, error) {
	manager, ok := r.state.managers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &manager, nil
}

func (r *fakeManagerRepo) GetByEmail(_ context.Context, email string) (*domain.Manager, error) {
	for _, manager := range r.state.managers {
		if manager.Email == email {
			m := manager
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeManagerRepo) List(_ context.Context, _, _ int) ([]domain.Manager, error) {
	var out []domain.Manager
	for _, manager := range r.state.managers {
		out = append(out, manager)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAttachmentRepo struct{ state *fakeState }

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.TicketAttachment) error {
	if attachment.ID == "" {
		attachment.ID = r.state.nextID("att")
	}
	r.state.attachments[attachment.ID] = *attachment
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.TicketAttachment, error) {
	attachment, ok := r.state.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &attachment, nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	var out []domain.TicketAttachment
	for _, attachment := range r.state.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.state.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.state.attachments, id)
	return nil
}

func (r *fakeAttachmentRepo) DeleteByTicket(_ context.Context, ticketID string) error {
	for id, attachment := range r.state.attachments {
		if attachment.TicketID == ticketID {
			delete(r.state.attachments, id)
		}
	}
	return nil
}

type fakeResetRepo struct{ state *fakeState }

func (r *fakeResetRepo) Create(_ context.Context, token *domain.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = r.state.nextID("rst")
	}
	r.state.resets[token.ID] = *token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*domain.PasswordResetToken, error) {
	for _, token := range r.state.resets {
		if token.Token == tokenStr {
			t := token
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.state.resets[id]
	if !ok || token.UsedAt != nil {
		return pgx.ErrNoRows
	}
	now := r.state.clock
	token.UsedAt = &now
	r.state.resets[id] = token
	return nil
}

func (r *fakeResetRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var count int64
	for id, token := range r.state.resets {
		if token.ExpiresAt.Before(before) {
			delete(r.state.resets, id)
			count++
		}
	}
	return count, nil
}
