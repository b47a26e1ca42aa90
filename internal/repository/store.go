package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by repositories, satisfied by both
// *pgxpool.Pool and pgx.Tx so the same queries run inside or outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store aggregates all repositories and provides the transaction boundary.
// Lifecycle operations that mutate a ticket together with an engineer's
// counters run inside WithinTx so partial application cannot be observed.
type Store interface {
	Users() UserRepository
	Customers() CustomerRepository
	Engineers() EngineerRepository
	Managers() ManagerRepository
	Products() ProductRepository
	TicketTypes() TicketTypeRepository
	Sessions() SessionRepository
	Tickets() TicketRepository
	Messages() TicketMessageRepository
	Attachments() AttachmentRepository
	PasswordResets() PasswordResetRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &sqlStore{db: pool, pool: pool}
}

func (s *sqlStore) Users() UserRepository                   { return &userRepository{db: s.db} }
func (s *sqlStore) Customers() CustomerRepository           { return &customerRepository{db: s.db} }
func (s *sqlStore) Engineers() EngineerRepository           { return &engineerRepository{db: s.db} }
func (s *sqlStore) Managers() ManagerRepository             { return &managerRepository{db: s.db} }
func (s *sqlStore) Products() ProductRepository             { return &productRepository{db: s.db} }
func (s *sqlStore) TicketTypes() TicketTypeRepository       { return &ticketTypeRepository{db: s.db} }
func (s *sqlStore) Sessions() SessionRepository             { return &sessionRepository{db: s.db} }
func (s *sqlStore) Tickets() TicketRepository               { return &ticketRepository{db: s.db} }
func (s *sqlStore) Messages() TicketMessageRepository       { return &ticketMessageRepository{db: s.db} }
func (s *sqlStore) Attachments() AttachmentRepository       { return &attachmentRepository{db: s.db} }
func (s *sqlStore) PasswordResets() PasswordResetRepository { return &passwordResetRepository{db: s.db} }

// WithinTx runs fn against a store bound to a single transaction. Calls on an
// already-transactional store reuse the open transaction.
func (s *sqlStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&sqlStore{db: tx})
	})
}
