package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// SessionService manages support sessions. Last-activity is mirrored into
// Redis so activity probes do not hit Postgres.
type SessionService struct {
	store  repository.Store
	redis  *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionService builds the service.
func NewSessionService(store repository.Store, redisClient *redis.Client, logger *zap.Logger) *SessionService {
	return &SessionService{store: store, redis: redisClient, logger: logger, now: time.Now}
}

const sessionActivityTTL = 24 * time.Hour

// Start opens a new session for a customer.
func (s *SessionService) Start(ctx context.Context, customerID string) (*domain.Session, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": customerID})
		}
		return nil, err
	}

	session := &domain.Session{
		CustomerID: customerID,
		StartedAt:  s.now().UTC(),
	}
	if err := s.store.Sessions().Create(ctx, session); err != nil {
		return nil, err
	}
	s.cacheActivity(ctx, session.ID, session.StartedAt)
	return session, nil
}

// Get fetches a session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.store.Sessions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("session", map[string]any{"session_id": id})
		}
		return nil, err
	}
	return session, nil
}

// ListByCustomer returns a customer's sessions, newest first.
func (s *SessionService) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Session, error) {
	return s.store.Sessions().ListByCustomer(ctx, customerID, limit, offset)
}

// Touch records activity on an open session.
func (s *SessionService) Touch(ctx context.Context, id string) error {
	at := s.now().UTC()
	if err := s.store.Sessions().Touch(ctx, id, at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("session not open", map[string]any{"session_id": id})
		}
		return err
	}
	s.cacheActivity(ctx, id, at)
	return nil
}

// End closes an open session.
func (s *SessionService) End(ctx context.Context, id string) error {
	if err := s.store.Sessions().End(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("session not open", map[string]any{"session_id": id})
		}
		return err
	}
	if s.redis != nil {
		s.redis.Del(ctx, activityKey(id))
	}
	return nil
}

// LastActivity reads the cached activity timestamp, falling back to Postgres
// on a cache miss.
func (s *SessionService) LastActivity(ctx context.Context, id string) (time.Time, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, activityKey(id)).Result(); err == nil {
			if at, parseErr := time.Parse(time.RFC3339Nano, val); parseErr == nil {
				return at, nil
			}
		}
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return session.LastActivity, nil
}

func (s *SessionService) cacheActivity(ctx context.Context, id string, at time.Time) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, activityKey(id), at.Format(time.RFC3339Nano), sessionActivityTTL).Err(); err != nil {
		s.logger.Debug("session activity cache write failed", zap.String("session_id", id), zap.Error(err))
	}
}

func activityKey(sessionID string) string {
	return fmt.Sprintf("session:activity:%s", sessionID)
}
