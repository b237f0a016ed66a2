package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
)

// sessionCacheTTL bounds staleness of cached session lists between
// mutations on other nodes.
const sessionCacheTTL = 30 * time.Second

type sessionService struct {
	repo     ports.Repository
	activity ports.ActivityService
	cache    ports.SessionCache // may be nil
}

func NewSessionService(repo ports.Repository, activity ports.ActivityService, cache ports.SessionCache) ports.SessionService {
	return &sessionService{repo: repo, activity: activity, cache: cache}
}

func (s *sessionService) Create(ctx context.Context, accountID, deviceInfo, ipAddress, location string) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		DeviceInfo:   deviceInfo,
		IPAddress:    ipAddress,
		Location:     location,
		Active:       true,
		LastActivity: now,
		CreatedAt:    now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.invalidate(ctx, accountID)

	meta := domain.ActivityMeta{IPAddress: ipAddress, Location: location}
	if err := s.activity.Log(ctx, accountID, "New session created", meta); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, accountID string) ([]domain.Session, error) {
	if s.cache != nil {
		if sessions, ok := s.cache.GetSessions(ctx, accountID); ok {
			return sessions, nil
		}
	}

	sessions, err := s.repo.ListSessions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetSessions(ctx, accountID, sessions, sessionCacheTTL)
	}
	return sessions, nil
}

// Revoke deactivates one session. Revoking a session that is absent,
// owned by another account, or already inactive reports false.
func (s *sessionService) Revoke(ctx context.Context, accountID, sessionID string) (bool, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if session == nil || session.AccountID != accountID || !session.Active {
		return false, nil
	}

	session.Active = false
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return false, err
	}
	s.invalidate(ctx, accountID)

	if err := s.activity.Log(ctx, accountID, "Session revoked", domain.ActivityMeta{}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *sessionService) RevokeAll(ctx context.Context, accountID string) (int, error) {
	count, err := s.repo.RevokeAllSessions(ctx, accountID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, accountID)

	msg := fmt.Sprintf("All sessions revoked (%d sessions)", count)
	if err := s.activity.Log(ctx, accountID, msg, domain.ActivityMeta{}); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *sessionService) invalidate(ctx context.Context, accountID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, accountID); err != nil {
			// A stale cache entry expires within sessionCacheTTL anyway.
			return
		}
	}
}
