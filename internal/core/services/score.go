package services

import (
	"context"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
)

// Score weights. The result is clamped to [0, 100].
const (
	scoreBase             = 50
	scoreStrongPassword   = 15
	scoreHasAPIKeys       = 10
	scoreRecentActivity   = 15
	scoreTooManySessions  = 10 // subtracted
	recentActivityWindow  = 7 * 24 * time.Hour
	riskySessionThreshold = 3
)

// scoreService derives the 0-100 security score. It is a pure function
// of current state: no caching, fully recomputed on every call.
type scoreService struct {
	repo ports.Repository
}

func NewScoreService(repo ports.Repository) ports.ScoreService {
	return &scoreService{repo: repo}
}

func (s *scoreService) Score(ctx context.Context, accountID string) (int, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, domain.ErrNotFound
	}

	activeKeys, err := s.repo.CountActiveAPIKeys(ctx, accountID)
	if err != nil {
		return 0, err
	}
	recent, err := s.repo.CountActivitiesSince(ctx, accountID, time.Now().Add(-recentActivityWindow))
	if err != nil {
		return 0, err
	}
	activeSessions, err := s.repo.CountActiveSessions(ctx, accountID)
	if err != nil {
		return 0, err
	}

	score := scoreBase
	if account.StrongPassword {
		score += scoreStrongPassword
	}
	if activeKeys > 0 {
		score += scoreHasAPIKeys
	}
	if recent > 0 {
		score += scoreRecentActivity
	}
	if activeSessions > riskySessionThreshold {
		score -= scoreTooManySessions
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

func (s *scoreService) Stats(ctx context.Context, accountID string) (*domain.AccountStats, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}

	logins, err := s.repo.CountLoginActivities(ctx, accountID)
	if err != nil {
		return nil, err
	}
	activeSessions, err := s.repo.CountActiveSessions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	activeKeys, err := s.repo.CountActiveAPIKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}
	score, err := s.Score(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &domain.AccountStats{
		TotalLogins:    logins,
		ActiveSessions: activeSessions,
		APIKeysCount:   activeKeys,
		SecurityScore:  score,
		AccountAge:     int(time.Since(account.CreatedAt).Hours() / 24),
	}, nil
}
