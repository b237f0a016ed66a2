package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
)

// DefaultActivityLimit bounds ListRecent when the caller passes no limit.
const DefaultActivityLimit = 50

// activityService is the append-only security ledger. Entries are never
// mutated or deleted.
type activityService struct {
	repo ports.Repository
}

func NewActivityService(repo ports.Repository) ports.ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Log(ctx context.Context, accountID, activity string, meta domain.ActivityMeta) error {
	entry := &domain.Activity{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Activity:  activity,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Location:  meta.Location,
		Timestamp: time.Now(),
	}
	return s.repo.SaveActivity(ctx, entry)
}

func (s *activityService) ListRecent(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return s.repo.ListActivities(ctx, accountID, limit)
}
