package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "authguard:sessions:"

// RedisCache caches active-session lists per account. Only derived data
// lives here; the repository stays the source of truth.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

func (r *RedisCache) GetSessions(ctx context.Context, accountID string) ([]domain.Session, bool) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+accountID).Bytes()
	if err != nil {
		return nil, false
	}
	var sessions []domain.Session
	if err := json.Unmarshal(val, &sessions); err != nil {
		return nil, false
	}
	return sessions, true
}

func (r *RedisCache) SetSessions(ctx context.Context, accountID string, sessions []domain.Session, ttl time.Duration) {
	data, err := json.Marshal(sessions)
	if err != nil {
		return
	}
	r.client.Set(ctx, sessionKeyPrefix+accountID, data, ttl)
}

// Invalidate drops the cached list after any session mutation.
func (r *RedisCache) Invalidate(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+accountID).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
