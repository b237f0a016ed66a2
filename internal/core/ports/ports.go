package ports

import (
	"context"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
)

// Repository is the storage contract shared by the in-memory reference
// store and the PostgreSQL adapter. Lookups return (nil, nil) when the
// record does not exist; only infrastructure failures produce errors.
//
// CreateAccount must treat the uniqueness check and the insert as one
// atomic step: two concurrent registrations with the same email or
// username must never both succeed.
type Repository interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error

	SaveActivity(ctx context.Context, entry *domain.Activity) error
	ListActivities(ctx context.Context, accountID string, limit int) ([]domain.Activity, error)
	CountActivitiesSince(ctx context.Context, accountID string, since time.Time) (int, error)
	CountLoginActivities(ctx context.Context, accountID string) (int, error)

	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	GetAPIKey(ctx context.Context, id string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context, accountID string) ([]domain.APIKey, error)
	UpdateAPIKey(ctx context.Context, key *domain.APIKey) error
	CountActiveAPIKeys(ctx context.Context, accountID string) (int, error)

	// The secret index maps a plaintext API secret to its owner for O(1)
	// validation. It is transient by contract: never written to durable
	// storage, destroyed on revoke.
	IndexAPIKeySecret(ctx context.Context, secret, accountID, keyID string) error
	LookupAPIKeySecret(ctx context.Context, secret string) (accountID, keyID string, err error)
	DeleteAPIKeySecretIndex(ctx context.Context, keyID string) error

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context, accountID string) ([]domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	RevokeAllSessions(ctx context.Context, accountID string) (int, error)
	CountActiveSessions(ctx context.Context, accountID string) (int, error)

	Ping(ctx context.Context) error
}

// AccountService is the registration/login authority.
type AccountService interface {
	Register(ctx context.Context, username, email, password string, meta domain.ActivityMeta) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string, meta domain.ActivityMeta) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// TokenService issues and verifies signed bearer tokens. Verification is
// pure: it consults no store, so a revoked session does not invalidate a
// still-unexpired token.
type TokenService interface {
	Issue(account *domain.Account) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

type APIKeyService interface {
	Create(ctx context.Context, accountID, name string, expiresAt *time.Time) (*domain.APIKey, string, error)
	List(ctx context.Context, accountID string) ([]domain.APIKey, error)
	Revoke(ctx context.Context, accountID, keyID string) (bool, error)
	Validate(ctx context.Context, secret string) (accountID, keyID string, err error)
}

type SessionService interface {
	Create(ctx context.Context, accountID, deviceInfo, ipAddress, location string) (*domain.Session, error)
	List(ctx context.Context, accountID string) ([]domain.Session, error)
	Revoke(ctx context.Context, accountID, sessionID string) (bool, error)
	RevokeAll(ctx context.Context, accountID string) (int, error)
}

type ActivityService interface {
	Log(ctx context.Context, accountID, activity string, meta domain.ActivityMeta) error
	ListRecent(ctx context.Context, accountID string, limit int) ([]domain.Activity, error)
}

type ScoreService interface {
	Score(ctx context.Context, accountID string) (int, error)
	Stats(ctx context.Context, accountID string) (*domain.AccountStats, error)
}

// SessionCache is an optional read-through cache for active session
// lists. Implementations must be safe to skip entirely (nil cache).
type SessionCache interface {
	GetSessions(ctx context.Context, accountID string) ([]domain.Session, bool)
	SetSessions(ctx context.Context, accountID string, sessions []domain.Session, ttl time.Duration)
	Invalidate(ctx context.Context, accountID string) error
	Ping(ctx context.Context) error
}
