package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
)

// MemoryRepository is the reference store. It backs development, tests
// and any deployment that can afford to lose state on restart. All
// methods honour the (nil, nil) not-found convention of the port.
type MemoryRepository struct {
	mu sync.RWMutex

	accounts   map[string]domain.Account
	byEmail    map[string]string
	byUsername map[string]string

	activities []domain.Activity

	apiKeys   map[string]domain.APIKey
	secretIdx map[string]secretRef

	sessions map[string]domain.Session
}

type secretRef struct {
	accountID string
	keyID     string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts:   make(map[string]domain.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		apiKeys:    make(map[string]domain.APIKey),
		secretIdx:  make(map[string]secretRef),
		sessions:   make(map[string]domain.Session),
	}
}

func (m *MemoryRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.accounts[id]; ok {
		return &account, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byEmail[email]; ok {
		account := m.accounts[id]
		return &account, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byUsername[username]; ok {
		account := m.accounts[id]
		return &account, nil
	}
	return nil, nil
}

// CreateAccount checks both uniqueness constraints and inserts under a
// single write lock, so concurrent registrations cannot both pass.
func (m *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if _, ok := m.byUsername[account.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	m.accounts[account.ID] = *account
	m.byEmail[account.Email] = account.ID
	m.byUsername[account.Username] = account.ID
	return nil
}

func (m *MemoryRepository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil
	}
	account.LastLogin = &at
	m.accounts[accountID] = account
	return nil
}

func (m *MemoryRepository) SaveActivity(ctx context.Context, entry *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, *entry)
	return nil
}

func (m *MemoryRepository) ListActivities(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Activity
	for i := len(m.activities) - 1; i >= 0; i-- {
		if m.activities[i].AccountID == accountID {
			out = append(out, m.activities[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) CountActivitiesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entry := range m.activities {
		if entry.AccountID == accountID && !entry.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) CountLoginActivities(ctx context.Context, accountID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entry := range m.activities {
		if entry.AccountID == accountID && strings.Contains(entry.Activity, "login") {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys[key.ID] = *key
	return nil
}

func (m *MemoryRepository) GetAPIKey(ctx context.Context, id string) (*domain.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if key, ok := m.apiKeys[id]; ok {
		return &key, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListAPIKeys(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.APIKey
	for _, key := range m.apiKeys {
		if key.AccountID == accountID && key.Active {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) UpdateAPIKey(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apiKeys[key.ID]; !ok {
		return nil
	}
	m.apiKeys[key.ID] = *key
	return nil
}

func (m *MemoryRepository) CountActiveAPIKeys(ctx context.Context, accountID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, key := range m.apiKeys {
		if key.AccountID == accountID && key.Active {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) IndexAPIKeySecret(ctx context.Context, secret, accountID, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secretIdx[secret] = secretRef{accountID: accountID, keyID: keyID}
	return nil
}

func (m *MemoryRepository) LookupAPIKeySecret(ctx context.Context, secret string) (string, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ref, ok := m.secretIdx[secret]; ok {
		return ref.accountID, ref.keyID, nil
	}
	return "", "", nil
}

func (m *MemoryRepository) DeleteAPIKeySecretIndex(ctx context.Context, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for secret, ref := range m.secretIdx {
		if ref.keyID == keyID {
			delete(m.secretIdx, secret)
		}
	}
	return nil
}

func (m *MemoryRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *MemoryRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[id]; ok {
		return &session, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListSessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Session
	for _, session := range m.sessions {
		if session.AccountID == accountID && session.Active {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

func (m *MemoryRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return nil
	}
	m.sessions[session.ID] = *session
	return nil
}

func (m *MemoryRepository) RevokeAllSessions(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, session := range m.sessions {
		if session.AccountID == accountID && session.Active {
			session.Active = false
			m.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) CountActiveSessions(ctx context.Context, accountID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, session := range m.sessions {
		if session.AccountID == accountID && session.Active {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}
