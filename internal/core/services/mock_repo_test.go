package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
)

// mockRepo is a slice-backed Repository used across the service tests.
type mockRepo struct {
	mu         sync.Mutex
	accounts   []domain.Account
	activities []domain.Activity
	apiKeys    []domain.APIKey
	sessions   []domain.Session
	secretIdx  map[string][2]string // secret -> {accountID, keyID}
}

func newMockRepo() *mockRepo {
	return &mockRepo{secretIdx: make(map[string][2]string)}
}

func (m *mockRepo) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			a := m.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Email == email {
			a := m.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Username == username {
			a := m.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Email == account.Email {
			return domain.ErrDuplicateEmail
		}
		if m.accounts[i].Username == account.Username {
			return domain.ErrDuplicateUsername
		}
	}
	m.accounts = append(m.accounts, *account)
	return nil
}

func (m *mockRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == accountID {
			t := at
			m.accounts[i].LastLogin = &t
		}
	}
	return nil
}

func (m *mockRepo) SaveActivity(ctx context.Context, entry *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, *entry)
	return nil
}

func (m *mockRepo) ListActivities(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for i := len(m.activities) - 1; i >= 0; i-- {
		if m.activities[i].AccountID == accountID {
			out = append(out, m.activities[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepo) CountActivitiesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.activities {
		if m.activities[i].AccountID == accountID && m.activities[i].Timestamp.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CountLoginActivities(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.activities {
		if m.activities[i].AccountID == accountID && strings.Contains(m.activities[i].Activity, "login") {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys = append(m.apiKeys, *key)
	return nil
}

func (m *mockRepo) GetAPIKey(ctx context.Context, id string) (*domain.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apiKeys {
		if m.apiKeys[i].ID == id {
			k := m.apiKeys[i]
			return &k, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ListAPIKeys(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.APIKey
	for i := range m.apiKeys {
		if m.apiKeys[i].AccountID == accountID && m.apiKeys[i].Active {
			out = append(out, m.apiKeys[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepo) UpdateAPIKey(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apiKeys {
		if m.apiKeys[i].ID == key.ID {
			m.apiKeys[i] = *key
		}
	}
	return nil
}

func (m *mockRepo) CountActiveAPIKeys(ctx context.Context, accountID string) (int, error) {
	keys, _ := m.ListAPIKeys(ctx, accountID)
	return len(keys), nil
}

func (m *mockRepo) IndexAPIKeySecret(ctx context.Context, secret, accountID, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secretIdx[secret] = [2]string{accountID, keyID}
	return nil
}

func (m *mockRepo) LookupAPIKeySecret(ctx context.Context, secret string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.secretIdx[secret]
	if !ok {
		return "", "", domain.ErrNotFound
	}
	return ref[0], ref[1], nil
}

func (m *mockRepo) DeleteAPIKeySecretIndex(ctx context.Context, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for secret, ref := range m.secretIdx {
		if ref[1] == keyID {
			delete(m.secretIdx, secret)
		}
	}
	return nil
}

func (m *mockRepo) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, *session)
	return nil
}

func (m *mockRepo) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			s := m.sessions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ListSessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Session
	for i := range m.sessions {
		if m.sessions[i].AccountID == accountID && m.sessions[i].Active {
			out = append(out, m.sessions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (m *mockRepo) UpdateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == session.ID {
			m.sessions[i] = *session
		}
	}
	return nil
}

func (m *mockRepo) RevokeAllSessions(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.sessions {
		if m.sessions[i].AccountID == accountID && m.sessions[i].Active {
			m.sessions[i].Active = false
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CountActiveSessions(ctx context.Context, accountID string) (int, error) {
	sessions, _ := m.ListSessions(ctx, accountID)
	return len(sessions), nil
}

func (m *mockRepo) Ping(ctx context.Context) error { return nil }
