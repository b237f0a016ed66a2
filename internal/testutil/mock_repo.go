package testutil

import (
	"context"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepo) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepo) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepo) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	args := m.Called(accountID, at)
	return args.Error(0)
}

func (m *MockRepo) SaveActivity(ctx context.Context, entry *domain.Activity) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockRepo) ListActivities(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	args := m.Called(accountID, limit)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockRepo) CountActivitiesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	args := m.Called(accountID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CountLoginActivities(ctx context.Context, accountID string) (int, error) {
	args := m.Called(accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockRepo) GetAPIKey(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockRepo) ListAPIKeys(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	args := m.Called(accountID)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *MockRepo) UpdateAPIKey(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockRepo) CountActiveAPIKeys(ctx context.Context, accountID string) (int, error) {
	args := m.Called(accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) IndexAPIKeySecret(ctx context.Context, secret, accountID, keyID string) error {
	args := m.Called(secret, accountID, keyID)
	return args.Error(0)
}

func (m *MockRepo) LookupAPIKeySecret(ctx context.Context, secret string) (string, string, error) {
	args := m.Called(secret)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockRepo) DeleteAPIKeySecretIndex(ctx context.Context, keyID string) error {
	args := m.Called(keyID)
	return args.Error(0)
}

func (m *MockRepo) CreateSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockRepo) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockRepo) ListSessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	args := m.Called(accountID)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockRepo) UpdateSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockRepo) RevokeAllSessions(ctx context.Context, accountID string) (int, error) {
	args := m.Called(accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CountActiveSessions(ctx context.Context, accountID string) (int, error) {
	args := m.Called(accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
