package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
	"github.com/poyrazK/authguard/internal/infrastructure/metrics"
)

// strongPasswordLength is the plaintext length that earns the security
// score bonus. Observed once here; the hash cannot reveal it later.
const strongPasswordLength = 12

type accountService struct {
	repo     ports.Repository
	vault    *Vault
	activity ports.ActivityService
}

func NewAccountService(repo ports.Repository, vault *Vault, activity ports.ActivityService) ports.AccountService {
	return &accountService{repo: repo, vault: vault, activity: activity}
}

// Register validates input, hashes the password and persists the new
// account. The duplicate check and the insert happen atomically inside
// the repository, so concurrent registrations with the same email or
// username cannot both succeed.
func (s *accountService) Register(ctx context.Context, username, email, password string, meta domain.ActivityMeta) (*domain.Account, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.vault.Hash(password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:             uuid.New().String(),
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		Role:           domain.RoleUser,
		StrongPassword: len(password) >= strongPasswordLength,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()

	if err := s.activity.Log(ctx, account.ID, "Account created", meta); err != nil {
		return nil, err
	}

	redacted := account.Redacted()
	return &redacted, nil
}

// Authenticate verifies credentials by email. A missing account and a
// wrong password produce the same ErrInvalidCredentials.
func (s *accountService) Authenticate(ctx context.Context, email, password string, meta domain.ActivityMeta) (*domain.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.vault.Verify(password, account.PasswordHash); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLogin = &now
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	if err := s.activity.Log(ctx, account.ID, "Successful login", meta); err != nil {
		return nil, err
	}

	redacted := account.Redacted()
	return &redacted, nil
}

func (s *accountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	redacted := account.Redacted()
	return &redacted, nil
}
