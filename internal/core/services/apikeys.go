package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
	"github.com/poyrazK/authguard/internal/infrastructure/metrics"
)

// secretPrefix makes leaked keys recognizable in logs and scanners.
const secretPrefix = "sk_"

type apiKeyService struct {
	repo     ports.Repository
	vault    *Vault
	activity ports.ActivityService
}

func NewAPIKeyService(repo ports.Repository, vault *Vault, activity ports.ActivityService) ports.APIKeyService {
	return &apiKeyService{repo: repo, vault: vault, activity: activity}
}

func generateSecret() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return secretPrefix + hex.EncodeToString(raw), nil
}

// Create mints a new key. The returned plaintext secret exists only in
// this response and in the transient lookup index; it is never again
// retrievable.
func (s *apiKeyService) Create(ctx context.Context, accountID, name string, expiresAt *time.Time) (*domain.APIKey, string, error) {
	if err := domain.ValidateKeyName(name); err != nil {
		return nil, "", err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, "", err
	}

	hash, err := s.vault.Hash(secret)
	if err != nil {
		return nil, "", err
	}

	key := &domain.APIKey{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      name,
		KeyHash:   hash,
		KeyPrefix: secret[:8],
		Active:    true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return nil, "", err
	}
	if err := s.repo.IndexAPIKeySecret(ctx, secret, accountID, key.ID); err != nil {
		return nil, "", err
	}

	if err := s.activity.Log(ctx, accountID, fmt.Sprintf("API key %q created", name), domain.ActivityMeta{}); err != nil {
		return nil, "", err
	}

	redacted := *key
	redacted.KeyHash = ""
	return &redacted, secret, nil
}

func (s *apiKeyService) List(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	keys, err := s.repo.ListAPIKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		keys[i].KeyHash = ""
	}
	return keys, nil
}

// Revoke deactivates a key and destroys its secret index entry. Keys
// that do not exist or belong to another account report false without
// revealing which.
func (s *apiKeyService) Revoke(ctx context.Context, accountID, keyID string) (bool, error) {
	key, err := s.repo.GetAPIKey(ctx, keyID)
	if err != nil {
		return false, err
	}
	if key == nil || key.AccountID != accountID {
		return false, nil
	}

	key.Active = false
	if err := s.repo.UpdateAPIKey(ctx, key); err != nil {
		return false, err
	}
	if err := s.repo.DeleteAPIKeySecretIndex(ctx, keyID); err != nil {
		return false, err
	}

	if err := s.activity.Log(ctx, accountID, fmt.Sprintf("API key %q revoked", key.Name), domain.ActivityMeta{}); err != nil {
		return false, err
	}
	return true, nil
}

// Validate resolves a plaintext secret to its owner. Expiry is evaluated
// lazily here; expired keys stay in the index until revoked.
func (s *apiKeyService) Validate(ctx context.Context, secret string) (string, string, error) {
	accountID, keyID, err := s.repo.LookupAPIKeySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.APIKeyValidationsTotal.WithLabelValues("rejected").Inc()
			return "", "", domain.ErrInvalidAPIKey
		}
		return "", "", err
	}

	key, err := s.repo.GetAPIKey(ctx, keyID)
	if err != nil {
		return "", "", err
	}
	if key == nil || !key.Active {
		metrics.APIKeyValidationsTotal.WithLabelValues("rejected").Inc()
		return "", "", domain.ErrInvalidAPIKey
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		metrics.APIKeyValidationsTotal.WithLabelValues("expired").Inc()
		return "", "", domain.ErrInvalidAPIKey
	}

	now := time.Now()
	key.LastUsed = &now
	if err := s.repo.UpdateAPIKey(ctx, key); err != nil {
		return "", "", err
	}

	metrics.APIKeyValidationsTotal.WithLabelValues("ok").Inc()
	return accountID, keyID, nil
}
