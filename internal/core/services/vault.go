package services

import (
	"errors"
	"fmt"

	"github.com/poyrazK/authguard/internal/core/domain"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the deployed salt-rounds setting. Hashing dominates
// the latency of register/login/key-creation and must not be lowered.
const bcryptCost = 12

// Vault hashes and verifies secrets. Plaintext never leaves this
// boundary; callers enforce the password policy before hashing.
type Vault struct{}

func NewVault() *Vault {
	return &Vault{}
}

func (v *Vault) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("cannot hash an empty secret")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify returns domain.ErrHashMismatch when the plaintext does not
// correspond to the digest. Comparison timing is handled by bcrypt.
func (v *Vault) Verify(plaintext, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrHashMismatch
		}
		return err
	}
	return nil
}
