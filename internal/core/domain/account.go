package domain

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"  // Default role for self-registered accounts
	RoleAdmin Role = "admin" // Reserved for operator-provisioned accounts
)

type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // bcrypt digest (never serialize raw)
	Role         Role   `json:"role"`
	// StrongPassword is recorded once at registration, while the plaintext
	// is still visible. The digest cannot reveal the original length.
	StrongPassword bool       `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// Redacted returns a copy of the account with the password hash cleared.
// Everything that leaves the service layer goes through this.
func (a Account) Redacted() Account {
	a.PasswordHash = ""
	return a
}

// TokenClaims is the identity asserted by a verified bearer token.
type TokenClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// AccountStats summarizes account hygiene for the dashboard.
type AccountStats struct {
	TotalLogins    int `json:"total_logins"`
	ActiveSessions int `json:"active_sessions"`
	APIKeysCount   int `json:"api_keys_count"`
	SecurityScore  int `json:"security_score"`
	AccountAge     int `json:"account_age"` // days since creation
}
