package domain

import (
	"time"
)

type APIKey struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	Name      string     `json:"name"`       // Human-readable label, e.g. "ci-deploy-key"
	KeyHash   string     `json:"-"`          // bcrypt digest of the secret (never store raw)
	KeyPrefix string     `json:"key_prefix"` // First 8 chars for identification
	Active    bool       `json:"active"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Session records one authenticated login. Sessions are deactivated on
// revoke, never deleted.
type Session struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	DeviceInfo   string    `json:"device_info,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	Location     string    `json:"location,omitempty"`
	Active       bool      `json:"active"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

// Activity is one entry in the append-only security audit trail.
type Activity struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Activity  string    `json:"activity"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityMeta carries optional request context into the ledger.
type ActivityMeta struct {
	IPAddress string
	UserAgent string
	Location  string
}
