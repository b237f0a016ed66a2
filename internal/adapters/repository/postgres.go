package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/poyrazK/authguard/internal/core/domain"
)

const uniqueViolation = "23505"

// PostgresRepository implements ports.Repository using PostgreSQL.
//
// The plaintext API secret index is deliberately NOT a table: secrets
// must never touch durable storage. It lives in process memory, which
// means validation only works for keys created by this process since
// its last restart. That mirrors the one-time-display contract of the
// key itself.
type PostgresRepository struct {
	db *sql.DB

	mu        sync.RWMutex
	secretIdx map[string]secretRef
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:        db,
		secretIdx: make(map[string]secretRef),
	}
}

func (r *PostgresRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT id, username, email, password_hash, role, strong_password, created_at, last_login FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT id, username, email, password_hash, role, strong_password, created_at, last_login FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT id, username, email, password_hash, role, strong_password, created_at, last_login FROM accounts WHERE username = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	var lastLogin sql.NullTime
	errRow := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.StrongPassword, &a.CreatedAt, &lastLogin)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}

// CreateAccount relies on the unique indexes for atomicity: the insert
// and the uniqueness check are a single statement, so concurrent
// registrations race inside the database, not in application code.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (id, username, email, password_hash, role, strong_password, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, account.ID, account.Username, account.Email, account.PasswordHash, account.Role, account.StrongPassword, account.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == "accounts_username_key" {
			return domain.ErrDuplicateUsername
		}
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	query := `UPDATE accounts SET last_login = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, accountID)
	return err
}

func (r *PostgresRepository) SaveActivity(ctx context.Context, entry *domain.Activity) error {
	query := `INSERT INTO security_activities (id, account_id, activity, ip_address, user_agent, location, timestamp)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Activity, entry.IPAddress, entry.UserAgent, entry.Location, entry.Timestamp)
	return err
}

func (r *PostgresRepository) ListActivities(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	query := `SELECT id, account_id, activity, ip_address, user_agent, location, timestamp FROM security_activities
	          WHERE account_id = $1 ORDER BY timestamp DESC LIMIT $2`
	rows, errQuery := r.db.QueryContext(ctx, query, accountID, limit)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var entries []domain.Activity
	for rows.Next() {
		var entry domain.Activity
		if errScan := rows.Scan(&entry.ID, &entry.AccountID, &entry.Activity, &entry.IPAddress, &entry.UserAgent, &entry.Location, &entry.Timestamp); errScan != nil {
			return nil, errScan
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) CountActivitiesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM security_activities WHERE account_id = $1 AND timestamp >= $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, accountID, since).Scan(&count)
	return count, err
}

func (r *PostgresRepository) CountLoginActivities(ctx context.Context, accountID string) (int, error) {
	query := `SELECT COUNT(*) FROM security_activities WHERE account_id = $1 AND activity LIKE '%login%'`
	var count int
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&count)
	return count, err
}

func (r *PostgresRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	query := `INSERT INTO api_keys (id, account_id, name, key_hash, key_prefix, active, last_used, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, key.ID, key.AccountID, key.Name, key.KeyHash, key.KeyPrefix, key.Active, key.LastUsed, key.ExpiresAt, key.CreatedAt)
	return err
}

func (r *PostgresRepository) GetAPIKey(ctx context.Context, id string) (*domain.APIKey, error) {
	query := `SELECT id, account_id, name, key_hash, key_prefix, active, last_used, expires_at, created_at FROM api_keys WHERE id = $1`
	var k domain.APIKey
	var lastUsed, expiresAt sql.NullTime
	errRow := r.db.QueryRowContext(ctx, query, id).Scan(&k.ID, &k.AccountID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Active, &lastUsed, &expiresAt, &k.CreatedAt)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsed = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}

func (r *PostgresRepository) ListAPIKeys(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	query := `SELECT id, account_id, name, key_hash, key_prefix, active, last_used, expires_at, created_at FROM api_keys
	          WHERE account_id = $1 AND active = TRUE ORDER BY created_at DESC`
	rows, errQuery := r.db.QueryContext(ctx, query, accountID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		var lastUsed, expiresAt sql.NullTime
		if errScan := rows.Scan(&k.ID, &k.AccountID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Active, &lastUsed, &expiresAt, &k.CreatedAt); errScan != nil {
			return nil, errScan
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			k.LastUsed = &t
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			k.ExpiresAt = &t
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *PostgresRepository) UpdateAPIKey(ctx context.Context, key *domain.APIKey) error {
	query := `UPDATE api_keys SET active = $1, last_used = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, key.Active, key.LastUsed, key.ID)
	return err
}

func (r *PostgresRepository) CountActiveAPIKeys(ctx context.Context, accountID string) (int, error) {
	query := `SELECT COUNT(*) FROM api_keys WHERE account_id = $1 AND active = TRUE`
	var count int
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&count)
	return count, err
}

func (r *PostgresRepository) IndexAPIKeySecret(ctx context.Context, secret, accountID, keyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secretIdx[secret] = secretRef{accountID: accountID, keyID: keyID}
	return nil
}

func (r *PostgresRepository) LookupAPIKeySecret(ctx context.Context, secret string) (string, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ref, ok := r.secretIdx[secret]; ok {
		return ref.accountID, ref.keyID, nil
	}
	return "", "", nil
}

func (r *PostgresRepository) DeleteAPIKeySecretIndex(ctx context.Context, keyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for secret, ref := range r.secretIdx {
		if ref.keyID == keyID {
			delete(r.secretIdx, secret)
		}
	}
	return nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (id, account_id, device_info, ip_address, location, active, last_activity, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.AccountID, session.DeviceInfo, session.IPAddress, session.Location, session.Active, session.LastActivity, session.CreatedAt)
	return err
}

func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT id, account_id, device_info, ip_address, location, active, last_activity, created_at FROM sessions WHERE id = $1`
	var s domain.Session
	errRow := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.AccountID, &s.DeviceInfo, &s.IPAddress, &s.Location, &s.Active, &s.LastActivity, &s.CreatedAt)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	return &s, nil
}

func (r *PostgresRepository) ListSessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	query := `SELECT id, account_id, device_info, ip_address, location, active, last_activity, created_at FROM sessions
	          WHERE account_id = $1 AND active = TRUE ORDER BY last_activity DESC`
	rows, errQuery := r.db.QueryContext(ctx, query, accountID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if errScan := rows.Scan(&s.ID, &s.AccountID, &s.DeviceInfo, &s.IPAddress, &s.Location, &s.Active, &s.LastActivity, &s.CreatedAt); errScan != nil {
			return nil, errScan
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	query := `UPDATE sessions SET active = $1, last_activity = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, session.Active, session.LastActivity, session.ID)
	return err
}

func (r *PostgresRepository) RevokeAllSessions(ctx context.Context, accountID string) (int, error) {
	query := `UPDATE sessions SET active = FALSE WHERE account_id = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *PostgresRepository) CountActiveSessions(ctx context.Context, accountID string) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE account_id = $1 AND active = TRUE`
	var count int
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&count)
	return count, err
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
