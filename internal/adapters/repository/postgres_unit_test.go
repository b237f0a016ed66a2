package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/poyrazK/authguard/internal/core/domain"
)

func TestPostgresRepository_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)
	ctx := context.Background()

	t.Run("GetAccount", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "strong_password", "created_at", "last_login"}).
			AddRow("acct-1", "alice", "alice@x.com", "$2a$12$hash", "user", true, time.Now(), nil)

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs("acct-1").
			WillReturnRows(rows)

		account, err := repo.GetAccount(ctx, "acct-1")
		if err != nil {
			t.Errorf("GetAccount failed: %v", err)
		}
		if account == nil || account.Username != "alice" || !account.StrongPassword {
			t.Errorf("Unexpected account: %+v", account)
		}
		if account.LastLogin != nil {
			t.Errorf("expected nil LastLogin, got %v", account.LastLogin)
		}
	})

	t.Run("GetAccountByEmailMissing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("nobody@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "strong_password", "created_at", "last_login"}))

		account, err := repo.GetAccountByEmail(ctx, "nobody@x.com")
		if err != nil || account != nil {
			t.Errorf("expected (nil, nil) for missing row, got %+v, %v", account, err)
		}
	})

	t.Run("CreateAccount", func(t *testing.T) {
		account := &domain.Account{ID: "acct-2", Username: "bob", Email: "bob@x.com", PasswordHash: "$2a$12$h", Role: domain.RoleUser, CreatedAt: time.Now()}
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(account.ID, account.Username, account.Email, account.PasswordHash, account.Role, account.StrongPassword, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := repo.CreateAccount(ctx, account); err != nil {
			t.Errorf("CreateAccount failed: %v", err)
		}
	})

	t.Run("CreateAccountDuplicateEmail", func(t *testing.T) {
		account := &domain.Account{ID: "acct-3", Username: "carol", Email: "alice@x.com"}
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(account.ID, account.Username, account.Email, account.PasswordHash, account.Role, account.StrongPassword, sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

		if err := repo.CreateAccount(ctx, account); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("CreateAccountDuplicateUsername", func(t *testing.T) {
		account := &domain.Account{ID: "acct-4", Username: "alice", Email: "other@x.com"}
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(account.ID, account.Username, account.Email, account.PasswordHash, account.Role, account.StrongPassword, sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"})

		if err := repo.CreateAccount(ctx, account); !errors.Is(err, domain.ErrDuplicateUsername) {
			t.Errorf("expected ErrDuplicateUsername, got %v", err)
		}
	})

	t.Run("ListActivities", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "account_id", "activity", "ip_address", "user_agent", "location", "timestamp"}).
			AddRow("a2", "acct-1", "Successful login", "10.0.0.1", "curl/8", "", now).
			AddRow("a1", "acct-1", "Account created", "10.0.0.1", "curl/8", "", now.Add(-time.Minute))

		mock.ExpectQuery(`SELECT (.+) FROM security_activities WHERE account_id = \$1 ORDER BY timestamp DESC LIMIT \$2`).
			WithArgs("acct-1", 50).
			WillReturnRows(rows)

		entries, err := repo.ListActivities(ctx, "acct-1", 50)
		if err != nil {
			t.Errorf("ListActivities failed: %v", err)
		}
		if len(entries) != 2 || entries[0].Activity != "Successful login" {
			t.Errorf("Unexpected entries: %+v", entries)
		}
	})

	t.Run("CountLoginActivities", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM security_activities WHERE account_id = \$1 AND activity LIKE '%login%'`).
			WithArgs("acct-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountLoginActivities(ctx, "acct-1")
		if err != nil || count != 3 {
			t.Errorf("expected 3 logins, got %d, %v", count, err)
		}
	})

	t.Run("ListAPIKeys", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "account_id", "name", "key_hash", "key_prefix", "active", "last_used", "expires_at", "created_at"}).
			AddRow("key-1", "acct-1", "deploy", "$2a$12$h", "sk_12345", true, nil, nil, time.Now())

		mock.ExpectQuery(`SELECT (.+) FROM api_keys WHERE account_id = \$1 AND active = TRUE ORDER BY created_at DESC`).
			WithArgs("acct-1").
			WillReturnRows(rows)

		keys, err := repo.ListAPIKeys(ctx, "acct-1")
		if err != nil {
			t.Errorf("ListAPIKeys failed: %v", err)
		}
		if len(keys) != 1 || keys[0].Name != "deploy" || keys[0].LastUsed != nil {
			t.Errorf("Unexpected keys: %+v", keys)
		}
	})

	t.Run("RevokeAllSessions", func(t *testing.T) {
		mock.ExpectExec(`UPDATE sessions SET active = FALSE WHERE account_id = \$1 AND active = TRUE`).
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 2))

		count, err := repo.RevokeAllSessions(ctx, "acct-1")
		if err != nil || count != 2 {
			t.Errorf("expected 2 revoked sessions, got %d, %v", count, err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
