package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poyrazK/authguard/internal/adapters/repository"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/services"
)

func TestTokenMiddleware(t *testing.T) {
	repo := repository.NewMemoryRepository()
	tokens := services.NewTokenService([]byte("test-secret"), 0)
	middleware := TokenMiddleware(tokens, repo)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, _ := r.Context().Value(CtxAccountID).(string)
		w.Header().Set("X-Account-ID", accountID)
		w.WriteHeader(http.StatusOK)
	}))

	account := &domain.Account{ID: "acct-1", Username: "alice", Email: "alice@x.com"}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	token, err := tokens.Issue(account)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	t.Run("Missing Authorization Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Garbage Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Valid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
		if rr.Header().Get("X-Account-ID") != "acct-1" {
			t.Errorf("expected account ID 'acct-1', got %s", rr.Header().Get("X-Account-ID"))
		}
	})

	t.Run("Deleted Account Rejected", func(t *testing.T) {
		ghost := &domain.Account{ID: "acct-2", Username: "ghost", Email: "ghost@x.com"}
		ghostToken, err := tokens.Issue(ghost)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer "+ghostToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for account that no longer exists, got %d", rr.Code)
		}
	})

	t.Run("Wrong Signing Key", func(t *testing.T) {
		other := services.NewTokenService([]byte("other-secret"), 0)
		forged, err := other.Issue(account)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	repo := repository.NewMemoryRepository()
	vault := services.NewVault()
	activity := services.NewActivityService(repo)
	apiKeys := services.NewAPIKeyService(repo, vault, activity)
	middleware := APIKeyMiddleware(apiKeys)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, _ := r.Context().Value(CtxAccountID).(string)
		w.Header().Set("X-Account-ID", accountID)
		w.WriteHeader(http.StatusOK)
	}))

	_, secret, err := apiKeys.Create(context.Background(), "acct-1", "ci-key", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("Missing Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/service/profile", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Unknown Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/service/profile", nil)
		req.Header.Set("X-API-Key", "sk_00000000000000000000000000000000")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Valid Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/service/profile", nil)
		req.Header.Set("X-API-Key", secret)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
		if rr.Header().Get("X-Account-ID") != "acct-1" {
			t.Errorf("expected account ID 'acct-1', got %s", rr.Header().Get("X-Account-ID"))
		}
	})
}

func TestRequireRole(t *testing.T) {
	adminOnly := RequireRole(domain.RoleAdmin)
	handler := adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Admin Allowed", func(t *testing.T) {
		claims := &domain.TokenClaims{ID: "acct-1", Role: domain.RoleAdmin}
		ctx := context.WithValue(context.Background(), CtxClaims, claims)
		req := httptest.NewRequest("GET", "/api/user/profile", nil).WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("User Forbidden", func(t *testing.T) {
		claims := &domain.TokenClaims{ID: "acct-1", Role: domain.RoleUser}
		ctx := context.WithValue(context.Background(), CtxClaims, claims)
		req := httptest.NewRequest("GET", "/api/user/profile", nil).WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("Missing Claims Forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/user/profile", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rr.Code)
		}
	})
}
