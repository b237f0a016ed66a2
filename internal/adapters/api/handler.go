package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthHandler handles HTTP requests for accounts, tokens, API keys,
// sessions and the security dashboard.
type AuthHandler struct {
	accounts ports.AccountService
	tokens   ports.TokenService
	apiKeys  ports.APIKeyService
	sessions ports.SessionService
	activity ports.ActivityService
	scores   ports.ScoreService
	repo     ports.Repository
}

// NewAuthHandler creates and returns a new AuthHandler instance.
func NewAuthHandler(accounts ports.AccountService, tokens ports.TokenService, apiKeys ports.APIKeyService, sessions ports.SessionService, activity ports.ActivityService, scores ports.ScoreService, repo ports.Repository) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		apiKeys:  apiKeys,
		sessions: sessions,
		activity: activity,
		scores:   scores,
		repo:     repo,
	}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public Routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	// Middleware
	auth := TokenMiddleware(h.tokens, h.repo)
	keyAuth := APIKeyMiddleware(h.apiKeys)

	// Protected Routes (scoped by account ID from token claims)
	mux.Handle("GET /api/user/profile", auth(http.HandlerFunc(h.Profile)))
	mux.Handle("GET /api/user/stats", auth(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/user/security-activities", auth(http.HandlerFunc(h.ListActivities)))
	mux.Handle("GET /api/user/api-keys", auth(http.HandlerFunc(h.ListAPIKeys)))
	mux.Handle("POST /api/user/api-keys", auth(http.HandlerFunc(h.CreateAPIKey)))
	mux.Handle("DELETE /api/user/api-keys/{id}", auth(http.HandlerFunc(h.RevokeAPIKey)))
	mux.Handle("GET /api/user/sessions", auth(http.HandlerFunc(h.ListSessions)))
	mux.Handle("DELETE /api/user/sessions/{id}", auth(http.HandlerFunc(h.RevokeSession)))
	mux.Handle("DELETE /api/user/sessions", auth(http.HandlerFunc(h.RevokeAllSessions)))

	// Programmatic access via API key
	mux.Handle("GET /api/service/profile", keyAuth(http.HandlerFunc(h.Profile)))
}

// Metrics handles Prometheus metrics scraping requests.
func (h *AuthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)

	if err := h.repo.Ping(r.Context()); err != nil {
		status = "DEGRADED"
		details["repository"] = err.Error()
	} else {
		details["repository"] = "OK"
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode health check response: %v", err)
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password, requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(account); err != nil {
		log.Printf("failed to encode register response: %v", err)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresIn string          `json:"expires_in"`
	User      *domain.Account `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meta := requestMeta(r)
	account, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password, meta)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if _, err := h.sessions.Create(r.Context(), account.ID, meta.UserAgent, meta.IPAddress, meta.Location); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(account)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token, ExpiresIn: "24h", User: account}); err != nil {
		log.Printf("failed to encode login response: %v", err)
	}
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("Profile: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(account); err != nil {
		log.Printf("failed to encode profile response: %v", err)
	}
}

func (h *AuthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("Stats: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	stats, err := h.scores.Stats(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("failed to encode stats response: %v", err)
	}
}

func (h *AuthHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("ListActivities: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.activity.ListRecent(r.Context(), accountID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []domain.Activity{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Printf("failed to encode activities response: %v", err)
	}
}

type createAPIKeyRequest struct {
	Name          string `json:"name"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"`
}

type createAPIKeyResponse struct {
	Key *domain.APIKey `json:"key"`
	// Secret is shown exactly once; only a digest is stored.
	Secret string `json:"secret"`
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("CreateAPIKey: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}

	key, secret, err := h.apiKeys.Create(r.Context(), accountID, req.Name, expiresAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(createAPIKeyResponse{Key: key, Secret: secret}); err != nil {
		log.Printf("failed to encode API key response: %v", err)
	}
}

func (h *AuthHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("ListAPIKeys: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	keys, err := h.apiKeys.List(r.Context(), accountID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []domain.APIKey{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(keys); err != nil {
		log.Printf("failed to encode API keys response: %v", err)
	}
}

func (h *AuthHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("RevokeAPIKey: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	revoked, err := h.apiKeys.Revoke(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !revoked {
		http.Error(w, "API key not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("ListSessions: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	sessions, err := h.sessions.List(r.Context(), accountID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sessions); err != nil {
		log.Printf("failed to encode sessions response: %v", err)
	}
}

func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("RevokeSession: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	revoked, err := h.sessions.Revoke(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !revoked {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) RevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(CtxAccountID).(string)
	if !ok || accountID == "" {
		log.Printf("RevokeAllSessions: missing or invalid account ID in context")
		http.Error(w, "Unauthorized: missing account context", http.StatusUnauthorized)
		return
	}

	count, err := h.sessions.RevokeAll(r.Context(), accountID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]int{"revoked": count}); err != nil {
		log.Printf("failed to encode revoke-all response: %v", err)
	}
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateUsername):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// requestMeta extracts client context for the activity trail.
func requestMeta(r *http.Request) domain.ActivityMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	return domain.ActivityMeta{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
