package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/authguard/internal/adapters/api"
	"github.com/poyrazK/authguard/internal/adapters/repository"
	"github.com/poyrazK/authguard/internal/core/ports"
	"github.com/poyrazK/authguard/internal/core/services"
	"github.com/poyrazK/authguard/internal/infrastructure/cache"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Fallback for development; tokens signed with this are worthless
		// the moment a real secret is configured.
		secret = "dev-only-insecure-secret"
		logger.Warn("JWT_SECRET not set, using insecure development secret")
	}

	var repo ports.Repository
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v\n", err)
		}
		defer db.Close()

		if err := repository.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Migration failed: %v\n", err)
		}
		repo = repository.NewPostgresRepository(db)
		logger.Info("connected to PostgreSQL")
	}

	var sessionCache ports.SessionCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc := cache.NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
		if err := rc.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, session cache disabled", "error", err)
		} else {
			sessionCache = rc
			logger.Info("session cache enabled", "addr", addr)
		}
	}

	vault := services.NewVault()
	activity := services.NewActivityService(repo)
	accounts := services.NewAccountService(repo, vault, activity)
	tokens := services.NewTokenService([]byte(secret), 0)
	apiKeys := services.NewAPIKeyService(repo, vault, activity)
	sessions := services.NewSessionService(repo, activity, sessionCache)
	scores := services.NewScoreService(repo)

	handler := api.NewAuthHandler(accounts, tokens, apiKeys, sessions, activity, scores, repo)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("auth API listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("HTTP Server failed: %v", err)
	}
}
