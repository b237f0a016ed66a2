package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
)

// TokenTTL is the absolute lifetime of an issued bearer token.
const TokenTTL = 24 * time.Hour

type tokenClaims struct {
	jwt.RegisteredClaims
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// tokenService signs identity claims with a process-wide HMAC secret.
// Rotating the secret invalidates every outstanding token; there is no
// revocation list, so a validly signed token stays acceptable until it
// expires even if its session was revoked separately.
type tokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) ports.TokenService {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &tokenService{secret: secret, ttl: ttl}
}

func (s *tokenService) Issue(account *domain.Account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
		Role:     account.Role,
	})

	return token.SignedString(s.secret)
}

// Verify fails closed: signature mismatch, malformed structure and past
// expiry all collapse into domain.ErrInvalidToken.
func (s *tokenService) Verify(tokenString string) (*domain.TokenClaims, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return &domain.TokenClaims{
		ID:       claims.ID,
		Email:    claims.Email,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
