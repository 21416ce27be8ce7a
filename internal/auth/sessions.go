// Package auth gates the admin console: one administrative principal,
// email+password, opaque bearer tokens in Redis. There are no roles beyond
// authenticated or not.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/pixalium/backend/internal/redisx"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Sessions struct {
	Redis *redis.Client
	// Email and PasswordHash identify the single admin account; the hash is
	// a bcrypt digest from configuration.
	Email        string
	PasswordHash string
}

// Login verifies credentials and issues a session token with a TTL.
func (s *Sessions) Login(ctx context.Context, email, password string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(email), s.Email) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.Redis.Set(ctx, key, s.Email, redisx.TTLSession).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	log.Info().Str("email", s.Email).Msg("admin logged in")
	return token, nil
}

// Logout tears the session down. Unknown tokens are not an error.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeySession, token)).Err()
}

// Valid reports whether the token belongs to a live session.
func (s *Sessions) Valid(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return redisx.Exists(ctx, s.Redis, fmt.Sprintf(redisx.KeySession, token))
}

// Middleware rejects requests without a live bearer token.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		ok, err := s.Valid(r.Context(), token)
		if err != nil {
			http.Error(w, `{"error":"session check failed"}`, http.StatusInternalServerError)
			return
		}
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
