package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &Sessions{Redis: rdb, Email: "admin@pixalium.com", PasswordHash: string(hash)}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t)

	t.Run("wrong password", func(t *testing.T) {
		if _, err := s.Login(ctx, "admin@pixalium.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := s.Login(ctx, "intruder@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("valid credentials issue a live token", func(t *testing.T) {
		token, err := s.Login(ctx, " Admin@Pixalium.com ", "s3cret")
		if err != nil {
			t.Fatal(err)
		}
		ok, err := s.Valid(ctx, token)
		if err != nil || !ok {
			t.Fatalf("Valid = (%v, %v)", ok, err)
		}
	})
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t)

	token, err := s.Login(ctx, "admin@pixalium.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	ok, err := s.Valid(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("token still valid after logout")
	}
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	s := newTestSessions(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := s.Middleware(next)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/records/orders", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/records/orders", nil)
		req.Header.Set("Authorization", "Bearer not-a-session")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("live token passes through", func(t *testing.T) {
		token, err := s.Login(ctx, "admin@pixalium.com", "s3cret")
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin/records/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
