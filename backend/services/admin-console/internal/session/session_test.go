package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"evhub/backend/services/admin-console/internal/models"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: "u1",
		Role:   "Backoffice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestSessionTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore(), nil)

	if _, err := s.Token(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken on empty session, got %v", err)
	}

	token := signedToken(t, time.Now().Add(time.Hour))
	err := s.Start(ctx, models.AuthResult{Token: token, User: models.User{ID: "u1", Username: "admin"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	got, err := s.Token(ctx)
	if err != nil || got != token {
		t.Fatalf("expected stored token, got %q err=%v", got, err)
	}
	u, ok, err := s.User(ctx)
	if err != nil || !ok || u.Username != "admin" {
		t.Fatalf("unexpected user %+v ok=%v err=%v", u, ok, err)
	}

	if err := s.ClearToken(ctx); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if s.Authenticated(ctx) {
		t.Fatalf("expected session to be unauthenticated after ClearToken")
	}
	if _, ok, _ := s.User(ctx); !ok {
		t.Fatalf("expected profile to survive ClearToken")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.User(ctx); ok {
		t.Fatalf("expected profile to be gone after Clear")
	}
}

func TestSessionDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(store, nil)

	if err := s.SetToken(ctx, signedToken(t, time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if _, err := s.Token(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for expired token, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, tokenKey); ok {
		t.Fatalf("expected expired token to be removed from store")
	}
}

func TestSessionKeepsOpaqueToken(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore(), nil)
	if err := s.SetToken(ctx, "opaque-token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if got, err := s.Token(ctx); err != nil || got != "opaque-token" {
		t.Fatalf("expected opaque token, got %q err=%v", got, err)
	}
}

func TestSealedStoreEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	sealed := NewSealedStore(inner, "console-secret")

	if err := sealed.Set(ctx, tokenKey, "plain-token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, ok, _ := inner.Get(ctx, tokenKey)
	if !ok || strings.Contains(raw, "plain-token") {
		t.Fatalf("expected sealed value in inner store, got %q", raw)
	}
	got, ok, err := sealed.Get(ctx, tokenKey)
	if err != nil || !ok || got != "plain-token" {
		t.Fatalf("expected plain-token, got %q ok=%v err=%v", got, ok, err)
	}

	other := New(NewSealedStore(inner, "another-secret"), nil)
	if _, err := other.Token(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken with wrong key, got %v", err)
	}
	if _, ok, _ := inner.Get(ctx, tokenKey); ok {
		t.Fatalf("expected unreadable token to be discarded")
	}
}

func TestClaimsExpired(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	claims, err := ParseClaims(signedToken(t, at))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != "Backoffice" {
		t.Fatalf("expected role claim, got %q", claims.Role)
	}
	if claims.Expired(at.Add(-time.Second)) || !claims.Expired(at) {
		t.Fatalf("unexpected expiry evaluation around %s", at)
	}
	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Fatalf("expected parse error for opaque token")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ADMIN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ADMIN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, "admin-console-test:"+t.Name(), time.Minute)
	t.Cleanup(func() { _ = store.Delete(ctx, tokenKey) })

	if _, ok, err := store.Get(ctx, tokenKey); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, tokenKey, "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, err := store.Get(ctx, tokenKey); err != nil || !ok || v != "v" {
		t.Fatalf("expected v, got %q ok=%v err=%v", v, ok, err)
	}
}
