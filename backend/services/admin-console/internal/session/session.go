package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
)

const (
	tokenKey = "authToken"
	userKey  = "user"
)

// ErrNoToken is returned when no usable token is held.
var ErrNoToken = errors.New("session: no token")

var now = time.Now

// Session is the single operator session, created at startup and passed to
// every client that needs the token.
type Session struct {
	store  Store
	logger *zap.Logger
}

// New wraps store.
func New(store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger}
}

// Token returns the stored token. Tokens whose exp claim has passed are
// dropped and reported as ErrNoToken. Opaque tokens are returned as is.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, tokenKey)
	if errors.Is(err, ErrUnsealed) {
		s.logger.Warn("discarding unreadable session token")
		_ = s.store.Delete(ctx, tokenKey)
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("session: read token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoToken
	}
	if claims, err := ParseClaims(token); err == nil && claims.Expired(now()) {
		s.logger.Info("session token expired")
		if err := s.store.Delete(ctx, tokenKey); err != nil {
			return "", fmt.Errorf("session: drop expired token: %w", err)
		}
		return "", ErrNoToken
	}
	return token, nil
}

// Authenticated reports whether a usable token is held.
func (s *Session) Authenticated(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// SetToken stores token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	return s.store.Set(ctx, tokenKey, token)
}

// ClearToken forgets the token but keeps the profile.
func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, tokenKey)
}

// User returns the stored profile.
func (s *Session) User(ctx context.Context) (models.User, bool, error) {
	raw, ok, err := s.store.Get(ctx, userKey)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return models.User{}, false, fmt.Errorf("session: decode user: %w", err)
	}
	return u, true, nil
}

// SetUser stores the profile.
func (s *Session) SetUser(ctx context.Context, u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, userKey, string(data))
}

// Start stores the result of a login or registration.
func (s *Session) Start(ctx context.Context, res models.AuthResult) error {
	if err := s.SetToken(ctx, res.Token); err != nil {
		return err
	}
	return s.SetUser(ctx, res.User)
}

// Clear forgets token and profile.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, tokenKey, userKey)
}

// Close releases the store.
func (s *Session) Close() error {
	return s.store.Close()
}
