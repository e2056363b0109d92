package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/clients"
	"evhub/backend/services/admin-console/internal/loginhistory"
	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/validation"
)

// AuthAPI is the /auth transport used by AuthService.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.AuthResult, error)
	Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error)
	LoginHistory(ctx context.Context) ([]models.LoginEntry, error)
}

// SessionStore holds the operator's token and profile.
type SessionStore interface {
	Start(ctx context.Context, res models.AuthResult) error
	Clear(ctx context.Context) error
	User(ctx context.Context) (models.User, bool, error)
}

// ClientInfo describes where a login attempt came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService signs the operator in and out and records every attempt.
type AuthService struct {
	api     AuthAPI
	session SessionStore
	history loginhistory.Log
	logger  *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(api AuthAPI, session SessionStore, history loginhistory.Log, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{api: api, session: session, history: history, logger: logger}
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, email, password string, info ClientInfo) (models.AuthResult, error) {
	email = validation.SanitizeString(email)
	record := map[string]any{"email": email, "password": password}
	if errs := validation.LoginSchema.Validate(record); len(errs) > 0 {
		return models.AuthResult{}, validationError(errs)
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.record(ctx, models.LoginFailed, email, info)
		return models.AuthResult{}, normalize(err, "Login failed")
	}
	if err := s.session.Start(ctx, res); err != nil {
		return models.AuthResult{}, &Error{Kind: KindInternal, Message: "Failed to store session", Err: err}
	}
	username := res.User.Username
	if username == "" {
		username = email
	}
	s.record(ctx, models.LoginSuccess, username, info)
	s.logger.Info("operator logged in", zap.String("user_id", res.User.ID))
	return res, nil
}

// Register creates an account and signs it in. The password confirmation is
// checked before anything is sent.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput, info ClientInfo) (models.AuthResult, error) {
	if in.Password != in.ConfirmPassword {
		return models.AuthResult{}, invalid("Passwords do not match")
	}
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	record := validation.Sanitize(in.Record())
	if errs := validation.RegisterSchema.Validate(record); len(errs) > 0 {
		return models.AuthResult{}, validationError(errs)
	}
	in.Username, _ = record["username"].(string)
	in.Email, _ = record["email"].(string)
	in.Phone, _ = record["phone"].(string)
	in.NIC, _ = record["nic"].(string)

	res, err := s.api.Register(ctx, in)
	if err != nil {
		return models.AuthResult{}, normalize(err, "Registration failed")
	}
	if err := s.session.Start(ctx, res); err != nil {
		return models.AuthResult{}, &Error{Kind: KindInternal, Message: "Failed to store session", Err: err}
	}
	s.record(ctx, models.LoginSuccess, in.Username, info)
	s.logger.Info("account registered", zap.String("user_id", res.User.ID))
	return res, nil
}

// Logout forgets the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return &Error{Kind: KindInternal, Message: "Failed to clear session", Err: err}
	}
	return nil
}

// CurrentUser returns the signed-in profile.
func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	u, ok, err := s.session.User(ctx)
	if err != nil {
		return models.User{}, &Error{Kind: KindInternal, Message: "Failed to read session", Err: err}
	}
	if !ok {
		return models.User{}, &Error{Kind: KindUnauthorized, Message: "Not signed in"}
	}
	return u, nil
}

// LoginHistory returns the backend login history, or the local log when the
// backend is unreachable.
func (s *AuthService) LoginHistory(ctx context.Context) ([]models.LoginEntry, error) {
	entries, err := s.api.LoginHistory(ctx)
	if err == nil {
		return entries, nil
	}
	if !clients.IsOffline(err) {
		return nil, normalize(err, "Failed to fetch login history")
	}
	s.logger.Info("serving login history from local log")
	return s.LocalLoginHistory(ctx, 0)
}

// LocalLoginHistory returns at most limit locally recorded attempts, newest
// first. limit <= 0 returns all of them.
func (s *AuthService) LocalLoginHistory(ctx context.Context, limit int) ([]models.LoginEntry, error) {
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "Failed to read login history", Err: err}
	}
	return entries, nil
}

func (s *AuthService) record(ctx context.Context, status models.LoginStatus, username string, info ClientInfo) {
	entry := loginhistory.NewEntry(loginhistory.Attempt{
		Status:    status,
		Username:  strings.TrimSpace(username),
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
	})
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("login history append failed", zap.Error(err))
	}
}
