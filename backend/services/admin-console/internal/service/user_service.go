package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/clients"
	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/usercache"
	"evhub/backend/services/admin-console/internal/validation"
)

// UserAPI is the /users transport used by UserService.
type UserAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	ByNIC(ctx context.Context, nic string) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, record map[string]any) (models.User, error)
	Update(ctx context.Context, id string, record map[string]any) (models.User, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (models.User, error)
}

// UserCache is the local user store read when the backend is unreachable.
type UserCache interface {
	All(ctx context.Context) ([]usercache.Record, error)
	ByNIC(ctx context.Context, nic string) (usercache.Record, error)
	ByEmail(ctx context.Context, email string) (usercache.Record, error)
	ByRemoteID(ctx context.Context, remoteID string) (usercache.Record, error)
	SyncFromRemote(ctx context.Context, r usercache.Record) (usercache.Record, error)
	Delete(ctx context.Context, id int64) error
}

// UserService manages accounts and keeps the local cache in step with the
// backend.
type UserService struct {
	api    UserAPI
	cache  UserCache
	logger *zap.Logger
}

// NewUserService builds UserService. cache may be nil.
func NewUserService(api UserAPI, cache UserCache, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{api: api, cache: cache, logger: logger}
}

// List returns every user, from the cache when the backend is offline.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.api.List(ctx)
	if err == nil {
		for _, u := range users {
			s.sync(ctx, u)
		}
		return users, nil
	}
	if !s.canFallback(err) {
		return nil, normalize(err, "Failed to fetch users")
	}

	records, cacheErr := s.cache.All(ctx)
	if cacheErr != nil {
		s.logger.Warn("user cache read failed", zap.Error(cacheErr))
		return nil, normalize(err, "Failed to fetch users")
	}
	s.logger.Info("serving users from local cache", zap.Int("count", len(records)))
	out := make([]models.User, len(records))
	for i, r := range records {
		out[i] = r.User()
	}
	return out, nil
}

// Refresh reloads every user from the backend into the cache, retrying
// transient failures with retry's backoff. It never serves from the cache.
func (s *UserService) Refresh(ctx context.Context, retry clients.Retrier) (int, error) {
	var (
		users     []models.User
		permanent error
	)
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.api.List(ctx)
		if err != nil && !transient(err) {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		err = permanent
	}
	if err != nil {
		return 0, normalize(err, "Failed to refresh users")
	}
	for _, u := range users {
		s.sync(ctx, u)
	}
	s.logger.Info("user cache refreshed", zap.Int("count", len(users)))
	return len(users), nil
}

func transient(err error) bool {
	switch clients.KindOf(err) {
	case clients.KindTransport, clients.KindTimeout, clients.KindServer, clients.KindRateLimited:
		return true
	}
	return false
}

// Get returns one user by backend ID.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, invalid("User ID is required")
	}
	return s.lookup(ctx, "Failed to fetch user",
		func() (models.User, error) { return s.api.Get(ctx, id) },
		func() (usercache.Record, error) { return s.cache.ByRemoteID(ctx, id) },
	)
}

// ByNIC returns the user with the given NIC.
func (s *UserService) ByNIC(ctx context.Context, nic string) (models.User, error) {
	if strings.TrimSpace(nic) == "" {
		return models.User{}, invalid("NIC is required")
	}
	return s.lookup(ctx, "Failed to fetch user by NIC",
		func() (models.User, error) { return s.api.ByNIC(ctx, nic) },
		func() (usercache.Record, error) { return s.cache.ByNIC(ctx, nic) },
	)
}

// ByEmail returns the user with the given email.
func (s *UserService) ByEmail(ctx context.Context, email string) (models.User, error) {
	if strings.TrimSpace(email) == "" {
		return models.User{}, invalid("Email is required")
	}
	return s.lookup(ctx, "Failed to fetch user by email",
		func() (models.User, error) { return s.api.ByEmail(ctx, email) },
		func() (usercache.Record, error) { return s.cache.ByEmail(ctx, email) },
	)
}

func (s *UserService) lookup(ctx context.Context, fallback string, remote func() (models.User, error), local func() (usercache.Record, error)) (models.User, error) {
	u, err := remote()
	if err == nil {
		s.sync(ctx, u)
		return u, nil
	}
	if !s.canFallback(err) {
		return models.User{}, normalize(err, fallback)
	}
	r, cacheErr := local()
	if cacheErr != nil {
		if !errors.Is(cacheErr, usercache.ErrNotFound) {
			s.logger.Warn("user cache read failed", zap.Error(cacheErr))
		}
		return models.User{}, normalize(err, fallback)
	}
	return r.User(), nil
}

// Create validates in and creates the account.
func (s *UserService) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	record := validation.Sanitize(in.Record())
	if errs := validation.UserSchema.Validate(record); len(errs) > 0 {
		return models.User{}, validationError(errs)
	}
	u, err := s.api.Create(ctx, record)
	if err != nil {
		return models.User{}, normalize(err, "Failed to create user")
	}
	s.sync(ctx, u)
	s.logger.Info("user created", zap.String("user_id", u.ID))
	return u, nil
}

// Update validates in and replaces the account fields. The NIC is the
// account key and is only checked when supplied.
func (s *UserService) Update(ctx context.Context, id string, in models.UserInput) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, invalid("User ID is required")
	}
	record := validation.Sanitize(in.Record())
	schema := validation.UserSchema
	if record["nic"] == "" {
		delete(record, "nic")
		schema = schema.Partial(record)
	}
	if errs := schema.Validate(record); len(errs) > 0 {
		return models.User{}, validationError(errs)
	}
	u, err := s.api.Update(ctx, id, record)
	if err != nil {
		return models.User{}, normalize(err, "Failed to update user")
	}
	s.sync(ctx, u)
	return u, nil
}

// Delete removes the account and its cached copy.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("User ID is required")
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return normalize(err, "Failed to delete user")
	}
	if s.cache != nil {
		r, err := s.cache.ByRemoteID(ctx, id)
		if err == nil {
			err = s.cache.Delete(ctx, r.ID)
		}
		if err != nil && !errors.Is(err, usercache.ErrNotFound) {
			s.logger.Warn("user cache delete failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// Deactivate disables the account.
func (s *UserService) Deactivate(ctx context.Context, id string) (models.User, error) {
	return s.setActive(ctx, id, false)
}

// Reactivate enables the account.
func (s *UserService) Reactivate(ctx context.Context, id string) (models.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *UserService) setActive(ctx context.Context, id string, active bool) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, invalid("User ID is required")
	}
	u, err := s.api.SetActive(ctx, id, active)
	if err != nil {
		fallback := "Failed to deactivate user"
		if active {
			fallback = "Failed to reactivate user"
		}
		return models.User{}, normalize(err, fallback)
	}
	// Some backend builds answer with a message instead of the user.
	if u.ID == "" {
		u, err = s.api.Get(ctx, id)
		if err != nil {
			return models.User{}, normalize(err, "Failed to fetch user")
		}
	}
	s.sync(ctx, u)
	return u, nil
}

func (s *UserService) canFallback(err error) bool {
	return s.cache != nil && clients.IsOffline(err)
}

func (s *UserService) sync(ctx context.Context, u models.User) {
	if s.cache == nil || u.ID == "" {
		return
	}
	if _, err := s.cache.SyncFromRemote(ctx, usercache.FromUser(u)); err != nil {
		s.logger.Warn("user cache sync failed", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// UserFilter narrows the user table. Role "" or "All" keeps every role.
type UserFilter struct {
	Search string
	Role   string
}

// FilterUsers matches Search against username and email.
func FilterUsers(users []models.User, f UserFilter) []models.User {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if f.Role != "" && f.Role != "All" && string(u.Role) != f.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}
