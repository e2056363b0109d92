package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evhub/backend/libs/db"
	"evhub/backend/services/admin-console/internal/clients"
	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/usercache"
)

var cacheCounter atomic.Int64

func newTestCache(t *testing.T) *usercache.Store {
	t.Helper()
	conn, err := db.NewSQLiteDB(fmt.Sprintf("file:service_users_%d?mode=memory&cache=shared", cacheCounter.Add(1)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	store, err := usercache.New(conn, usercache.DriverSQLite)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init cache: %v", err)
	}
	return store
}

var errOffline = &clients.APIError{Kind: clients.KindTransport, Message: "Network error occurred"}

type fakeUserAPI struct {
	mu      sync.Mutex
	users   map[string]models.User
	offline bool
	calls   int
	nextID  int
}

func newFakeUserAPI(users ...models.User) *fakeUserAPI {
	f := &fakeUserAPI{users: map[string]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserAPI) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.offline {
		return errOffline
	}
	return nil
}

func (f *fakeUserAPI) setOffline(v bool) {
	f.mu.Lock()
	f.offline = v
	f.mu.Unlock()
}

func (f *fakeUserAPI) List(context.Context) ([]models.User, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserAPI) find(match func(models.User) bool) (models.User, error) {
	if err := f.begin(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, &clients.APIError{Kind: clients.KindStatus, Status: http.StatusNotFound, Message: "User not found"}
}

func (f *fakeUserAPI) Get(_ context.Context, id string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.ID == id })
}

func (f *fakeUserAPI) ByNIC(_ context.Context, nic string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.NIC == nic })
}

func (f *fakeUserAPI) ByEmail(_ context.Context, email string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.Email == email })
}

func userFromRecord(id string, record map[string]any) models.User {
	u := models.User{ID: id, IsActive: true}
	u.Username, _ = record["username"].(string)
	u.Email, _ = record["email"].(string)
	u.Phone, _ = record["phone"].(string)
	u.NIC, _ = record["nic"].(string)
	role, _ := record["role"].(string)
	u.Role = models.Role(role)
	return u
}

func (f *fakeUserAPI) Create(_ context.Context, record map[string]any) (models.User, error) {
	if err := f.begin(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := userFromRecord(fmt.Sprintf("u%d", f.nextID), record)
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserAPI) Update(_ context.Context, id string, record map[string]any) (models.User, error) {
	if err := f.begin(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := userFromRecord(id, record)
	if u.NIC == "" {
		u.NIC = f.users[id].NIC
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserAPI) Delete(_ context.Context, id string) error {
	if err := f.begin(); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.users, id)
	f.mu.Unlock()
	return nil
}

// SetActive answers with a message body, like the backend does.
func (f *fakeUserAPI) SetActive(_ context.Context, id string, active bool) (models.User, error) {
	if err := f.begin(); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	u := f.users[id]
	u.IsActive = active
	f.users[id] = u
	f.mu.Unlock()
	return models.User{}, nil
}

func sampleUser(id, nic string) models.User {
	return models.User{
		ID:       id,
		Username: "user-" + id,
		Email:    id + "@evhub.lk",
		Phone:    "0771234567",
		NIC:      nic,
		Role:     models.RoleCustomer,
		IsActive: true,
	}
}

func TestUserListSyncsCacheAndFallsBackOffline(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	api := newFakeUserAPI(sampleUser("u1", "200012345678"), sampleUser("u2", "991234567V"))
	svc := NewUserService(api, cache, nil)

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	cached, err := cache.All(ctx)
	if err != nil || len(cached) != 2 {
		t.Fatalf("expected 2 cached users, got %d err=%v", len(cached), err)
	}

	// A second sync must update rather than duplicate.
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if cached, _ = cache.All(ctx); len(cached) != 2 {
		t.Fatalf("expected sync to upsert, got %d rows", len(cached))
	}

	api.setOffline(true)
	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("offline list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users from cache, got %d", len(users))
	}

	u, err := svc.ByNIC(ctx, "991234567V")
	if err != nil || u.ID != "u2" {
		t.Fatalf("expected cached u2 by NIC, got %+v err=%v", u, err)
	}
	u, err = svc.Get(ctx, "u1")
	if err != nil || u.Email != "u1@evhub.lk" {
		t.Fatalf("expected cached u1 by ID, got %+v err=%v", u, err)
	}

	_, err = svc.ByEmail(ctx, "nobody@evhub.lk")
	if svcErr, ok := AsError(err); !ok || svcErr.Kind != KindOffline {
		t.Fatalf("expected offline error for cache miss, got %v", err)
	}
}

func TestUserListWithoutCachePropagatesOffline(t *testing.T) {
	api := newFakeUserAPI()
	api.setOffline(true)
	svc := NewUserService(api, nil, nil)

	_, err := svc.List(context.Background())
	svcErr, ok := AsError(err)
	if !ok || svcErr.Kind != KindOffline || svcErr.Message != "Network error occurred" {
		t.Fatalf("expected offline error, got %v", err)
	}
}

func TestUserCreateValidatesAndCaches(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	api := newFakeUserAPI()
	svc := NewUserService(api, cache, nil)

	_, err := svc.Create(ctx, models.UserInput{Username: "ab", Email: "not-an-email", Phone: "077", NIC: "200012345678", Role: "Admin"})
	svcErr, ok := AsError(err)
	if !ok || svcErr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []string{
		"username must be at least 3 characters",
		"email must be a valid email address",
		"phone must be at least 10 characters",
		"role must be one of: Customer, Backoffice",
	}
	if fmt.Sprint(svcErr.ValidationErrors) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, svcErr.ValidationErrors)
	}
	if api.calls != 0 {
		t.Fatalf("expected no network call, got %d", api.calls)
	}

	u, err := svc.Create(ctx, models.UserInput{Username: "kasun", Email: "kasun@evhub.lk", Phone: "0771234567", NIC: "200012345678", Role: models.RoleBackoffice})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := cache.ByNIC(ctx, "200012345678")
	if err != nil || rec.RemoteID != u.ID {
		t.Fatalf("expected cached user, got %+v err=%v", rec, err)
	}
}

func TestUserDeactivateRefreshesCache(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	api := newFakeUserAPI(sampleUser("u1", "200012345678"))
	svc := NewUserService(api, cache, nil)

	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	u, err := svc.Deactivate(ctx, "u1")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if u.IsActive {
		t.Fatalf("expected inactive user")
	}
	rec, err := cache.ByRemoteID(ctx, "u1")
	if err != nil || rec.IsActive {
		t.Fatalf("expected inactive cached row, got %+v err=%v", rec, err)
	}

	if err := svc.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.ByRemoteID(ctx, "u1"); !errors.Is(err, usercache.ErrNotFound) {
		t.Fatalf("expected cached row removed, got %v", err)
	}
}

func TestUserUpdateKeepsNICOptional(t *testing.T) {
	api := newFakeUserAPI(sampleUser("u1", "200012345678"))
	svc := NewUserService(api, nil, nil)

	u, err := svc.Update(context.Background(), "u1", models.UserInput{Username: "renamed", Email: "u1@evhub.lk", Phone: "0771234567", Role: models.RoleCustomer})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Username != "renamed" || u.NIC != "200012345678" {
		t.Fatalf("unexpected updated user %+v", u)
	}
}

func TestFilterUsers(t *testing.T) {
	users := []models.User{
		{ID: "1", Username: "kasun", Email: "kasun@evhub.lk", Role: models.RoleBackoffice},
		{ID: "2", Username: "nimali", Email: "nimali@mail.com", Role: models.RoleCustomer},
		{ID: "3", Username: "ruwan", Email: "ruwan@evhub.lk", Role: models.RoleCustomer},
	}
	if got := FilterUsers(users, UserFilter{Search: "EVHUB"}); len(got) != 2 {
		t.Fatalf("expected 2 evhub users, got %d", len(got))
	}
	if got := FilterUsers(users, UserFilter{Search: "evhub", Role: "Customer"}); len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("unexpected filtered users %v", got)
	}
	if got := FilterUsers(users, UserFilter{Role: "All"}); len(got) != 3 {
		t.Fatalf("expected all users, got %d", len(got))
	}
}

type flakyUserAPI struct {
	*fakeUserAPI
	failures int
	err      error
}

func (f *flakyUserAPI) List(ctx context.Context) ([]models.User, error) {
	if f.failures > 0 {
		f.failures--
		f.calls++
		return nil, f.err
	}
	return f.fakeUserAPI.List(ctx)
}

func TestUserRefreshRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	api := &flakyUserAPI{fakeUserAPI: newFakeUserAPI(sampleUser("u1", "200012345678")), failures: 2, err: errOffline}
	svc := NewUserService(api, cache, nil)

	n, err := svc.Refresh(ctx, clients.Retrier{Attempts: 3, Base: time.Millisecond})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 refreshed user, got %d err=%v", n, err)
	}
	if api.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", api.calls)
	}
	if _, err := cache.ByRemoteID(ctx, "u1"); err != nil {
		t.Fatalf("expected cached u1, got %v", err)
	}
}

func TestUserRefreshStopsOnPermanentFailure(t *testing.T) {
	forbidden := &clients.APIError{Kind: clients.KindForbidden, Status: http.StatusForbidden, Message: "Access denied"}
	api := &flakyUserAPI{fakeUserAPI: newFakeUserAPI(), failures: 5, err: forbidden}
	svc := NewUserService(api, nil, nil)

	_, err := svc.Refresh(context.Background(), clients.Retrier{Attempts: 3, Base: time.Millisecond})
	svcErr, ok := AsError(err)
	if !ok || svcErr.Kind != KindForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", api.calls)
	}
}
