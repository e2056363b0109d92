// Package usercache keeps a local indexed copy of user records so the user
// screens keep working while the backend is unreachable.
package usercache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"evhub/backend/services/admin-console/internal/models"
)

var (
	// ErrNotReady is returned by data operations before Init succeeded.
	ErrNotReady = errors.New("usercache: store not initialized")
	// ErrNotFound represents missing cache rows.
	ErrNotFound = errors.New("usercache: user not found")
	// ErrDuplicate is returned when a NIC or email is already cached.
	ErrDuplicate = errors.New("usercache: duplicate nic or email")
)

// State of the store lifecycle.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// Index names a secondary lookup key.
type Index string

const (
	IndexNIC   Index = "nic"
	IndexEmail Index = "email"
)

const selectColumns = `id, remote_id, username, email, phone, nic, role, is_active, created_at, updated_at`

var now = func() time.Time { return time.Now().UTC() }

// Store is the user cache over *sql.DB.
type Store struct {
	db      *sql.DB
	dialect dialect
	state   atomic.Int32
	initMu  sync.Mutex
}

// New wraps db for the given driver (sqlite or postgres). Call Init before use.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Init creates the table and indexes if absent. It is safe to call repeatedly;
// a failed Init leaves the store Uninitialized.
func (s *Store) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.State() == Ready {
		return nil
	}
	s.state.Store(int32(Initializing))
	for _, stmt := range s.dialect.migration {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.state.Store(int32(Uninitialized))
			return fmt.Errorf("usercache: init: %w", err)
		}
	}
	s.state.Store(int32(Ready))
	return nil
}

func (s *Store) ready() error {
	if s.State() != Ready {
		return ErrNotReady
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		r                    Record
		email, nic           sql.NullString
		role                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.RemoteID, &r.Username, &email, &r.Phone, &nic, &role, &r.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return Record{}, err
	}
	r.Email = email.String
	r.NIC = nic.String
	r.Role = models.Role(role)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return r, nil
}

// Empty NIC and email are stored as NULL so they never collide in the unique indexes.
func nullable(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func wrapWriteErr(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("usercache: %s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("usercache: %s: %w", op, err)
}

// Add inserts a record and returns it with its local ID and timestamps.
func (s *Store) Add(ctx context.Context, r Record) (Record, error) {
	if err := s.ready(); err != nil {
		return Record{}, err
	}
	ts := now()
	r.CreatedAt, r.UpdatedAt = ts, ts
	query := s.q(`
		INSERT INTO cached_users (remote_id, username, email, phone, nic, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.QueryRowContext(ctx, query,
		r.RemoteID, r.Username, nullable(r.Email), r.Phone, nullable(r.NIC), string(r.Role),
		r.IsActive, stamp(r.CreatedAt), stamp(r.UpdatedAt),
	).Scan(&r.ID)
	if err != nil {
		return Record{}, wrapWriteErr("add", err)
	}
	r.Email = strings.TrimSpace(r.Email)
	r.NIC = strings.TrimSpace(r.NIC)
	return r, nil
}

// Get fetches a record by local ID.
func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	if err := s.ready(); err != nil {
		return Record{}, err
	}
	return s.getOne(ctx, s.db, `SELECT `+selectColumns+` FROM cached_users WHERE id = ?`, id)
}

// GetByIndex fetches the single record holding value in a unique index.
func (s *Store) GetByIndex(ctx context.Context, index Index, value string) (Record, error) {
	if err := s.ready(); err != nil {
		return Record{}, err
	}
	var column string
	switch index {
	case IndexNIC:
		column = "nic"
	case IndexEmail:
		column = "email"
	default:
		return Record{}, fmt.Errorf("usercache: unknown index %q", index)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Record{}, ErrNotFound
	}
	return s.getOne(ctx, s.db, `SELECT `+selectColumns+` FROM cached_users WHERE `+column+` = ? LIMIT 1`, value)
}

// ByNIC fetches the record with the given NIC.
func (s *Store) ByNIC(ctx context.Context, nic string) (Record, error) {
	return s.GetByIndex(ctx, IndexNIC, nic)
}

// ByEmail fetches the record with the given email.
func (s *Store) ByEmail(ctx context.Context, email string) (Record, error) {
	return s.GetByIndex(ctx, IndexEmail, email)
}

// ByRemoteID fetches the record synced from the given backend ID.
func (s *Store) ByRemoteID(ctx context.Context, remoteID string) (Record, error) {
	if err := s.ready(); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(remoteID) == "" {
		return Record{}, ErrNotFound
	}
	return s.getOne(ctx, s.db, `SELECT `+selectColumns+` FROM cached_users WHERE remote_id = ? LIMIT 1`, remoteID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getOne(ctx context.Context, db querier, query string, args ...any) (Record, error) {
	r, err := scanRecord(db.QueryRowContext(ctx, s.q(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("usercache: get: %w", err)
	}
	return r, nil
}

// All returns every record ordered by local ID.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM cached_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("usercache: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("usercache: list: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usercache: list: %w", err)
	}
	return out, nil
}

// Update merges patch into the record with the given ID. The ID and
// creation time are kept; UpdatedAt is stamped.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (Record, error) {
	if err := s.ready(); err != nil {
		return Record{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("usercache: update: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.getOne(ctx, tx, `SELECT `+selectColumns+` FROM cached_users WHERE id = ?`, id)
	if err != nil {
		return Record{}, err
	}
	merged := patch.apply(existing)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = now()

	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE cached_users
		SET remote_id = ?, username = ?, email = ?, phone = ?, nic = ?, role = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`),
		merged.RemoteID, merged.Username, nullable(merged.Email), merged.Phone, nullable(merged.NIC),
		string(merged.Role), merged.IsActive, stamp(merged.UpdatedAt), merged.ID,
	)
	if err != nil {
		return Record{}, wrapWriteErr("update", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("usercache: update: %w", err)
	}
	merged.Email = strings.TrimSpace(merged.Email)
	merged.NIC = strings.TrimSpace(merged.NIC)
	return merged, nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM cached_users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("usercache: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate clears the active flag.
func (s *Store) Deactivate(ctx context.Context, id int64) (Record, error) {
	active := false
	return s.Update(ctx, id, Patch{IsActive: &active})
}

// Reactivate sets the active flag.
func (s *Store) Reactivate(ctx context.Context, id int64) (Record, error) {
	active := true
	return s.Update(ctx, id, Patch{IsActive: &active})
}

// SyncFromRemote upserts an API record: the cached row with the same NIC is
// updated, then the row with the same backend ID, otherwise a new row is
// inserted.
func (s *Store) SyncFromRemote(ctx context.Context, r Record) (Record, error) {
	var (
		existing Record
		err      error
	)
	if strings.TrimSpace(r.NIC) != "" {
		existing, err = s.ByNIC(ctx, r.NIC)
	} else {
		err = ErrNotFound
	}
	// A NIC changed on the backend still maps to the same remote user.
	if errors.Is(err, ErrNotFound) && strings.TrimSpace(r.RemoteID) != "" {
		existing, err = s.ByRemoteID(ctx, r.RemoteID)
	}
	switch {
	case err == nil:
		return s.Update(ctx, existing.ID, Patch{
			RemoteID: &r.RemoteID,
			Username: &r.Username,
			Email:    &r.Email,
			Phone:    &r.Phone,
			NIC:      &r.NIC,
			Role:     &r.Role,
			IsActive: &r.IsActive,
		})
	case errors.Is(err, ErrNotFound):
		return s.Add(ctx, r)
	default:
		return Record{}, err
	}
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cached_users`); err != nil {
		return fmt.Errorf("usercache: clear: %w", err)
	}
	return nil
}
