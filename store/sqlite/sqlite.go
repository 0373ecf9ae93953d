/*
Package sqlite provides a SQLite-backed implementation of the worklog
storage interfaces.

PURPOSE:
  Persists worklog records plus the user and session-token tables the
  HTTP layer needs. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  worklogs:  One row per overtime session, scoped by owner
  users:     Registered accounts (bcrypt password hashes)
  tokens:    Bearer session tokens

OWNER SCOPING:
  Every worklog query is scoped by owner_id. Owner() returns a view
  bound to one owner that satisfies worklog.Store, which is what the
  engine-facing callers use.

DATE ENCODING:
  The date column stores whatever encoding the record arrived in (ISO
  day or legacy spreadsheet serial); normalization happens in the
  engine on read. Duration is stored as TEXT and hydrated through
  worklog.ParseHours so a corrupted row degrades to a zero
  contribution instead of failing the listing.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/worklog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  logs := store.Owner(userID)   // worklog.Store view

SEE ALSO:
  - worklog/store.go: Interface definition
  - worklog/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/worklog-engine/worklog"
)

// Store implements worklog persistence plus user/token storage.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// User is a registered account row.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID returns a prefixed random identifier. Random rather than
// time-based so concurrent inserts cannot collide on the primary key.
func NewID(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return prefix + "-" + hex.EncodeToString(buf)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worklogs (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		date TEXT NOT NULL,
		duration_hours TEXT NOT NULL,
		reason TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_worklogs_owner
		ON worklogs(owner_id);
	CREATE INDEX IF NOT EXISTS idx_worklogs_owner_date
		ON worklogs(owner_id, date);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tokens (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tokens_user
		ON tokens(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKLOGS
// =============================================================================

// ListWorklogs returns all records for an owner, newest first by
// insertion time. Calendar ordering is the engine's job.
func (s *Store) ListWorklogs(ctx context.Context, ownerID string) ([]worklog.WorklogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, duration_hours, reason, notes
		FROM worklogs
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []worklog.WorklogRecord
	for rows.Next() {
		var rec worklog.WorklogRecord
		var hours string
		if err := rows.Scan(&rec.ID, &rec.Date, &hours, &rec.Reason, &rec.Notes); err != nil {
			return nil, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
		}
		rec.DurationHours = worklog.ParseHours(hours)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateWorklog persists a new record for an owner and assigns its id.
func (s *Store) CreateWorklog(ctx context.Context, ownerID string, c worklog.Candidate) (worklog.WorklogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	id := NewID("wl")

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worklogs (id, owner_id, date, duration_hours, reason, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, c.Date, c.DurationHours.String(), c.Reason, c.Notes, now, now)
	if err != nil {
		return worklog.WorklogRecord{}, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}

	return worklog.WorklogRecord{
		ID:            id,
		Date:          c.Date,
		DurationHours: c.DurationHours,
		Reason:        c.Reason,
		Notes:         c.Notes,
	}, nil
}

// UpdateWorklog replaces the four mutable fields of an owner's record.
func (s *Store) UpdateWorklog(ctx context.Context, ownerID, id string, c worklog.Candidate) (worklog.WorklogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
		UPDATE worklogs
		SET date = ?, duration_hours = ?, reason = ?, notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		c.Date, c.DurationHours.String(), c.Reason, c.Notes, now, id, ownerID)
	if err != nil {
		return worklog.WorklogRecord{}, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return worklog.WorklogRecord{}, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return worklog.WorklogRecord{}, worklog.ErrNotFound
	}

	return worklog.WorklogRecord{
		ID:            id,
		Date:          c.Date,
		DurationHours: c.DurationHours,
		Reason:        c.Reason,
		Notes:         c.Notes,
	}, nil
}

// DeleteWorklog removes an owner's record by id.
func (s *Store) DeleteWorklog(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM worklogs WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return worklog.ErrNotFound
	}
	return nil
}

// =============================================================================
// OWNER VIEW - worklog.Store bound to one owner
// =============================================================================

// Owner returns a worklog.Store view scoped to one owner.
func (s *Store) Owner(ownerID string) worklog.Store {
	return &ownerView{store: s, ownerID: ownerID}
}

type ownerView struct {
	store   *Store
	ownerID string
}

func (v *ownerView) List(ctx context.Context) ([]worklog.WorklogRecord, error) {
	return v.store.ListWorklogs(ctx, v.ownerID)
}

func (v *ownerView) Create(ctx context.Context, c worklog.Candidate) (worklog.WorklogRecord, error) {
	return v.store.CreateWorklog(ctx, v.ownerID, c)
}

func (v *ownerView) Update(ctx context.Context, id string, c worklog.Candidate) (worklog.WorklogRecord, error) {
	return v.store.UpdateWorklog(ctx, v.ownerID, id, c)
}

func (v *ownerView) Delete(ctx context.Context, id string) error {
	return v.store.DeleteWorklog(ctx, v.ownerID, id)
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser saves a new account. A duplicate username surfaces the
// UNIQUE constraint error for the caller to map.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.DisplayName,
		u.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetUserByUsername returns the account for a username, or nil.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, display_name, created_at
		FROM users WHERE username = ?`, username))
}

// GetUser returns the account for an id, or nil.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, display_name, created_at
		FROM users WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

// =============================================================================
// TOKENS
// =============================================================================

// SaveToken records a bearer session token for a user.
func (s *Store) SaveToken(ctx context.Context, token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (token, user_id, created_at)
		VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	return nil
}

// UserForToken resolves a bearer token to its user id. Empty string
// when the token is unknown or older than ttl (ttl <= 0 disables the
// age check). Expired tokens are removed on first use past the TTL.
func (s *Store) UserForToken(ctx context.Context, token string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userID, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, created_at FROM tokens WHERE token = ?`, token).Scan(&userID, &createdAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}

	if ttl > 0 {
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil || time.Since(created) > ttl {
			if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token); err != nil {
				return "", fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
			}
			return "", nil
		}
	}
	return userID, nil
}

// DeleteToken invalidates a session token.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("%w: %v", worklog.ErrStoreUnavailable, err)
	}
	return nil
}
