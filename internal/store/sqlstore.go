package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cbthelper/internal/session"

	_ "modernc.org/sqlite"
)

// SqlStore implements Store with SQLite. Each session is one row holding its
// JSON snapshot.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .cbthelper) if it does not exist.
func Open(path string) (*SqlStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serializes writers anyway and :memory: is per-connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unknown schema version %d (want %d)", v, schemaVersion)
	}
	return nil
}

func (s *SqlStore) freshInstall() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveSession upserts the snapshot row.
func (s *SqlStore) SaveSession(snap *session.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return errors.New("snapshot is nil or has no id")
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions(id, data, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snap.ID, string(snap.Data), formatTime(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", snap.ID, err)
	}
	return nil
}

// LoadSession returns the snapshot for id, or nil if absent.
func (s *SqlStore) LoadSession(id string) (*session.Snapshot, error) {
	var data, updated string
	err := s.db.QueryRow("SELECT data, updated_at FROM sessions WHERE id = ?", id).Scan(&data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &session.Snapshot{ID: id, UpdatedAt: parseTime(updated), Data: []byte(data)}, nil
}

// DeleteSession removes id. Deleting a missing id is not an error.
func (s *SqlStore) DeleteSession(id string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// ListSessions returns all snapshots ordered by id.
func (s *SqlStore) ListSessions() ([]*session.Snapshot, error) {
	rows, err := s.db.Query("SELECT id, data, updated_at FROM sessions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return scanSnapshots(rows)
}

// ListStale returns snapshots last written before the cutoff, ordered by id.
func (s *SqlStore) ListStale(before time.Time) ([]*session.Snapshot, error) {
	rows, err := s.db.Query(
		"SELECT id, data, updated_at FROM sessions WHERE updated_at < ? ORDER BY id",
		formatTime(before),
	)
	if err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]*session.Snapshot, error) {
	defer rows.Close()
	var out []*session.Snapshot
	for rows.Next() {
		var id, data, updated string
		if err := rows.Scan(&id, &data, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, &session.Snapshot{ID: id, UpdatedAt: parseTime(updated), Data: []byte(data)})
	}
	return out, rows.Err()
}

// timeLayout is RFC 3339 with a fixed nine-digit fraction, so stored values
// compare correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
