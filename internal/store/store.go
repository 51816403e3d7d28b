package store

import (
	"fmt"

	"cbthelper/internal/session"
)

// DefaultDBPath is the default relative path for the SQLite DB (per-workspace).
// Open() creates the parent dir (e.g. .cbthelper).
const DefaultDBPath = ".cbthelper/sessions.db"

// Store is the persistence facade for session snapshots. The session
// registry uses it as its write-through backend; the CLI reads it directly.
type Store interface {
	session.Backend
	Close() error
}

// Driver names accepted by New.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// New opens the backend named by driver. path is ignored for memory.
func New(driver, path string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemStore(), nil
	case DriverSQLite:
		if path == "" {
			path = DefaultDBPath
		}
		return Open(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q (available: memory, sqlite)", driver)
	}
}
