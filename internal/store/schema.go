package store

// schemaVersion is the schema this build creates and accepts.
const schemaVersion = 1

// schema is the fresh-install DDL. updated_at is stored fixed-width so the
// index orders it chronologically.
var schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`
