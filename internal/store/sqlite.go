package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Cascade and SET NULL rules in the schema depend on this pragma.
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'user',
        avatar_url TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS outlines (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        description TEXT,
        creator_id INTEGER REFERENCES users (id),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS modules (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        outline_id INTEGER NOT NULL REFERENCES outlines (id) ON DELETE CASCADE,
        title TEXT NOT NULL,
        position INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS questions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        module_id INTEGER NOT NULL REFERENCES modules (id) ON DELETE CASCADE,
        content TEXT NOT NULL,
        is_key_question BOOLEAN NOT NULL DEFAULT FALSE,
        follow_up_directions TEXT NOT NULL DEFAULT '[]', -- JSON array of strings
        position INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS persona_configs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        role_settings TEXT NOT NULL DEFAULT '{}', -- opaque JSON object
        strategy TEXT NOT NULL DEFAULT '{}',      -- opaque JSON object
        outline_id INTEGER UNIQUE REFERENCES outlines (id) ON DELETE SET NULL
    );

    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        outline_id INTEGER NOT NULL UNIQUE REFERENCES outlines (id) ON DELETE CASCADE,
        persona_id INTEGER NOT NULL UNIQUE REFERENCES persona_configs (id) ON DELETE CASCADE,
        status TEXT NOT NULL DEFAULT 'active',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS participants (
        id TEXT PRIMARY KEY, -- UUID
        project_id TEXT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        last_accessed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        metadata TEXT NOT NULL DEFAULT '{}' -- opaque JSON object
    );

    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        project_id TEXT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
        participant_id TEXT REFERENCES participants (id) ON DELETE SET NULL,
        interviewee_info TEXT NOT NULL DEFAULT '{}', -- opaque JSON object
        transcript TEXT NOT NULL DEFAULT '[]',       -- JSON array, append-only
        start_time DATETIME NOT NULL,
        end_time DATETIME,
        expires_at DATETIME NOT NULL,
        is_starred BOOLEAN NOT NULL DEFAULT FALSE,
        note TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_modules_outline ON modules (outline_id);
    CREATE INDEX IF NOT EXISTS idx_questions_module ON questions (module_id);
    CREATE INDEX IF NOT EXISTS idx_participants_project ON participants (project_id);
    CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions (project_id);
    CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions (start_time);
    `
	_, err := s.db.Exec(schema)
	return err
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// e.g. binding an outline or persona to a second project.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// marshalJSON serializes an opaque map column, defaulting to an empty object.
func marshalJSON(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return string(b), nil
}

// unmarshalMap deserializes an opaque map column. A malformed blob is logged
// and treated as empty rather than failing the whole row read.
func unmarshalMap(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Printf("Warning: malformed JSON map column (%.50s...): %v", raw, err)
		return map[string]any{}
	}
	if m == nil {
		m = map[string]any{}
	}
	return m
}
