package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	args BLOB,
	result TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS invocations_started_at ON invocations (started_at);`

// startedAtLayout keeps a fixed width so started_at sorts lexically.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	defaultSQLiteDir = ".cursortools"
	defaultSQLiteDB  = "history.db"
)

// DefaultSQLitePath returns ~/.cursortools/history.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultSQLiteDir, defaultSQLiteDB), nil
}

// SQLiteStore persists invocation records in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the ledger at dsn. File paths get their
// parent directory created.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("history: sqlite dsn is required")
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("history: create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts rec. Records without an ID are rejected.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("history: sqlite store is nil")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("history: record id is required")
	}

	var args []byte
	if len(rec.Args) > 0 {
		encoded, err := json.Marshal(rec.Args)
		if err != nil {
			return fmt.Errorf("history: encode args: %w", err)
		}
		args = encoded
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO invocations (id, tool, args, result, error, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Tool,
		args,
		rec.Result,
		rec.Error,
		rec.StartedAt.UTC().Format(startedAtLayout),
		rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("history: sqlite insert %s: %w", rec.ID, err)
	}
	return nil
}

// List returns records newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, errors.New("history: sqlite store is nil")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, tool, args, result, error, started_at, duration_ms
FROM invocations
ORDER BY started_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: sqlite list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			args      []byte
			startedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Tool, &args, &rec.Result, &rec.Error, &startedAt, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("history: sqlite scan: %w", err)
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &rec.Args); err != nil {
				return nil, fmt.Errorf("history: decode args for %s: %w", rec.ID, err)
			}
		}
		rec.StartedAt, err = time.Parse(startedAtLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse started_at for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: sqlite rows: %w", err)
	}
	return records, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
