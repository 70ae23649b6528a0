// Package audit records per-request extraction outcomes in a SQLite database.
// Writes never block or fail the request path: errors are logged via slog and
// do not propagate.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/docutils/idgen"
)

// Entry is one extraction outcome.
type Entry struct {
	Filename   string
	Format     string
	FileSize   int64
	DurationMs int64
	Success    bool
	Error      string
}

// Logger writes extraction entries to the audit database.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures a Logger.
type Option func(*Logger)

// WithIDGenerator sets a custom ID generator for entry IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Logger) { l.newID = gen }
}

// NewLogger creates a Logger backed by the given database.
func NewLogger(db *sql.DB, opts ...Option) *Logger {
	l := &Logger{
		db:    db,
		newID: idgen.Prefixed("ext_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Init creates the schema. Idempotent.
func (l *Logger) Init() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS extraction_logs (
			id          TEXT PRIMARY KEY,
			filename    TEXT NOT NULL,
			format      TEXT NOT NULL DEFAULT '',
			file_size   INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			success     INTEGER NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_extraction_logs_created
			ON extraction_logs(created_at);
	`)
	return err
}

// Log records one extraction outcome. A failing audit store never blocks the
// request that produced the entry.
func (l *Logger) Log(ctx context.Context, e Entry) {
	success := 0
	if e.Success {
		success = 1
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO extraction_logs (
			id, filename, format, file_size, duration_ms, success, error, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		l.newID(), e.Filename, e.Format, e.FileSize, e.DurationMs, success, e.Error,
		time.Now().Unix())
	if err != nil {
		slog.Error("audit log failed", "error", err, "filename", e.Filename)
	}
}

// Open opens the audit database at path, creating parent directories as
// needed. The caller must have registered the "sqlite" driver.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// modernc sqlite: one writer connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	return db, nil
}
