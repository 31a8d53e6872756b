package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"paperdeck/internal/config"
)

// Ledger is the append-mostly audit log of artifact runs, backed by SQLite.
// The checkpoint remains the pipeline's source of truth; the ledger exists so
// `paperdeck runs` can answer "what happened, when" across projects without
// walking every output tree.
type Ledger struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (l *Ledger) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := l.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the run ledger database under the log
// directory. A sibling flock guards against two processes initializing the
// schema at once; it is held for the lifetime of the ledger.
func Open(cfg *config.Config) (*Ledger, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "runs.db")
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("ledger at %s is in use by another paperdeck process", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ledger := &Ledger{db: db, lock: lock, path: dbPath}
	if err := ledger.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return ledger, nil
}

func (l *Ledger) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    project_key TEXT NOT NULL,
    run_id TEXT NOT NULL,
    slide_count INTEGER NOT NULL DEFAULT 0,
    resolved INTEGER NOT NULL DEFAULT 0,
    missing INTEGER NOT NULL DEFAULT 0,
    deck_path TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(project_key, run_id)
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_key, created_at);
`
	if err := l.execWithRetry(ctx, schema); err != nil {
		return fmt.Errorf("init ledger schema: %w", err)
	}
	return nil
}

// Close releases the database and the process lock.
func (l *Ledger) Close() error {
	dbErr := l.db.Close()
	lockErr := l.lock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

// Path returns the database file location.
func (l *Ledger) Path() string {
	return l.path
}

// Entry is one recorded run.
type Entry struct {
	ID         string
	ProjectKey string
	RunID      string
	SlideCount int
	Resolved   int
	Missing    int
	DeckPath   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const timeFormat = time.RFC3339

// RecordExport inserts a run when prompts are exported. Re-recording the same
// run updates its slide count instead of erroring so re-exports stay cheap.
func (l *Ledger) RecordExport(ctx context.Context, projectKey, runID string, slideCount int) error {
	now := time.Now().UTC().Format(timeFormat)
	return l.execWithRetry(ctx, `
INSERT INTO runs (id, project_key, run_id, slide_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(project_key, run_id) DO UPDATE SET slide_count = excluded.slide_count, updated_at = excluded.updated_at`,
		uuid.NewString(), projectKey, runID, slideCount, now, now)
}

// RecordImport updates a run's artifact resolution counts.
func (l *Ledger) RecordImport(ctx context.Context, projectKey, runID string, resolved, missing int) error {
	now := time.Now().UTC().Format(timeFormat)
	return l.execWithRetry(ctx, `
UPDATE runs SET resolved = ?, missing = ?, updated_at = ? WHERE project_key = ? AND run_id = ?`,
		resolved, missing, now, projectKey, runID)
}

// RecordAssemble stores where a run's deck was written.
func (l *Ledger) RecordAssemble(ctx context.Context, projectKey, runID, deckPath string) error {
	now := time.Now().UTC().Format(timeFormat)
	return l.execWithRetry(ctx, `
UPDATE runs SET deck_path = ?, updated_at = ? WHERE project_key = ? AND run_id = ?`,
		deckPath, now, projectKey, runID)
}

// List returns recorded runs, newest first. An empty projectKey lists runs
// across all projects.
func (l *Ledger) List(ctx context.Context, projectKey string) ([]Entry, error) {
	ctx = ensureContext(ctx)
	query := `
SELECT id, project_key, run_id, slide_count, resolved, missing, deck_path, created_at, updated_at
FROM runs`
	args := []any{}
	if projectKey != "" {
		query += ` WHERE project_key = ?`
		args = append(args, projectKey)
	}
	query += ` ORDER BY created_at DESC, run_id DESC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var created, updated string
		if err := rows.Scan(&entry.ID, &entry.ProjectKey, &entry.RunID, &entry.SlideCount,
			&entry.Resolved, &entry.Missing, &entry.DeckPath, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan ledger run: %w", err)
		}
		entry.CreatedAt, _ = time.Parse(timeFormat, created)
		entry.UpdatedAt, _ = time.Parse(timeFormat, updated)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger runs: %w", err)
	}
	return entries, nil
}
