package plume

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/obsoleter/plume/freeze"
)

// ErrBuildNotFound is returned by History.Files for an unknown build id.
var ErrBuildNotFound = errors.New("plume: build not found")

// timeLayout sorts lexically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Build is one recorded freeze of the site.
type Build struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Output   string
	Files    int
	Bytes    int64
	Err      string // empty for a successful build
}

// Duration is how long the build ran.
func (b Build) Duration() time.Duration {
	return b.Finished.Sub(b.Started)
}

// History wraps a SQLite database recording every site build and the files
// it wrote.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the SQLite database at path, ensures the
// data directory exists, and creates the schema.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets `plume history` read while a build writes; busy_timeout makes
	// a concurrent writer wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	h := &History{db: db}
	if err := h.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) ensureSchema() error {
	_, err := h.db.Exec(`
CREATE TABLE IF NOT EXISTS builds (
    id TEXT PRIMARY KEY,
    started TEXT NOT NULL,
    finished TEXT NOT NULL,
    output TEXT NOT NULL,
    files INTEGER NOT NULL,
    bytes INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS builds_started ON builds (started);
CREATE TABLE IF NOT EXISTS build_files (
    build_id TEXT NOT NULL REFERENCES builds (id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    url TEXT NOT NULL,
    size INTEGER NOT NULL,
    sha256 TEXT NOT NULL,
    PRIMARY KEY (build_id, path)
);
`)
	return err
}

// Record stores a finished build. res may be nil when the build failed
// before anything was written. The new build id is returned.
func (h *History) Record(ctx context.Context, output string, started time.Time, res *freeze.Result, buildErr error) (string, error) {
	b := Build{
		ID:       uuid.NewString(),
		Started:  started,
		Finished: time.Now(),
		Output:   output,
	}
	if res != nil {
		b.Finished = res.Finished
		b.Files = len(res.Files)
		b.Bytes = res.Bytes()
	}
	if buildErr != nil {
		b.Err = buildErr.Error()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO builds (id, started, finished, output, files, bytes, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, formatTime(b.Started), formatTime(b.Finished), b.Output, b.Files, b.Bytes, b.Err); err != nil {
		return "", fmt.Errorf("plume: record build: %w", err)
	}
	if res != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO build_files (build_id, path, url, size, sha256) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer stmt.Close()
		for _, f := range res.Files {
			if _, err := stmt.ExecContext(ctx, b.ID, f.Path, f.URL, f.Size, f.SHA256); err != nil {
				return "", fmt.Errorf("plume: record build file %s: %w", f.Path, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return b.ID, nil
}

// List returns up to limit builds, most recent first.
func (h *History) List(ctx context.Context, limit int) ([]Build, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started, finished, output, files, bytes, error FROM builds ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var started, finished string
		if err := rows.Scan(&b.ID, &started, &finished, &b.Output, &b.Files, &b.Bytes, &b.Err); err != nil {
			return nil, err
		}
		if b.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, err
		}
		if b.Finished, err = time.Parse(timeLayout, finished); err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// Files returns the files written by the build with the given id, ordered
// by path.
func (h *History) Files(ctx context.Context, id string) ([]freeze.File, error) {
	var exists int
	err := h.db.QueryRowContext(ctx, `SELECT 1 FROM builds WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBuildNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT path, url, size, sha256 FROM build_files WHERE build_id = ? ORDER BY path`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []freeze.File
	for rows.Next() {
		var f freeze.File
		if err := rows.Scan(&f.Path, &f.URL, &f.Size, &f.SHA256); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
