// Package store persists project records in SQLite. Each project is kept as a
// single JSON document keyed by id; saving replaces the whole document.
package store

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

	"github.com/metria/innovation-accounting/internal/project"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// createdLayout keeps a fixed width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		mode       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		document   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, created_at)`,
}

// SQLiteStore implements project.Store.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ project.Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if path == memoryPath {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migration %d: %w", i, err)
		}
	}

	logger.Debug("project store opened",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts p or replaces the record with the same id.
func (s *SQLiteStore) Save(ctx context.Context, p *project.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	query := `INSERT INTO projects (id, user_id, mode, created_at, document) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, mode = excluded.mode,
			created_at = excluded.created_at, document = excluded.document`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		string(p.Mode),
		p.CreatedAt.UTC().Format(createdLayout),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Update replaces the record with p.ID only while its stored updatedAt still
// equals ifUpdatedAt. The check and the write are one statement, so a save
// that lands in between is never overwritten.
func (s *SQLiteStore) Update(ctx context.Context, p *project.Project, ifUpdatedAt time.Time) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	// Documents hold updatedAt in its JSON text form.
	stamp, err := json.Marshal(ifUpdatedAt)
	if err != nil {
		return fmt.Errorf("encoding updatedAt: %w", err)
	}
	query := `UPDATE projects SET user_id = ?, mode = ?, created_at = ?, document = ?
		WHERE id = ? AND json_extract(document, '$.updatedAt') = ?`
	res, err := s.db.ExecContext(ctx, query,
		p.UserID,
		string(p.Mode),
		p.CreatedAt.UTC().Format(createdLayout),
		string(doc),
		p.ID,
		strings.Trim(string(stamp), `"`),
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", project.ErrStale, p.ID)
	}
	return nil
}

// Get returns the project with id, or project.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*project.Project, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", project.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return decode(doc)
}

// ListByUser returns userID's projects, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*project.Project, error) {
	return s.list(ctx, `SELECT document FROM projects WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

// ListAll returns every project, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*project.Project, error) {
	return s.list(ctx, `SELECT document FROM projects ORDER BY created_at DESC, id`)
}

// Delete removes the project with id. Deleting a missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]*project.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p, err := decode(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func decode(doc string) (*project.Project, error) {
	var p project.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	return &p, nil
}
