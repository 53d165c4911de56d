// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes persists the agent's working notes in SQLite. Notes are
// addressed like files (a path and its content) and namespaced by run ID,
// so a run that fails before writing its report still leaves its notes
// behind for inspection.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wiki-research/pkg/types"
)

const dbFile = "notes.db"

// Note is one stored file.
type Note struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Path      string    `json:"path" yaml:"path"`
	Content   string    `json:"content" yaml:"content"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Info describes a note without its content.
type Info struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int       `json:"size" yaml:"size"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Match is one line of a note that matched a grep pattern.
type Match struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// ErrFTS5Unavailable is returned by Open when the linked SQLite lacks the
// FTS5 module. Build with -tags fts5.
var ErrFTS5Unavailable = errors.New("SQLite was built without FTS5 (build with -tags fts5)")

// Store manages the notes SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates dir/notes.db and its schema. The database carries
// an FTS5 index kept in sync by triggers, so every binary that writes it
// needs FTS5; Open fails with ErrFTS5Unavailable otherwise.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating notes directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening notes database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	var hasFTS5 bool
	if err := s.db.QueryRow(`SELECT sqlite_compileoption_used('ENABLE_FTS5')`).Scan(&hasFTS5); err != nil {
		return fmt.Errorf("checking SQLite compile options: %w", err)
	}
	if !hasFTS5 {
		return ErrFTS5Unavailable
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			path TEXT NOT NULL,
			content TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(run_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_run_id ON notes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='notes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	// FTS5 virtual table with triggers for sync. The rebuild indexes any
	// rows written before the index existed.
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE notes_fts USING fts5(content, content=notes, content_rowid=rowid)`,
		`CREATE TRIGGER notes_ai AFTER INSERT ON notes BEGIN
			INSERT INTO notes_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER notes_ad AFTER DELETE ON notes BEGIN
			INSERT INTO notes_fts(notes_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER notes_au AFTER UPDATE ON notes BEGIN
			INSERT INTO notes_fts(notes_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO notes_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`INSERT INTO notes_fts(notes_fts) VALUES('rebuild')`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// cleanPath normalizes a note path to a rooted, slash-separated form.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("note path: %w", types.ErrEmptyQuery)
	}
	return path.Clean("/" + p), nil
}

// Write creates or overwrites a note.
func (s *Store) Write(ctx context.Context, runID, p, content string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (run_id, path, content, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_id, path) DO UPDATE SET content=excluded.content, updated_at=excluded.updated_at`,
		runID, p, content, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing note %s: %w", p, err)
	}
	return nil
}

// Read returns one note. A missing note yields ErrNotFound.
func (s *Store) Read(ctx context.Context, runID, p string) (*Note, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	n := Note{RunID: runID, Path: p}
	var updated string
	err = s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM notes WHERE run_id = ? AND path = ?`, runID, p,
	).Scan(&n.Content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", p, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading note %s: %w", p, err)
	}
	n.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &n, nil
}

// List returns the notes of a run ordered by path.
func (s *Store) List(ctx context.Context, runID string) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, length(content), updated_at FROM notes WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.Path, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Edit replaces oldText with newText in a note. oldText must occur
// exactly once unless replaceAll is set; a missing note or absent
// oldText yields ErrNotFound.
func (s *Store) Edit(ctx context.Context, runID, p, oldText, newText string, replaceAll bool) (int, error) {
	if oldText == "" {
		return 0, fmt.Errorf("edit: old text: %w", types.ErrEmptyQuery)
	}
	n, err := s.Read(ctx, runID, p)
	if err != nil {
		return 0, err
	}

	count := strings.Count(n.Content, oldText)
	switch {
	case count == 0:
		return 0, fmt.Errorf("text not present in note %s: %w", n.Path, types.ErrNotFound)
	case count > 1 && !replaceAll:
		return 0, fmt.Errorf("text occurs %d times in note %s: add context or replace all", count, n.Path)
	}

	limit := 1
	if replaceAll {
		limit = -1
	}
	if err := s.Write(ctx, runID, n.Path, strings.Replace(n.Content, oldText, newText, limit)); err != nil {
		return 0, err
	}
	if replaceAll {
		return count, nil
	}
	return 1, nil
}

// Grep returns the lines of a run's notes containing pattern,
// case-insensitively. Pattern is a plain substring, not a query.
func (s *Store) Grep(ctx context.Context, runID, pattern string) ([]Match, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("grep: %w", types.ErrEmptyQuery)
	}

	// SQLite's lower() folds ASCII only, so matching happens here.
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content FROM notes WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(pattern)
	var out []Match
	for rows.Next() {
		var p, content string
		if err := rows.Scan(&p, &content); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		for i, line := range strings.Split(content, "\n") {
			if strings.Contains(strings.ToLower(line), needle) {
				out = append(out, Match{Path: p, Line: i + 1, Text: line})
			}
		}
	}
	return out, rows.Err()
}

// Search runs an FTS5 query over a run's notes and returns the matching
// note paths, best match first. Query uses FTS5 syntax (words, "phrases",
// prefix*, AND/OR/NOT).
func (s *Store) Search(ctx context.Context, runID, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search: %w", types.ErrEmptyQuery)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT n.path FROM notes_fts
		 JOIN notes n ON n.rowid = notes_fts.rowid
		 WHERE notes_fts MATCH ? AND n.run_id = ?
		 ORDER BY bm25(notes_fts), n.path`, query, runID)
	if err != nil {
		return nil, fmt.Errorf("searching notes %q: %w", query, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Runs returns the run IDs that have notes, most recently updated first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id FROM notes GROUP BY run_id ORDER BY max(updated_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
