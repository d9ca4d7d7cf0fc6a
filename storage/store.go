// Package storage persists page records and their chunks in SQLite or
// PostgreSQL. Every record is written in its own transaction under the run
// ID the store was opened with.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect holds the statements that differ between drivers.
type dialect struct {
	idColumn    string
	positional  bool // $1-style placeholders
	foreignKeys string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		idColumn:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		foreignKeys: "PRAGMA foreign_keys = ON",
	},
	DriverPostgres: {
		idColumn:   "BIGSERIAL PRIMARY KEY",
		positional: true,
	},
}

// Store is a core.Sink backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	runID   string
}

// Open connects to the database, creates the schema if needed and registers
// a new run. An empty runID gets a fresh UUID.
func Open(ctx context.Context, driver, dsn, runID string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases and PRAGMAs consistent.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: d, runID: runID}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// RunID returns the identifier every record of this store is written under.
func (s *Store) RunID() string { return s.runID }

func (s *Store) init(ctx context.Context) error {
	if s.dialect.foreignKeys != "" {
		if _, err := s.db.ExecContext(ctx, s.dialect.foreignKeys); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	for _, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO runs (id, started_at) VALUES (?, ?)`),
		s.runID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("registering run %s: %w", s.runID, err)
	}
	return nil
}

func schema(d dialect) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			id ` + d.idColumn + `,
			run_id TEXT NOT NULL REFERENCES runs(id),
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			markdown TEXT NOT NULL,
			metadata TEXT,
			chunked BOOLEAN NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_run_url ON pages (run_id, url)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			page_id BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			char_count INTEGER NOT NULL,
			PRIMARY KEY (page_id, chunk_index)
		)`,
	}
}

// Push stores rec and its chunks in one transaction.
func (s *Store) Push(ctx context.Context, rec *core.PageRecord) error {
	var meta sql.NullString
	if rec.Metadata != nil {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", rec.URL, err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pageID int64
	err = tx.QueryRowContext(ctx, s.rebind(`
		INSERT INTO pages (run_id, url, title, content, markdown, metadata, chunked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		s.runID, rec.URL, rec.Title, rec.Content, rec.Markdown, meta, rec.Chunks != nil,
	).Scan(&pageID)
	if err != nil {
		return fmt.Errorf("inserting page %s: %w", rec.URL, err)
	}

	if len(rec.Chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO chunks (page_id, chunk_index, text, char_count) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("preparing chunk insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range rec.Chunks {
			if _, err := stmt.ExecContext(ctx, pageID, c.Index, c.Text, c.Metadata.CharCount); err != nil {
				return fmt.Errorf("inserting chunk %d of %s: %w", c.Index, rec.URL, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing page %s: %w", rec.URL, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders as $1, $2, ... for drivers that need it.
func (s *Store) rebind(query string) string {
	if !s.dialect.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
