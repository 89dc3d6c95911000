// Package store owns the on-disk SQLite database: session records,
// tool-usage tallies, the full-text index, and file-tracking state
// used for incremental re-indexing.
package store

import (
	_ "embed"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations lists forward-only, idempotent schema changes applied
// after the base schema. Each is recorded in schema_meta by name so
// it never runs twice. A migration failure is logged and skipped,
// never fatal to Open; only the base schema and FTS setup can fail
// startup.
var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "sessions_cwd_index",
		stmt: `CREATE INDEX IF NOT EXISTS idx_sessions_cwd ON sessions(cwd)`,
	},
}

// Store manages a single-writer, multi-reader SQLite connection
// pair over the indexed session database.
type Store struct {
	writer *sql.DB
	reader *sql.DB
	mu     sync.Mutex // serializes writes, mirrors the single-writer invariant
}

func makeDSN(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "ON")
	params.Set("_cache_size", "-64000")
	params.Set("_mmap_size", "268435456")
	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_synchronous", "NORMAL")
	}
	return path + "?" + params.Encode()
}

// Open creates or opens the database at path, applying the schema
// and any pending migrations. It returns a Store with an
// independent single-connection writer pool and a multi-connection
// reader pool.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	writer, err := sql.Open("sqlite3", makeDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("opening writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite3", makeDSN(path, true))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	st := &Store{writer: writer, reader: reader}
	if err := st.init(); err != nil {
		st.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return st, nil
}

func (st *Store) init() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := st.writer.Exec(schemaSQL); err != nil {
		return fmt.Errorf("applying base schema: %w", err)
	}

	if err := st.initFTS(); err != nil {
		return fmt.Errorf("initializing full-text index: %w", err)
	}

	for _, m := range migrations {
		if err := st.applyMigration(m.name, m.stmt); err != nil {
			log.Printf("store: migration %s failed, skipping: %v", m.name, err)
		}
	}
	return nil
}

// applyMigration runs one optional, additive migration. Its failure
// is reported to the caller for logging but never aborts Open: only
// the core schema and FTS setup in init are allowed to fail startup.
func (st *Store) applyMigration(name, stmt string) error {
	var done int
	err := st.writer.QueryRow(
		`SELECT count(*) FROM schema_meta WHERE key = ?`, "migration:"+name,
	).Scan(&done)
	if err != nil {
		return fmt.Errorf("checking migration %s: %w", name, err)
	}
	if done > 0 {
		return nil
	}
	if _, err := st.writer.Exec(stmt); err != nil {
		return fmt.Errorf("applying migration %s: %w", name, err)
	}
	if _, err := st.writer.Exec(
		`INSERT INTO schema_meta(key, value) VALUES (?, '1')`,
		"migration:"+name,
	); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	return nil
}

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS sessions_fts USING fts5(
    session_id UNINDEXED,
    project,
    content,
    tokenize = 'unicode61 remove_diacritics 2'
);
`

// initFTS creates the FTS5 virtual table. Its absence (a SQLite
// build without the fts5 module) is not fatal: HasFTS reports the
// degraded state and Search falls back to a non-ranked scan.
func (st *Store) initFTS() error {
	if _, err := st.writer.Exec(ftsSchema); err != nil {
		if isNoSuchModule(err) {
			return nil
		}
		return err
	}
	return nil
}

func isNoSuchModule(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "no such module") ||
		strings.Contains(err.Error(), "fts5"))
}

// HasFTS reports whether the full-text index is usable in this
// process. It probes the table directly, since the fts5 module may
// be missing even though sqlite_master records the table.
func (st *Store) HasFTS() bool {
	_, err := st.reader.Exec("SELECT 1 FROM sessions_fts LIMIT 1")
	return err == nil
}

// Close closes both connection pools.
func (st *Store) Close() error {
	return errors.Join(st.writer.Close(), st.reader.Close())
}

// Update runs fn inside a write transaction, serialized against
// other writers. The transaction commits on a nil return and rolls
// back otherwise.
func (st *Store) Update(fn func(tx *sql.Tx) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.writer.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Vacuum reclaims free space and defragments the database file.
// Safe to run online; SQLite serializes it against other writers.
func (st *Store) Vacuum() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, err := st.writer.Exec("VACUUM")
	return err
}
