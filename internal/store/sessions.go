package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Session is one indexed conversation log, top-level or subagent.
type Session struct {
	ID            string
	FilePath      string
	Filename      string
	Project       string
	Cwd           *string
	MessageCount  int
	FileSize      int64
	LastModified  int64
	Created       int64
	IndexedAt     int64
	TokensTotal   int
	TokensInput   int
	TokensOutput  int
	PrimaryModel  *string
	IsSubagent    bool
	ParentID      *string
	ToolCounts    map[string]int
	SubagentCount int  // populated by GroupHierarchy, not persisted
	IsStub        bool // populated by GroupHierarchy, not persisted
}

// ListFilter narrows ListSessions. SortBy and Order are validated
// against a whitelist; unrecognized values are silently normalized.
type ListFilter struct {
	Limit            int
	Offset           int
	SortBy           string
	Order            string
	Project          string
	IncludeSubagents bool
}

var sortWhitelist = map[string]string{
	"last_modified": "last_modified",
	"created":       "created",
	"tokens_total":  "tokens_total",
	"message_count": "message_count",
	"file_size":     "file_size",
}

func normalizeSort(sortBy, order string) (string, string) {
	col, ok := sortWhitelist[sortBy]
	if !ok {
		col = "last_modified"
	}
	order = strings.ToUpper(order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return col, order
}

// ToolStat is one row of Store.ToolStats.
type ToolStat struct {
	Name            string
	TotalCalls      int
	DistinctSessions int
}

// Summary aggregates totals across the whole database.
type Summary struct {
	Sessions      int
	Messages      int
	TokensTotal   int
	Bytes         int64
	Projects      int
	SessionsLast24h int
}

// ResolveResult reports the effect of ResolveProjectNames.
type ResolveResult struct {
	GroupsResolved   int
	SessionsUpdated  int
}

// NeedsIndexing reports whether path must be (re)parsed: true iff
// there is no file-tracking row for it, or the tracked (mtime, size)
// differs from the given values.
func (st *Store) NeedsIndexing(path string, mtime, size int64) (bool, error) {
	var trackedMtime, trackedSize int64
	err := st.reader.QueryRow(
		`SELECT mtime, size FROM file_tracking WHERE file_path = ?`, path,
	).Scan(&trackedMtime, &trackedSize)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking file tracking for %s: %w", path, err)
	}
	return trackedMtime != mtime || trackedSize != size, nil
}

// UpsertSession atomically replaces rec's session row, tool-usage
// rows, FTS row, and file-tracking row. An empty searchableText
// removes any prior FTS row without inserting a new one.
func (st *Store) UpsertSession(rec Session, searchableText string) error {
	return st.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO sessions (
				id, file_path, filename, project, cwd, message_count,
				file_size, last_modified, created, indexed_at,
				tokens_total, tokens_input, tokens_output,
				primary_model, is_subagent, parent_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				file_path = excluded.file_path,
				filename = excluded.filename,
				project = excluded.project,
				cwd = excluded.cwd,
				message_count = excluded.message_count,
				file_size = excluded.file_size,
				last_modified = excluded.last_modified,
				created = min(sessions.created, excluded.created),
				indexed_at = excluded.indexed_at,
				tokens_total = excluded.tokens_total,
				tokens_input = excluded.tokens_input,
				tokens_output = excluded.tokens_output,
				primary_model = excluded.primary_model,
				is_subagent = excluded.is_subagent,
				parent_id = excluded.parent_id
		`,
			rec.ID, rec.FilePath, rec.Filename, rec.Project, rec.Cwd,
			rec.MessageCount, rec.FileSize, rec.LastModified, rec.Created,
			rec.IndexedAt, rec.TokensTotal, rec.TokensInput, rec.TokensOutput,
			rec.PrimaryModel, rec.IsSubagent, rec.ParentID,
		)
		if err != nil {
			return fmt.Errorf("upserting session %s: %w", rec.ID, err)
		}

		if _, err := tx.Exec(`DELETE FROM tool_usage WHERE session_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clearing tool usage for %s: %w", rec.ID, err)
		}
		for name, count := range rec.ToolCounts {
			if _, err := tx.Exec(
				`INSERT INTO tool_usage (session_id, tool_name, call_count) VALUES (?, ?, ?)`,
				rec.ID, name, count,
			); err != nil {
				return fmt.Errorf("inserting tool usage %s/%s: %w", rec.ID, name, err)
			}
		}

		if err := deleteFTSRow(tx, rec.ID); err != nil {
			return err
		}
		if strings.TrimSpace(searchableText) != "" {
			if _, err := tx.Exec(
				`INSERT INTO sessions_fts (session_id, project, content) VALUES (?, ?, ?)`,
				rec.ID, rec.Project, searchableText,
			); err != nil {
				return fmt.Errorf("inserting fts row for %s: %w", rec.ID, err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO file_tracking (file_path, mtime, size, indexed_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(file_path) DO UPDATE SET
				mtime = excluded.mtime, size = excluded.size, indexed_at = excluded.indexed_at
		`, rec.FilePath, rec.LastModified, rec.FileSize, rec.IndexedAt); err != nil {
			return fmt.Errorf("upserting file tracking for %s: %w", rec.FilePath, err)
		}
		return nil
	})
}

func deleteFTSRow(tx *sql.Tx, sessionID string) error {
	if _, err := tx.Exec(`DELETE FROM sessions_fts WHERE session_id = ?`, sessionID); err != nil {
		if isNoSuchModule(err) {
			return nil
		}
		return fmt.Errorf("clearing fts row for %s: %w", sessionID, err)
	}
	return nil
}

// RemoveSession deletes the session row, its tool-usage rows, and
// its FTS row. File tracking is untouched.
func (st *Store) RemoveSession(id string) error {
	return st.Update(func(tx *sql.Tx) error {
		return removeSessionTx(tx, id)
	})
}

func removeSessionTx(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM tool_usage WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting tool usage for %s: %w", id, err)
	}
	if err := deleteFTSRow(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// RemoveFile reconciles path's absence from the source tree: any
// session referring to path's session as parent has parent_id
// cleared, the session itself is removed, and its file-tracking row
// is dropped. A no-op (beyond clearing the tracking row) if no
// session was ever indexed for path.
func (st *Store) RemoveFile(path string) error {
	return st.Update(func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRow(`SELECT id FROM sessions WHERE file_path = ?`, path).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			// nothing indexed for this path; still clear tracking below
		case err != nil:
			return fmt.Errorf("looking up session for %s: %w", path, err)
		default:
			if _, err := tx.Exec(
				`UPDATE sessions SET parent_id = NULL WHERE parent_id = ?`, id,
			); err != nil {
				return fmt.Errorf("clearing parent references to %s: %w", id, err)
			}
			if err := removeSessionTx(tx, id); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(`DELETE FROM file_tracking WHERE file_path = ?`, path); err != nil {
			return fmt.Errorf("clearing file tracking for %s: %w", path, err)
		}
		return nil
	})
}

func scanSession(sc interface {
	Scan(...any) error
}) (Session, error) {
	var s Session
	err := sc.Scan(
		&s.ID, &s.FilePath, &s.Filename, &s.Project, &s.Cwd, &s.MessageCount,
		&s.FileSize, &s.LastModified, &s.Created, &s.IndexedAt,
		&s.TokensTotal, &s.TokensInput, &s.TokensOutput,
		&s.PrimaryModel, &s.IsSubagent, &s.ParentID,
	)
	return s, err
}

const sessionColumns = `id, file_path, filename, project, cwd, message_count,
	file_size, last_modified, created, indexed_at,
	tokens_total, tokens_input, tokens_output,
	primary_model, is_subagent, parent_id`

// ListSessions returns a paged, filtered, sorted slice of sessions.
func (st *Store) ListSessions(ctx context.Context, f ListFilter) ([]Session, error) {
	col, order := normalizeSort(f.SortBy, f.Order)
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var clauses []string
	var args []any
	if !f.IncludeSubagents {
		clauses = append(clauses, "(is_subagent = 0 OR is_subagent IS NULL)")
	}
	if f.Project != "" {
		clauses = append(clauses, "project = ?")
		args = append(args, f.Project)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	query := fmt.Sprintf(
		`SELECT %s FROM sessions %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		sessionColumns, where, col, order,
	)
	args = append(args, limit, f.Offset)

	rows, err := st.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSession fetches one session by id, or nil if absent.
func (st *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := st.reader.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM sessions WHERE id = ?`, sessionColumns), id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return &s, nil
}

// CountSessions returns the number of sessions, optionally scoped
// to a project.
func (st *Store) CountSessions(ctx context.Context, project string) (int, error) {
	var count int
	var err error
	if project == "" {
		err = st.reader.QueryRowContext(ctx, `SELECT count(*) FROM sessions`).Scan(&count)
	} else {
		err = st.reader.QueryRowContext(ctx,
			`SELECT count(*) FROM sessions WHERE project = ?`, project).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}

// ListProjects returns sorted, distinct, non-null project names.
func (st *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := st.reader.QueryContext(ctx,
		`SELECT DISTINCT project FROM sessions WHERE project IS NOT NULL ORDER BY project ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// IndexedPaths returns the set of file paths currently tracked.
func (st *Store) IndexedPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := st.reader.QueryContext(ctx, `SELECT file_path FROM file_tracking`)
	if err != nil {
		return nil, fmt.Errorf("listing indexed paths: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning indexed path: %w", err)
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}
