package store

import (
	"context"
	"fmt"
)

const snippetTokens = 20

// SearchRow is one full-text match, joined back to its session.
type SearchRow struct {
	Session Session
	Rank    float64
	Snippet string
}

// SearchSessions runs a sanitized FTS query against sessions_fts,
// joined to sessions, ordered by BM25 rank ascending (lower is more
// relevant). Callers pass the raw, unsanitized query; SearchSessions
// sanitizes it before execution. project, when non-empty, narrows to
// one project's sessions.
func (st *Store) SearchSessions(
	ctx context.Context, rawQuery, project string, limit, offset int, includeSubagents bool,
) ([]SearchRow, error) {
	if limit <= 0 {
		limit = 50
	}
	q := sanitizeFTSQuery(rawQuery)

	// A sanitized-to-empty query means "match everything". FTS5 has
	// no bare wildcard token (a lone "*" is a syntax error, and its
	// aux functions snippet()/rank are only valid alongside a MATCH
	// constraint), so this case skips sessions_fts entirely and scans
	// sessions directly, ordered by recency instead of BM25.
	if q == matchAllSentinel {
		return st.listAllAsSearchRows(ctx, project, limit, offset, includeSubagents)
	}

	clauses := []string{"sessions_fts MATCH ?"}
	args := []any{q}
	if project != "" {
		clauses = append(clauses, "s.project = ?")
		args = append(args, project)
	}
	if !includeSubagents {
		clauses = append(clauses, "(s.is_subagent = 0 OR s.is_subagent IS NULL)")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(sessions_fts, 2, '{{MATCH}}', '{{/MATCH}}', '...', %d) AS snippet,
			rank
		FROM sessions_fts
		JOIN sessions s ON s.id = sessions_fts.session_id
		WHERE %s
		ORDER BY rank ASC
		LIMIT ? OFFSET ?`,
		prefixedSessionColumns("s"), snippetTokens, joinAND(clauses),
	)
	args = append(args, limit, offset)

	rows, err := st.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching sessions: %w", err)
	}
	defer rows.Close()

	var out []SearchRow
	for rows.Next() {
		var r SearchRow
		if err := rows.Scan(
			&r.Session.ID, &r.Session.FilePath, &r.Session.Filename, &r.Session.Project,
			&r.Session.Cwd, &r.Session.MessageCount, &r.Session.FileSize,
			&r.Session.LastModified, &r.Session.Created, &r.Session.IndexedAt,
			&r.Session.TokensTotal, &r.Session.TokensInput, &r.Session.TokensOutput,
			&r.Session.PrimaryModel, &r.Session.IsSubagent, &r.Session.ParentID,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// listAllAsSearchRows serves the match-all case directly against
// sessions, with no snippet and a zero rank, ordered by recency.
func (st *Store) listAllAsSearchRows(
	ctx context.Context, project string, limit, offset int, includeSubagents bool,
) ([]SearchRow, error) {
	clauses := []string{}
	args := []any{}
	if project != "" {
		clauses = append(clauses, "project = ?")
		args = append(args, project)
	}
	if !includeSubagents {
		clauses = append(clauses, "(is_subagent = 0 OR is_subagent IS NULL)")
	}
	where := "1 = 1"
	if len(clauses) > 0 {
		where = joinAND(clauses)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY last_modified DESC
		LIMIT ? OFFSET ?`,
		sessionColumns, where,
	)
	args = append(args, limit, offset)

	rows, err := st.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SearchRow
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, SearchRow{Session: sess})
	}
	return out, rows.Err()
}

func prefixedSessionColumns(alias string) string {
	cols := []string{
		"id", "file_path", "filename", "project", "cwd", "message_count",
		"file_size", "last_modified", "created", "indexed_at",
		"tokens_total", "tokens_input", "tokens_output",
		"primary_model", "is_subagent", "parent_id",
	}
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

func joinAND(clauses []string) string {
	out := ""
	for i, c := range clauses {
		if i > 0 {
			out += " AND "
		}
		out += c
	}
	return out
}
