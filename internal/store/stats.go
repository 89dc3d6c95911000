package store

import (
	"context"
	"fmt"
	"time"
)

// ToolStats returns per-tool call aggregates across all sessions,
// sorted by total call count descending.
func (st *Store) ToolStats(ctx context.Context) ([]ToolStat, error) {
	rows, err := st.reader.QueryContext(ctx, `
		SELECT tool_name, sum(call_count), count(DISTINCT session_id)
		FROM tool_usage
		GROUP BY tool_name
		ORDER BY sum(call_count) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("computing tool stats: %w", err)
	}
	defer rows.Close()

	var out []ToolStat
	for rows.Next() {
		var s ToolStat
		if err := rows.Scan(&s.Name, &s.TotalCalls, &s.DistinctSessions); err != nil {
			return nil, fmt.Errorf("scanning tool stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary aggregates totals across the whole database, including a
// trailing-24h session count measured against wall-clock time.
func (st *Store) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := st.reader.QueryRowContext(ctx, `
		SELECT
			count(*),
			coalesce(sum(message_count), 0),
			coalesce(sum(tokens_total), 0),
			coalesce(sum(file_size), 0),
			count(DISTINCT project)
		FROM sessions
	`).Scan(&s.Sessions, &s.Messages, &s.TokensTotal, &s.Bytes, &s.Projects)
	if err != nil {
		return Summary{}, fmt.Errorf("computing summary: %w", err)
	}

	cutoff := time.Now().Add(-24 * time.Hour).UnixMilli()
	if err := st.reader.QueryRowContext(ctx,
		`SELECT count(*) FROM sessions WHERE last_modified >= ?`, cutoff,
	).Scan(&s.SessionsLast24h); err != nil {
		return Summary{}, fmt.Errorf("computing recent session count: %w", err)
	}
	return s, nil
}
