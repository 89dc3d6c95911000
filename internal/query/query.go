// Package query answers ranked, paged, and hierarchy-aware reads
// against the store, on behalf of external presentation layers.
package query

import (
	"context"
	"strings"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

// ListParams narrows a plain listing.
type ListParams struct {
	Limit            int
	Offset           int
	SortBy           string
	Order            string
	Project          string
	IncludeSubagents bool
}

// SearchParams narrows a full-text search.
type SearchParams struct {
	Query            string
	Limit            int
	Offset           int
	Project          string
	IncludeSubagents bool
}

// Hit is one search result: a session enriched with its rank,
// highlighted snippet, and the query that produced it.
type Hit struct {
	store.Session
	Relevance  float64
	Snippet    string
	SearchTerm string
}

// List delegates directly to the store's paged listing.
func List(ctx context.Context, st *store.Store, p ListParams) ([]store.Session, error) {
	return st.ListSessions(ctx, store.ListFilter{
		Limit:            p.Limit,
		Offset:           p.Offset,
		SortBy:           p.SortBy,
		Order:            p.Order,
		Project:          p.Project,
		IncludeSubagents: p.IncludeSubagents,
	})
}

// Search runs a sanitized full-text query and returns each match
// enriched with relevance, snippet, and the original search term.
// An empty or whitespace-only query returns an empty result, never
// the full listing.
func Search(ctx context.Context, st *store.Store, p SearchParams) ([]Hit, error) {
	if strings.TrimSpace(p.Query) == "" {
		return []Hit{}, nil
	}

	rows, err := st.SearchSessions(ctx, p.Query, p.Project, p.Limit, p.Offset, p.IncludeSubagents)
	if err != nil {
		return fallbackList(ctx, st, p)
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, Hit{
			Session:    r.Session,
			Relevance:  r.Rank,
			Snippet:    r.Snippet,
			SearchTerm: p.Query,
		})
	}
	return hits, nil
}

// fallbackList degrades a failed FTS query into an unranked listing,
// so a corrupted or missing full-text index never surfaces as an
// error to the caller.
func fallbackList(ctx context.Context, st *store.Store, p SearchParams) ([]Hit, error) {
	sessions, err := st.ListSessions(ctx, store.ListFilter{
		Limit:            p.Limit,
		Offset:           p.Offset,
		Project:          p.Project,
		IncludeSubagents: p.IncludeSubagents,
	})
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(sessions))
	for _, s := range sessions {
		hits = append(hits, Hit{Session: s, SearchTerm: p.Query})
	}
	return hits, nil
}
