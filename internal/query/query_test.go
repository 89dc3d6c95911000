package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func strp(s string) *string { return &s }

func TestSearch_EmptyQueryReturnsEmptySlice(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(store.Session{ID: "s1", FilePath: "/a.jsonl", Filename: "a.jsonl", Project: "p"}, "hello"))

	hits, err := Search(context.Background(), st, SearchParams{Query: "   "})
	require.NoError(t, err)
	require.Empty(t, hits)
	require.NotNil(t, hits)
}

func TestSearch_EnrichesHitsWithSnippetAndRelevance(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(store.Session{ID: "s1", FilePath: "/a.jsonl", Filename: "a.jsonl", Project: "p"}, "the quick fox"))

	hits, err := Search(context.Background(), st, SearchParams{Query: "fox", Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "fox", hits[0].SearchTerm)
	require.Contains(t, hits[0].Snippet, "{{MATCH}}")
}

func TestList_DelegatesToStore(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(store.Session{ID: "s1", FilePath: "/a.jsonl", Filename: "a.jsonl", Project: "p"}, ""))
	require.NoError(t, st.UpsertSession(store.Session{ID: "s2", FilePath: "/b.jsonl", Filename: "b.jsonl", Project: "p"}, ""))

	out, err := List(context.Background(), st, ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestGroupHierarchy_ParentFollowedBySubagents(t *testing.T) {
	st := openTestStore(t)
	sessions := []store.Session{
		{ID: "p1", LastModified: 100},
		{ID: "p1_a", IsSubagent: true, ParentID: strp("p1"), LastModified: 50},
		{ID: "p1_b", IsSubagent: true, ParentID: strp("p1"), LastModified: 90},
	}

	out, err := GroupHierarchy(context.Background(), st, sessions)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "p1", out[0].ID)
	require.Equal(t, "p1_b", out[1].ID) // higher last_modified first
	require.Equal(t, "p1_a", out[2].ID)
	require.Equal(t, 2, out[0].SubagentCount)
}

func TestGroupHierarchy_FetchesMissingParentAsStub(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(store.Session{
		ID: "parent1", FilePath: "/parent1.jsonl", Filename: "parent1.jsonl", Project: "p", LastModified: 10,
	}, ""))

	sessions := []store.Session{
		{ID: "parent1_sub", IsSubagent: true, ParentID: strp("parent1"), LastModified: 5},
	}
	out, err := GroupHierarchy(context.Background(), st, sessions)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "parent1", out[0].ID)
	require.True(t, out[0].IsStub)
	require.Equal(t, "parent1_sub", out[1].ID)
}

func TestGroupHierarchy_OrphanSubagentAppendedAtEnd(t *testing.T) {
	st := openTestStore(t)
	sessions := []store.Session{
		{ID: "p1", LastModified: 100},
		{ID: "orphan_sub", IsSubagent: true, ParentID: strp("does-not-exist"), LastModified: 1},
	}
	out, err := GroupHierarchy(context.Background(), st, sessions)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "orphan_sub", out[len(out)-1].ID)
}

func TestGroupHierarchy_SubagentWithNilParentIsOrphan(t *testing.T) {
	st := openTestStore(t)
	sessions := []store.Session{
		{ID: "sub1", IsSubagent: true, ParentID: nil, LastModified: 1},
	}
	out, err := GroupHierarchy(context.Background(), st, sessions)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "sub1", out[0].ID)
}
