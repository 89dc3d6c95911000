package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFTSQuery_StripsOperatorChars(t *testing.T) {
	require.Equal(t, "foo bar", sanitizeFTSQuery(`"foo" (bar)`))
	require.Equal(t, "foo bar", sanitizeFTSQuery("foo^bar*"))
}

func TestSanitizeFTSQuery_StripsBooleanKeywords(t *testing.T) {
	require.Equal(t, "cats dogs", sanitizeFTSQuery("cats AND dogs"))
	require.Equal(t, "cats dogs", sanitizeFTSQuery("cats or NEAR dogs"))
}

func TestSanitizeFTSQuery_EmptyBecomesWildcard(t *testing.T) {
	require.Equal(t, "*", sanitizeFTSQuery("   "))
	require.Equal(t, "*", sanitizeFTSQuery("AND OR"))
	require.Equal(t, "*", sanitizeFTSQuery(`""()^*+-`))
}

func TestSearchSessions_RanksAndSnippets(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(Session{
		ID: "s1", FilePath: "/tmp/a.jsonl", Filename: "a.jsonl", Project: "proj",
	}, "the quick brown fox jumps over the lazy dog"))
	require.NoError(t, st.UpsertSession(Session{
		ID: "s2", FilePath: "/tmp/b.jsonl", Filename: "b.jsonl", Project: "proj",
	}, "no relation here at all"))

	hits, err := st.SearchSessions(context.Background(), "fox", "", 10, 0, true)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "s1", hits[0].Session.ID)
	require.Contains(t, hits[0].Snippet, "{{MATCH}}")
	require.Contains(t, hits[0].Snippet, "{{/MATCH}}")
}

func TestSearchSessions_WildcardMatchesEverything(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(Session{ID: "s1", FilePath: "/tmp/a.jsonl", Filename: "a.jsonl", Project: "proj"}, "alpha"))
	require.NoError(t, st.UpsertSession(Session{ID: "s2", FilePath: "/tmp/b.jsonl", Filename: "b.jsonl", Project: "proj"}, "beta"))

	hits, err := st.SearchSessions(context.Background(), "AND OR", "", 10, 0, true)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestSearchSessions_ExcludesSubagentsUnlessRequested(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.UpsertSession(Session{ID: "top", FilePath: "/tmp/top.jsonl", Filename: "top.jsonl", Project: "proj"}, "shared text"))
	require.NoError(t, st.UpsertSession(Session{
		ID: "top_sub", FilePath: "/tmp/top/subagents/sub.jsonl", Filename: "sub.jsonl",
		Project: "proj", IsSubagent: true, ParentID: strp("top"),
	}, "shared text"))

	hits, err := st.SearchSessions(context.Background(), "shared", "", 10, 0, false)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "top", hits[0].Session.ID)

	hits, err = st.SearchSessions(context.Background(), "shared", "", 10, 0, true)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}
