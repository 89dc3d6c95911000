package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveProjectNames_ConvergesOnShortestCwd(t *testing.T) {
	st := openTestStore(t)
	base := "/root/.claude/projects/-Users-alice-work-proj"

	require.NoError(t, st.UpsertSession(Session{
		ID: "root", FilePath: base + "/root.jsonl", Filename: "root.jsonl",
		Project: "-Users-alice-work-proj", Cwd: strp("/Users/alice/work/proj"),
	}, ""))
	require.NoError(t, st.UpsertSession(Session{
		ID: "nested", FilePath: base + "/nested.jsonl", Filename: "nested.jsonl",
		Project: "sub", Cwd: strp("/Users/alice/work/proj/sub"),
	}, ""))

	result, err := st.ResolveProjectNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.GroupsResolved)
	require.Equal(t, 2, result.SessionsUpdated) // both "root" and "nested" disagreed with "proj"

	root, err := st.GetSession(context.Background(), "root")
	require.NoError(t, err)
	nested, err := st.GetSession(context.Background(), "nested")
	require.NoError(t, err)
	require.Equal(t, "proj", root.Project)
	require.Equal(t, "proj", nested.Project)
}

func TestResolveProjectNames_SkipsGroupWithNoCwd(t *testing.T) {
	st := openTestStore(t)
	base := "/root/.claude/projects/-encoded-only"
	require.NoError(t, st.UpsertSession(Session{
		ID: "s1", FilePath: base + "/s1.jsonl", Filename: "s1.jsonl", Project: "-encoded-only",
	}, ""))

	result, err := st.ResolveProjectNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.GroupsResolved)

	got, err := st.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "-encoded-only", got.Project)
}

func TestResolveProjectNames_NoOpWhenAlreadyCanonical(t *testing.T) {
	st := openTestStore(t)
	base := "/root/.claude/projects/-Users-alice-proj"
	require.NoError(t, st.UpsertSession(Session{
		ID: "s1", FilePath: base + "/s1.jsonl", Filename: "s1.jsonl",
		Project: "proj", Cwd: strp("/Users/alice/proj"),
	}, ""))

	result, err := st.ResolveProjectNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.SessionsUpdated)
}
