package query

import (
	"context"
	"sort"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

// GroupHierarchy arranges a heterogeneous result set of parents and
// subagents so every parent is immediately followed by its
// subagents (most recent first), parents missing from the result
// set are fetched as display-only stubs, and true orphans (no
// parent, no resolvable stub) are appended at the end. The relative
// order within each parent's subagent list, and across repeated
// calls with the same input, is stable.
func GroupHierarchy(ctx context.Context, st *store.Store, sessions []store.Session) ([]store.Session, error) {
	var parents []store.Session
	var subagents []store.Session
	parentByID := make(map[string]int) // index into parents

	for _, s := range sessions {
		if s.IsSubagent {
			subagents = append(subagents, s)
			continue
		}
		parentByID[s.ID] = len(parents)
		parents = append(parents, s)
	}

	var orphans []store.Session
	childrenOf := make(map[string][]store.Session)

	for _, sub := range subagents {
		if sub.ParentID == nil {
			orphans = append(orphans, sub)
			continue
		}
		parentID := *sub.ParentID
		if _, ok := parentByID[parentID]; !ok {
			stub, err := st.GetSession(ctx, parentID)
			if err != nil {
				return nil, err
			}
			if stub == nil {
				orphans = append(orphans, sub)
				continue
			}
			stub.IsStub = true
			parentByID[parentID] = len(parents)
			parents = append(parents, *stub)
		}
		childrenOf[parentID] = append(childrenOf[parentID], sub)
	}

	for id, kids := range childrenOf {
		idx := parentByID[id]
		parents[idx].SubagentCount = len(kids)
	}

	sort.SliceStable(parents, func(i, j int) bool {
		return parents[i].LastModified > parents[j].LastModified
	})

	out := make([]store.Session, 0, len(sessions)+len(parents))
	for _, p := range parents {
		out = append(out, p)
		kids := append([]store.Session(nil), childrenOf[p.ID]...)
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].LastModified > kids[j].LastModified
		})
		out = append(out, kids...)
	}
	out = append(out, orphans...)
	return out, nil
}
