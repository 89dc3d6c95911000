package indexer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

// IndexSingleFile re-indexes exactly one file using the same
// parse-and-upsert pipeline as a full Run, for use by an external
// watcher collaborator reacting to individual filesystem events. It
// reports whether the file was (re)indexed.
func IndexSingleFile(ctx context.Context, st *store.Store, claudeHome, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	projectsRoot := filepath.Join(claudeHome, "projects")
	indexed, err := indexOneFile(st, projectsRoot, path)
	if err != nil {
		return false, fmt.Errorf("indexing %s: %w", path, err)
	}
	return indexed, nil
}
