// Package indexer drives a full or single-file indexing pass:
// discovering session files, detecting which changed, streaming
// them through the parser, and reconciling the store against
// deletions and project-identity drift.
package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/parser"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

// progressBatch is how many files are processed between progress
// callback invocations; a full pass never calls back mid-file.
const progressBatch = 50

// Stats summarizes one indexing pass.
type Stats struct {
	Scanned              int
	Indexed              int
	Skipped              int
	Removed              int
	Errors               int
	ProjectNamesResolved int
}

// ProgressFunc is invoked between file batches with (done, total).
type ProgressFunc func(done, total int)

// Run performs one full indexing pass over claudeHome/projects. It
// is cooperatively cancellable at file-boundary granularity: a
// cancelled ctx is observed between files, never mid-parse, leaving
// the store consistent for everything already applied.
func Run(
	ctx context.Context, st *store.Store, claudeHome string, progress ProgressFunc,
) (Stats, error) {
	projectsRoot := filepath.Join(claudeHome, "projects")

	discovered := discoverSessionFiles(projectsRoot)

	tracked, err := st.IndexedPaths(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("loading tracked paths: %w", err)
	}

	var stats Stats
	stats.Scanned = len(discovered)

	for i, path := range discovered {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		delete(tracked, path)

		indexed, err := indexOneFile(st, projectsRoot, path)
		switch {
		case err != nil:
			stats.Errors++
			log.Printf("indexer: %s: %v", path, err)
		case indexed:
			stats.Indexed++
		default:
			stats.Skipped++
		}

		if progress != nil && (i+1)%progressBatch == 0 {
			progress(i+1, len(discovered))
		}
	}
	if progress != nil && len(discovered)%progressBatch != 0 {
		progress(len(discovered), len(discovered))
	}

	for path := range tracked {
		if err := st.RemoveFile(path); err != nil {
			stats.Errors++
			log.Printf("indexer: removing %s: %v", path, err)
			continue
		}
		stats.Removed++
	}

	result, err := st.ResolveProjectNames(ctx)
	if err != nil {
		log.Printf("indexer: resolving project names: %v", err)
	} else {
		stats.ProjectNamesResolved = result.SessionsUpdated
	}

	return stats, nil
}

// indexOneFile applies Store.NeedsIndexing/parse/upsert for a single
// discovered path. It returns (true, nil) if the file was (re)indexed,
// (false, nil) if it was skipped as unchanged, or a non-nil error on
// per-file failure.
func indexOneFile(st *store.Store, projectsRoot, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	mtime := info.ModTime().UnixMilli()
	size := info.Size()

	needs, err := st.NeedsIndexing(path, mtime, size)
	if err != nil {
		return false, fmt.Errorf("checking index state: %w", err)
	}
	if !needs {
		return false, nil
	}

	rec, searchableText, err := buildRecord(projectsRoot, path, mtime, size)
	if err != nil {
		return false, err
	}
	if err := st.UpsertSession(rec, searchableText); err != nil {
		return false, fmt.Errorf("upserting: %w", err)
	}
	return true, nil
}

// buildRecord parses path and assembles the store.Session it maps
// to, along with the searchable text to index alongside it.
func buildRecord(projectsRoot, path string, mtime, size int64) (store.Session, string, error) {
	isSubagent, parentID := parser.SubagentInfo(path)
	id := parser.SessionID(path)

	res, err := parser.ParseFile(path)
	if err != nil {
		return store.Session{}, "", fmt.Errorf("parsing: %w", err)
	}

	project := deriveProject(projectsRoot, path, res.Cwd)

	rec := store.Session{
		ID:           id,
		FilePath:     path,
		Filename:     filepath.Base(path),
		Project:      project,
		Cwd:          res.Cwd,
		MessageCount: res.MessageCount,
		FileSize:     size,
		LastModified: mtime,
		Created:      mtime,
		IndexedAt:    time.Now().UnixMilli(),
		TokensTotal:  res.Tokens.Total,
		TokensInput:  res.Tokens.Input,
		TokensOutput: res.Tokens.Output,
		IsSubagent:   isSubagent,
		ToolCounts:   res.Tools.PerName,
	}
	if res.Model.Primary != "" {
		m := res.Model.Primary
		rec.PrimaryModel = &m
	}
	if isSubagent {
		p := parentID
		rec.ParentID = &p
	}
	return rec, res.SearchableText, nil
}
