package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// encodedFolder returns the path segment immediately under a
// "projects" root directory, the lossy slash-to-dash encoding of a
// cwd that names each project folder on disk.
func encodedFolder(filePath string) string {
	marker := string(filepath.Separator) + "projects" + string(filepath.Separator)
	idx := strings.Index(filePath, marker)
	if idx < 0 {
		return ""
	}
	rest := filePath[idx+len(marker):]
	if i := strings.IndexRune(rest, filepath.Separator); i >= 0 {
		return rest[:i]
	}
	return rest
}

// ResolveProjectNames canonicalizes the project name of every
// session within each encoded project folder, choosing the basename
// of the shortest recorded cwd in the group as the canonical name.
// The whole pass runs in one transaction.
func (st *Store) ResolveProjectNames(ctx context.Context) (ResolveResult, error) {
	var result ResolveResult
	err := st.Update(func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, file_path, project, cwd FROM sessions`)
		if err != nil {
			return fmt.Errorf("loading sessions for resolution: %w", err)
		}
		type row struct {
			id, path, project string
			cwd               *string
		}
		var all []row
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.id, &r.path, &r.project, &r.cwd); err != nil {
				rows.Close()
				return fmt.Errorf("scanning session for resolution: %w", err)
			}
			all = append(all, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		groups := make(map[string][]row)
		for _, r := range all {
			folder := encodedFolder(r.path)
			groups[folder] = append(groups[folder], r)
		}

		for _, members := range groups {
			var cwds []string
			for _, m := range members {
				if m.cwd != nil && *m.cwd != "" {
					cwds = append(cwds, *m.cwd)
				}
			}
			if len(cwds) == 0 {
				continue
			}
			sort.Slice(cwds, func(i, j int) bool { return len(cwds[i]) < len(cwds[j]) })
			canonical := filepath.Base(cwds[0])
			if canonical == "" || canonical == "." || canonical == string(filepath.Separator) {
				continue
			}

			groupChanged := false
			for _, m := range members {
				if m.project == canonical {
					continue
				}
				if _, err := tx.Exec(
					`UPDATE sessions SET project = ? WHERE id = ?`, canonical, m.id,
				); err != nil {
					return fmt.Errorf("updating project for %s: %w", m.id, err)
				}
				if _, err := tx.Exec(
					`UPDATE sessions_fts SET project = ? WHERE session_id = ?`, canonical, m.id,
				); err != nil && !isNoSuchModule(err) {
					return fmt.Errorf("updating fts project for %s: %w", m.id, err)
				}
				result.SessionsUpdated++
				groupChanged = true
			}
			if groupChanged {
				result.GroupsResolved++
			}
		}
		return nil
	})
	return result, err
}
