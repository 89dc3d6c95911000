package indexer

import (
	"path/filepath"
	"strings"
)

// unknownProject is used when neither a parsed cwd nor a usable
// encoded folder segment is available.
const unknownProject = "Unknown"

// deriveProject picks a session's project name: the basename of its
// parsed cwd when known, otherwise the first path segment under
// projectsRoot with a single leading dash stripped (the lossy
// slash-to-dash folder encoding).
func deriveProject(projectsRoot, path string, cwd *string) string {
	if cwd != nil && strings.TrimSpace(*cwd) != "" {
		base := filepath.Base(*cwd)
		if base != "" && base != "." && base != string(filepath.Separator) {
			return base
		}
	}

	rel, err := filepath.Rel(projectsRoot, path)
	if err != nil {
		return unknownProject
	}
	rel = filepath.ToSlash(rel)
	parts := strings.SplitN(rel, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return unknownProject
	}
	seg := strings.TrimPrefix(parts[0], "-")
	if seg == "" {
		return unknownProject
	}
	return seg
}
