package parser

import (
	"log"
	"path/filepath"
	"regexp"
	"strings"
)

// uuidish matches the loose UUID shape spec §4.2 expects a
// subagent's parent directory segment to have.
var uuidish = regexp.MustCompile(`^[a-f0-9-]{8,}$`)

// SubagentInfo is a pure function of a file's path: subagent-ness
// never depends on file contents, only on whether a "subagents"
// path segment appears anywhere but first.
func SubagentInfo(path string) (isSubagent bool, parentID string) {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i, seg := range segments {
		if seg == "subagents" && i > 0 {
			parent := segments[i-1]
			if !uuidish.MatchString(strings.ToLower(parent)) {
				log.Printf(
					"parser: subagent parent segment %q does not look like a UUID (path %s)",
					parent, path,
				)
			}
			return true, parent
		}
	}
	return false, ""
}

// SessionID computes the id spec §4.3 assigns a discovered file:
// "<parent-id>_<stem>" for subagents, otherwise just the stem.
func SessionID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	isSubagent, parentID := SubagentInfo(path)
	if isSubagent {
		return parentID + "_" + stem
	}
	return stem
}
