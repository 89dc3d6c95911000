package indexer

import (
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
)

// discoverSessionFiles walks projectsRoot recursively, collecting
// every .jsonl file regardless of nesting depth (top-level sessions
// and <parent>/subagents/<agent>.jsonl alike). Per-entry permission
// and race-condition errors are logged and skipped; they never abort
// the walk.
func discoverSessionFiles(projectsRoot string) []string {
	var files []string
	err := filepath.WalkDir(projectsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("indexer: skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("indexer: walking %s: %v", projectsRoot, err)
	}
	sort.Strings(files)
	return files
}
