// Package watch is a thin, optional fsnotify-based demonstration of
// how an external collaborator can drive single-file re-indexing
// instead of waiting for a full periodic pass. It is not required
// by any core operation; the engine works the same without it.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/indexer"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
)

// Watcher watches a claude_home/projects tree and incrementally
// re-indexes or removes individual .jsonl files as they change,
// debouncing bursts of events into single actions per path.
type Watcher struct {
	st         *store.Store
	claudeHome string
	debounce   time.Duration
	fsw        *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	started bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher over claudeHome/projects. Callers must
// invoke Start to begin processing events, and Stop to shut down
// cleanly.
func New(st *store.Store, claudeHome string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		st:         st,
		claudeHome: claudeHome,
		debounce:   debounce,
		fsw:        fsw,
		pending:    make(map[string]time.Time),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// WatchRecursive adds every directory under claude_home/projects to
// the watch list, including subagent directories created later.
func (w *Watcher) WatchRecursive() (watched, unwatched int, err error) {
	root := filepath.Join(w.claudeHome, "projects")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			unwatched++
		} else {
			watched++
		}
		return nil
	})
	return watched, unwatched, err
}

// Start begins processing filesystem events in a background
// goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.loop()
}

// Stop halts event processing and closes the underlying watch
// handle. It is safe to call whether or not Start was called.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.done
		}
		w.fsw.Close()
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		w.watchIfDir(event.Name)
	}
	if !strings.HasSuffix(event.Name, ".jsonl") {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) watchIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = w.fsw.Add(path)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.apply(path)
	}
}

func (w *Watcher) apply(path string) {
	ctx := context.Background()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := w.st.RemoveFile(path); err != nil {
			log.Printf("watch: removing %s: %v", path, err)
		}
		return
	}
	if _, err := indexer.IndexSingleFile(ctx, w.st, w.claudeHome, path); err != nil {
		log.Printf("watch: indexing %s: %v", path, err)
	}
}
