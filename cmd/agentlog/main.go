// Command agentlog indexes and searches Claude Code JSONL
// conversation logs from the command line, wiring together the
// store, indexer, and query packages for local single-process use.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/drewburchfield/claude-code-chat-explorer/internal/config"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/indexer"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/query"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/store"
	"github.com/drewburchfield/claude-code-chat-explorer/internal/watch"
)

var version = "dev"

const watcherDebounce = 500 * time.Millisecond

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "index":
			runIndex(os.Args[2:])
			return
		case "search":
			runSearch(os.Args[2:])
			return
		case "list":
			runList(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("agentlog %s\n", version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}
	printUsage()
}

func printUsage() {
	fmt.Print(`agentlog - index and search Claude Code conversation logs

Usage:
  agentlog index [flags]        Run a full indexing pass
  agentlog search <query> [flags]  Full-text search over indexed sessions
  agentlog list [flags]         List indexed sessions
  agentlog version              Show version information
  agentlog help                 Show this help

Common flags:
  -claude-home string   Root directory above projects/ (default ~/.claude)
  -db-path string       Path to the SQLite database file

Index flags:
  -watch                 Keep running, re-indexing files as they change

Search/List flags:
  -project string        Restrict to one project
  -limit int              Max results (default 50)
  -offset int             Result offset
  -subagents              Include subagent sessions
  -sort string            Sort field (list only): last_modified, created,
                          tokens_total, message_count, file_size
  -order string           ASC or DESC (list only, default DESC)

Environment variables:
  AGENTLOG_CLAUDE_HOME    Root directory above projects/
  AGENTLOG_DB_PATH        Path to the SQLite database file
`)
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("agentlog", flag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func mustOpenStore(cfg config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database at %s: %v", cfg.DBPath, err)
	}
	return st
}

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	config.RegisterFlags(fs)
	watchFlag := fs.Bool("watch", false, "keep running, re-indexing on change")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st := mustOpenStore(cfg)
	defer st.Close()

	runFullPass(st, cfg)

	if !*watchFlag {
		return
	}

	w, err := watch.New(st, cfg.ClaudeHome, watcherDebounce)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	watched, unwatched, err := w.WatchRecursive()
	if err != nil {
		log.Printf("watch: initial scan error: %v", err)
	}
	fmt.Printf("watching %d directories (%d skipped)\n", watched, unwatched)
	w.Start()
	defer w.Stop()

	select {}
}

func runFullPass(st *store.Store, cfg config.Config) {
	start := time.Now()
	stats, err := indexer.Run(context.Background(), st, cfg.ClaudeHome, func(done, total int) {
		fmt.Printf("indexing: %d/%d\n", done, total)
	})
	if err != nil {
		log.Fatalf("indexing: %v", err)
	}
	fmt.Printf(
		"scanned=%d indexed=%d skipped=%d removed=%d errors=%d projects_resolved=%d (%s)\n",
		stats.Scanned, stats.Indexed, stats.Skipped, stats.Removed, stats.Errors,
		stats.ProjectNamesResolved, time.Since(start).Round(time.Millisecond),
	)
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	config.RegisterFlags(fs)
	project := fs.String("project", "", "restrict to one project")
	limit := fs.Int("limit", 50, "max results")
	offset := fs.Int("offset", 0, "result offset")
	subagents := fs.Bool("subagents", false, "include subagent sessions")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		log.Fatal("usage: agentlog search <query> [flags]")
	}
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st := mustOpenStore(cfg)
	defer st.Close()

	hits, err := query.Search(context.Background(), st, query.SearchParams{
		Query:            fs.Arg(0),
		Project:          *project,
		Limit:            *limit,
		Offset:           *offset,
		IncludeSubagents: *subagents,
	})
	if err != nil {
		log.Fatalf("searching: %v", err)
	}
	for _, h := range hits {
		fmt.Printf("%s\t%s\t%.4f\t%s\n", h.ID, h.Project, h.Relevance, h.Snippet)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	config.RegisterFlags(fs)
	project := fs.String("project", "", "restrict to one project")
	limit := fs.Int("limit", 50, "max results")
	offset := fs.Int("offset", 0, "result offset")
	sortBy := fs.String("sort", "last_modified", "sort field")
	order := fs.String("order", "DESC", "ASC or DESC")
	subagents := fs.Bool("subagents", false, "include subagent sessions")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st := mustOpenStore(cfg)
	defer st.Close()

	sessions, err := query.List(context.Background(), st, query.ListParams{
		Project:          *project,
		Limit:            *limit,
		Offset:           *offset,
		SortBy:           *sortBy,
		Order:            *order,
		IncludeSubagents: *subagents,
	})
	if err != nil {
		log.Fatalf("listing: %v", err)
	}
	for _, s := range sessions {
		fmt.Printf("%s\t%s\t%d msgs\t%d tokens\n", s.ID, s.Project, s.MessageCount, s.TokensTotal)
	}
}
