package store

import (
	"regexp"
	"strings"
)

var (
	ftsOperatorChars = strings.NewReplacer(
		`"`, " ", ":", " ", "(", " ", ")", " ", "^", " ", "*", " ", "-", " ", "+", " ",
	)
	ftsBooleanWord = regexp.MustCompile(`(?i)^(AND|OR|NOT|NEAR)$`)
	ftsWhitespace  = regexp.MustCompile(`\s+`)
)

// matchAllSentinel marks a query that sanitized to nothing. It is
// never handed to FTS5's MATCH operator, since a bare "*" is not a
// valid FTS5 match-all token (the prefix-query grammar requires a
// leading term, e.g. "abc*"); callers must special-case it and run
// an unranked scan instead.
const matchAllSentinel = "*"

// sanitizeFTSQuery strips FTS5 operator syntax from free-text input
// so a search box never accidentally issues a structured query. A
// query that sanitizes to nothing becomes matchAllSentinel.
func sanitizeFTSQuery(raw string) string {
	cleaned := ftsOperatorChars.Replace(raw)

	fields := strings.Fields(cleaned)
	kept := fields[:0]
	for _, f := range fields {
		if ftsBooleanWord.MatchString(f) {
			continue
		}
		kept = append(kept, f)
	}
	cleaned = ftsWhitespace.ReplaceAllString(strings.Join(kept, " "), " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return matchAllSentinel
	}
	return cleaned
}
