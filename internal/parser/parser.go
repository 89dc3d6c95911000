package parser

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseFile streams path once, forward-only, and returns the
// aggregates and searchable text spec §4.2 defines. Only
// unrecoverable I/O errors (open, read) are returned; every
// content-level problem is absorbed and the file still yields a
// (possibly empty) ParseResult.
func ParseFile(path string) (ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res := ParseResult{
		Model: ModelInfo{Counts: make(map[string]int)},
		Tools: ToolUsage{PerName: make(map[string]int)},
	}

	var (
		textBuf     strings.Builder
		cwd         *string
		warnings    int
		modelSeen   []string // first-seen order, for tie-breaking
		firstOfName = map[string]bool{}
	)

	lr := newLineReader(f, maxScanTokenSize)
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !gjson.Valid(line) {
			if warnings < maxWarningsPerFile {
				log.Printf("parser: skipping malformed line in %s", path)
				warnings++
			}
			continue
		}

		root := gjson.Parse(line)

		if cwd == nil {
			if v := root.Get("cwd"); v.Exists() && v.Type != gjson.Null {
				s := v.String()
				cwd = &s
			} else if v := root.Get("message.cwd"); v.Exists() && v.Type != gjson.Null {
				s := v.String()
				cwd = &s
			}
		}

		typ := root.Get("type").Str
		if !root.Get("message").Exists() ||
			(typ != "user" && typ != "assistant") {
			continue
		}
		res.MessageCount++
		message := root.Get("message")

		if model := message.Get("model").Str; model != "" {
			res.Model.Counts[model]++
			if !firstOfName[model] {
				firstOfName[model] = true
				modelSeen = append(modelSeen, model)
			}
		}

		if typ == "assistant" {
			res.Tokens.Input += int(message.Get("usage.input_tokens").Int())
			res.Tokens.Output += int(message.Get("usage.output_tokens").Int())
		}

		text, toolNames := extractText(message.Get("content"))
		if typ == "assistant" {
			for _, name := range toolNames {
				res.Tools.Total++
				res.Tools.PerName[name]++
			}
		}

		if text != "" && textBuf.Len() < maxSearchableChars {
			text = truncateMessage(text)
			if textBuf.Len() > 0 {
				textBuf.WriteByte('\n')
			}
			textBuf.WriteString(text)
		}
	}

	res.Tokens.Total = res.Tokens.Input + res.Tokens.Output
	res.Model.Primary = primaryModel(res.Model.Counts, modelSeen)
	res.Cwd = cwd

	searchable := textBuf.String()
	if len(searchable) > maxSearchableChars {
		searchable = searchable[:maxSearchableChars]
	}
	res.SearchableText = searchable

	return res, nil
}

// primaryModel picks the highest-count model, breaking ties by
// first-seen order.
func primaryModel(counts map[string]int, seenOrder []string) string {
	best := ""
	bestCount := -1
	for _, name := range seenOrder {
		c := counts[name]
		if c > bestCount {
			bestCount = c
			best = name
		}
	}
	return best
}
