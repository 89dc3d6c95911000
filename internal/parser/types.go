// Package parser extracts structured metadata and searchable text
// from a single Claude Code JSONL session log in one forward pass.
package parser

// TokenUsage aggregates token counts across a session's assistant
// messages.
type TokenUsage struct {
	Input  int
	Output int
	Total  int
}

// ModelInfo tracks which model identifiers appeared in a session
// and which one appeared most often.
type ModelInfo struct {
	Primary string
	Counts  map[string]int
}

// ToolUsage aggregates tool_use blocks across a session.
type ToolUsage struct {
	Total   int
	PerName map[string]int
}

// ParseResult holds everything extracted from one log file.
type ParseResult struct {
	MessageCount   int
	Tokens         TokenUsage
	Model          ModelInfo
	Tools          ToolUsage
	SearchableText string
	Cwd            *string
}

// BlockKind identifies the shape of a message.content block.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
	BlockOther      BlockKind = "other"
)

const (
	// maxMessageChars bounds how much text a single message
	// contributes to the searchable text buffer.
	maxMessageChars = 2000
	// maxSearchableChars bounds the total searchable text per
	// session, keeping per-file memory use predictable.
	maxSearchableChars = 100_000
	// maxWarningsPerFile caps how many malformed-line warnings a
	// single file will produce before going quiet.
	maxWarningsPerFile = 3
)
