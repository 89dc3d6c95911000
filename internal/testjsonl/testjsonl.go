// Package testjsonl builds Claude Code JSONL fixtures for the
// store, parser, and indexer test suites.
package testjsonl

import (
	"encoding/json"
	"strings"
)

// TextBlock returns a {"type":"text","text":...} content block.
func TextBlock(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

// ToolUseBlock returns a {"type":"tool_use",...} content block.
func ToolUseBlock(name string, input map[string]any) map[string]any {
	b := map[string]any{"type": "tool_use", "id": "toolu_" + name, "name": name}
	if input != nil {
		b["input"] = input
	}
	return b
}

// ToolResultBlock returns a {"type":"tool_result",...} content block.
func ToolResultBlock(toolUseID, content string) map[string]any {
	return map[string]any{
		"type":        "tool_result",
		"tool_use_id": toolUseID,
		"content":     content,
	}
}

// UserLine builds a user message line. content may be a string or
// a []map[string]any of content blocks.
func UserLine(content any, opts ...func(map[string]any)) string {
	m := map[string]any{
		"type":    "user",
		"message": map[string]any{"content": content},
	}
	for _, o := range opts {
		o(m)
	}
	return mustMarshal(m)
}

// AssistantLine builds an assistant message line.
func AssistantLine(content any, opts ...func(map[string]any)) string {
	msg := map[string]any{"content": content}
	m := map[string]any{
		"type":    "assistant",
		"message": msg,
	}
	for _, o := range opts {
		o(m)
	}
	return mustMarshal(m)
}

// WithCwd sets the top-level cwd field.
func WithCwd(cwd string) func(map[string]any) {
	return func(m map[string]any) { m["cwd"] = cwd }
}

// WithModel sets message.model on an assistant line.
func WithModel(model string) func(map[string]any) {
	return func(m map[string]any) {
		msg := m["message"].(map[string]any)
		msg["model"] = model
	}
}

// WithUsage sets message.usage on an assistant line.
func WithUsage(input, output int) func(map[string]any) {
	return func(m map[string]any) {
		msg := m["message"].(map[string]any)
		msg["usage"] = map[string]any{
			"input_tokens":  input,
			"output_tokens": output,
		}
	}
}

// WithTimestamp sets the top-level timestamp field.
func WithTimestamp(ts string) func(map[string]any) {
	return func(m map[string]any) { m["timestamp"] = ts }
}

// SummaryLine builds a non-message summary/header line, used to
// exercise "cwd may appear after summary lines".
func SummaryLine() string {
	return mustMarshal(map[string]any{"type": "summary", "summary": "hello"})
}

// JoinJSONL joins lines with newlines and a trailing newline.
func JoinJSONL(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
