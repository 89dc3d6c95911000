package parser

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractText pulls the searchable text out of a message.content
// value. content can be a bare string, a single content block
// object, or an array of blocks. Only "text" blocks contribute;
// tool_result content is deliberately excluded (see spec §9 — the
// core FTS index stays restricted to user-visible text).
//
// It also reports whether any tool_use blocks were present and,
// if so, the tool names encountered, so the caller can tally tool
// usage without a second pass over the content.
func extractText(content gjson.Result) (text string, toolNames []string) {
	switch {
	case content.Type == gjson.String:
		return content.Str, nil
	case content.IsArray():
		var parts []string
		content.ForEach(func(_, block gjson.Result) bool {
			kind, name := classifyBlock(block)
			switch kind {
			case BlockText:
				if t := block.Get("text").Str; t != "" {
					parts = append(parts, t)
				}
			case BlockToolUse:
				if name != "" {
					toolNames = append(toolNames, name)
				}
			}
			return true
		})
		return strings.Join(parts, "\n"), toolNames
	case content.IsObject():
		kind, name := classifyBlock(content)
		switch kind {
		case BlockText:
			return content.Get("text").Str, nil
		case BlockToolUse:
			if name != "" {
				return "", []string{name}
			}
		}
		return "", nil
	default:
		return "", nil
	}
}

// classifyBlock tags a single content block by its "type" field.
// Unknown block shapes classify as BlockOther and are otherwise
// ignored, matching the tagged-variant contract in spec §9.
func classifyBlock(block gjson.Result) (BlockKind, string) {
	switch block.Get("type").Str {
	case "text":
		return BlockText, ""
	case "tool_use":
		return BlockToolUse, block.Get("name").Str
	case "tool_result":
		return BlockToolResult, ""
	default:
		return BlockOther, ""
	}
}

// truncateMessage caps a single message's contribution to the
// searchable text buffer.
func truncateMessage(s string) string {
	if len(s) <= maxMessageChars {
		return s
	}
	return s[:maxMessageChars]
}
