package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExtractText_String(t *testing.T) {
	text, tools := extractText(gjson.Parse(`"hello"`))
	require.Equal(t, "hello", text)
	require.Empty(t, tools)
}

func TestExtractText_ArrayOfBlocks(t *testing.T) {
	raw := `[{"type":"text","text":"a"},{"type":"text","text":"b"},{"type":"tool_use","name":"Read"}]`
	text, tools := extractText(gjson.Parse(raw))
	require.Equal(t, "a\nb", text)
	require.Equal(t, []string{"Read"}, tools)
}

func TestExtractText_ToolResultIgnored(t *testing.T) {
	raw := `[{"type":"tool_result","tool_use_id":"x","content":"secret output"}]`
	text, _ := extractText(gjson.Parse(raw))
	require.Empty(t, text)
}

func TestExtractText_SingleObjectBlock(t *testing.T) {
	text, _ := extractText(gjson.Parse(`{"type":"text","text":"solo"}`))
	require.Equal(t, "solo", text)
}

func TestExtractText_UnknownShape(t *testing.T) {
	text, tools := extractText(gjson.Parse(`42`))
	require.Empty(t, text)
	require.Empty(t, tools)
}

func TestTruncateMessage(t *testing.T) {
	s := make([]byte, maxMessageChars+10)
	for i := range s {
		s[i] = 'a'
	}
	require.Len(t, truncateMessage(string(s)), maxMessageChars)
}
