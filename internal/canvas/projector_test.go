package canvas

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(nodeID string, ev AgentEvent) Envelope {
	return Envelope{
		NodeID:   nodeID,
		AgentID:  uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		TicketID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Event:    ev,
	}
}

func TestProjectNode(t *testing.T) {
	t.Run("thinking becomes thought with verbatim content", func(t *testing.T) {
		node, ok := ProjectNode(envelope("n1", AgentEvent{Type: EventThinking, Thinking: "plan the fix"}))
		require.True(t, ok)
		assert.Equal(t, NodeThought, node.Type)
		assert.Equal(t, "plan the fix", node.Content)
		assert.Equal(t, "n1", node.ID)
	})

	t.Run("text becomes agent_message with verbatim content", func(t *testing.T) {
		node, ok := ProjectNode(envelope("n2", AgentEvent{Type: EventText, Text: "Done?"}))
		require.True(t, ok)
		assert.Equal(t, NodeAgentMessage, node.Type)
		assert.Equal(t, "Done?", node.Content)
	})

	t.Run("tool_use serializes input and extracts file path", func(t *testing.T) {
		input := json.RawMessage(`{"file_path":"src/billing.go","old_string":"a","new_string":"b"}`)
		node, ok := ProjectNode(envelope("n3", AgentEvent{Type: EventToolUse, ToolName: "Edit", ToolInput: input}))
		require.True(t, ok)
		assert.Equal(t, NodeFileEdit, node.Type)
		assert.Equal(t, string(input), node.Content)
		assert.Equal(t, "src/billing.go", node.FilePath)
	})

	t.Run("tool_result produces no node", func(t *testing.T) {
		_, ok := ProjectNode(envelope("n4", AgentEvent{Type: EventToolResult, ToolUseID: "tu_1"}))
		assert.False(t, ok)
	})

	t.Run("result produces no node", func(t *testing.T) {
		_, ok := ProjectNode(envelope("n5", AgentEvent{Type: EventResult, SessionID: "s1"}))
		assert.False(t, ok)
	})
}

func TestNodeTypeForTool(t *testing.T) {
	tests := []struct {
		tool string
		want NodeType
	}{
		{tool: "Read", want: NodeFileRead},
		{tool: "Edit", want: NodeFileEdit},
		{tool: "Write", want: NodeFileWrite},
		{tool: "Bash", want: NodeBashCommand},
		{tool: "Grep", want: NodeBashCommand},
		{tool: "", want: NodeBashCommand},
		{tool: "read", want: NodeBashCommand}, // tool names are case-sensitive
	}

	for _, tc := range tests {
		t.Run("tool_"+tc.tool, func(t *testing.T) {
			assert.Equal(t, tc.want, nodeTypeForTool(tc.tool))
		})
	}
}

func TestExtractFilePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "file_path key", input: `{"file_path":"a.go"}`, want: "a.go"},
		{name: "path key", input: `{"path":"b.ts"}`, want: "b.ts"},
		{name: "file_path wins over path", input: `{"file_path":"a.go","path":"b.ts"}`, want: "a.go"},
		{name: "neither key", input: `{"command":"go test ./..."}`, want: ""},
		{name: "empty input", input: ``, want: ""},
		{name: "malformed input", input: `{{`, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractFilePath(json.RawMessage(tc.input)))
		})
	}
}
