package canvas

import "encoding/json"

// NodeType classifies a canvas node for rendering.
type NodeType string

const (
	NodeThought      NodeType = "thought"
	NodeAgentMessage NodeType = "agent_message"
	NodeFileRead     NodeType = "file_read"
	NodeFileEdit     NodeType = "file_edit"
	NodeFileWrite    NodeType = "file_write"
	NodeBashCommand  NodeType = "bash_command"
)

// Node is one visual element on the canvas, created from exactly one event
// and never mutated afterwards.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Content  string   `json:"content"`
	FilePath string   `json:"file_path,omitempty"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
}

// Edge links two chronologically adjacent nodes in the same stream.
type Edge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ProjectNode maps one event to its canvas node. The mapping is total:
// thinking and text always produce a node, tool_use produces a node typed by
// its tool name, and tool_result/result produce none (ok=false). Position is
// left zero; the canvas assigns it on append.
func ProjectNode(env Envelope) (Node, bool) {
	ev := env.Event

	switch ev.Type {
	case EventThinking:
		return Node{ID: env.NodeID, Type: NodeThought, Content: ev.Thinking}, true
	case EventText:
		return Node{ID: env.NodeID, Type: NodeAgentMessage, Content: ev.Text}, true
	case EventToolUse:
		return Node{
			ID:       env.NodeID,
			Type:     nodeTypeForTool(ev.ToolName),
			Content:  string(ev.ToolInput),
			FilePath: extractFilePath(ev.ToolInput),
		}, true
	default:
		return Node{}, false
	}
}

// nodeTypeForTool picks the node type for a tool_use event. Anything that is
// not a Read/Edit/Write renders as a bash command node.
func nodeTypeForTool(toolName string) NodeType {
	switch toolName {
	case "Read":
		return NodeFileRead
	case "Edit":
		return NodeFileEdit
	case "Write":
		return NodeFileWrite
	default:
		return NodeBashCommand
	}
}

// extractFilePath pulls the target file out of a tool input payload. Tools
// name it either "file_path" or "path"; absence is fine.
func extractFilePath(input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}

	var fields struct {
		FilePath string `json:"file_path"`
		Path     string `json:"path"`
	}
	if err := json.Unmarshal(input, &fields); err != nil {
		return ""
	}
	if fields.FilePath != "" {
		return fields.FilePath
	}
	return fields.Path
}
