package canvas

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType discriminates the variants of the agent runner's stream-json
// output. One JSON object per line, each with a "type" field.
type EventType string

const (
	EventThinking   EventType = "thinking"
	EventText       EventType = "text"
	EventToolUse    EventType = "tool_use"
	EventToolResult EventType = "tool_result"
	EventResult     EventType = "result"
)

// AgentEvent is one event from an agent's output stream. The populated
// fields depend on Type:
//
//	thinking    -> Thinking
//	text        -> Text
//	tool_use    -> ToolUseID, ToolName, ToolInput
//	tool_result -> ToolUseID, Content, IsError
//	result      -> Result, SessionID
//
// Events are immutable once parsed; ordering within one (agent, ticket)
// stream is significant.
type AgentEvent struct {
	Type      EventType       `json:"type"`
	Thinking  string          `json:"thinking,omitempty"`
	Text      string          `json:"text,omitempty"`
	ToolUseID string          `json:"id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Result    string          `json:"result,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

// ParseEvent parses a single stream-json line into an AgentEvent.
// Returns false (not an error) for malformed lines and for event types we
// don't recognize; the stream carries bookkeeping lines we can safely skip.
func ParseEvent(line string) (AgentEvent, bool) {
	var ev AgentEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return AgentEvent{}, false
	}

	switch ev.Type {
	case EventThinking, EventText, EventToolUse, EventToolResult, EventResult:
		return ev, true
	default:
		return AgentEvent{}, false
	}
}

// Envelope tags an AgentEvent with its origin. NodeID is assigned by the
// runner as "<agent>-<ticket>-<seq>" and is stable for the whole stream.
type Envelope struct {
	NodeID   string     `json:"node_id"`
	AgentID  uuid.UUID  `json:"agent_id"`
	TicketID uuid.UUID  `json:"ticket_id"`
	Event    AgentEvent `json:"event"`
}

// ResultPayload is emitted once when an agent run completes, regardless of
// exit status. SessionID is empty when the stream carried no result event.
type ResultPayload struct {
	AgentID   uuid.UUID `json:"agent_id"`
	TicketID  uuid.UUID `json:"ticket_id"`
	SessionID string    `json:"session_id,omitempty"`
}
