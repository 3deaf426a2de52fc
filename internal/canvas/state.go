package canvas

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Vertical spacing between stacked nodes, in canvas units.
const nodeSpacing = 120

// AwaitingReply is the side-channel signal surfaced when a run ends while the
// agent's last message looks like an open question. The ends-with-? check is
// a heuristic, not a contract; consumers should treat it as a hint.
type AwaitingReply struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Canvas accumulates the projected node graph for one agent, filtered to the
// active ticket. Nodes are append-only; switching the active ticket resets
// the whole graph.
type Canvas struct {
	mu           sync.Mutex
	activeTicket uuid.UUID
	nodes        []Node
	edges        []Edge
	awaiting     *AwaitingReply
}

func New(activeTicket uuid.UUID) *Canvas {
	return &Canvas{activeTicket: activeTicket}
}

// SetActiveTicket switches the ticket filter. A change clears all nodes,
// edges, and any pending awaiting-reply signal; setting the same ticket is a
// no-op.
func (c *Canvas) SetActiveTicket(ticketID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeTicket == ticketID {
		return
	}
	c.activeTicket = ticketID
	c.nodes = nil
	c.edges = nil
	c.awaiting = nil
}

// ActiveTicket returns the current ticket filter.
func (c *Canvas) ActiveTicket() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTicket
}

// Apply consumes one envelope. Events for other tickets are discarded with no
// state change. Node-producing events append exactly one node, plus one edge
// from the previous node when one exists. A result event carrying a session
// id arms the awaiting-reply signal if the most recent agent_message node
// ends with a question mark. Returns true when the graph changed.
func (c *Canvas) Apply(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if env.TicketID != c.activeTicket {
		return false
	}

	if env.Event.Type == EventResult {
		if env.Event.SessionID != "" {
			if q, ok := c.lastOpenQuestion(); ok {
				c.awaiting = &AwaitingReply{Question: q, SessionID: env.Event.SessionID}
				return true
			}
		}
		return false
	}

	node, ok := ProjectNode(env)
	if !ok {
		return false
	}

	node.Y = len(c.nodes) * nodeSpacing

	if n := len(c.nodes); n > 0 {
		prev := c.nodes[n-1]
		c.edges = append(c.edges, Edge{
			ID:   prev.ID + ">" + node.ID,
			From: prev.ID,
			To:   node.ID,
		})
	}
	c.nodes = append(c.nodes, node)

	return true
}

// lastOpenQuestion finds the most recent agent_message node whose content
// ends with a question mark. Callers hold c.mu.
func (c *Canvas) lastOpenQuestion() (string, bool) {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if c.nodes[i].Type != NodeAgentMessage {
			continue
		}
		text := strings.TrimSpace(c.nodes[i].Content)
		if strings.HasSuffix(text, "?") {
			return text, true
		}
		return "", false
	}
	return "", false
}

// Nodes returns a snapshot of the node sequence in arrival order.
func (c *Canvas) Nodes() []Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Edges returns a snapshot of the edge list.
func (c *Canvas) Edges() []Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Edge, len(c.edges))
	copy(out, c.edges)
	return out
}

// Awaiting returns the pending awaiting-reply signal, if any.
func (c *Canvas) Awaiting() *AwaitingReply {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.awaiting == nil {
		return nil
	}
	cp := *c.awaiting
	return &cp
}

// ClearAwaiting drops the awaiting-reply signal, typically after the
// operator has answered.
func (c *Canvas) ClearAwaiting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awaiting = nil
}
