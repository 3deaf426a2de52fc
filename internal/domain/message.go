package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MessageAuthor string

const (
	MessageAuthorUser  MessageAuthor = "user"
	MessageAuthorAgent MessageAuthor = "agent"
)

// Message is one entry in the direct-message inbox between the operator and
// an agent. Agent narration (text events) and questions land here; operator
// replies are appended before being routed back to the agent.
type Message struct {
	ID         uuid.UUID     `json:"id"`
	AgentID    uuid.UUID     `json:"agent_id"`
	TicketID   *uuid.UUID    `json:"ticket_id,omitempty"`
	Author     MessageAuthor `json:"author"`
	Body       string        `json:"body"`
	IsQuestion bool          `json:"is_question,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type MessageRepository interface {
	Append(ctx context.Context, m *Message) error
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*Message, error)
	ListByTicket(ctx context.Context, ticketID uuid.UUID, limit, offset int) ([]*Message, error)
}
