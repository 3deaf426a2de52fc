package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type AgentStatus string

const (
	AgentStatusIdle           AgentStatus = "idle"
	AgentStatusWorking        AgentStatus = "working"
	AgentStatusWaitingForUser AgentStatus = "waiting_for_user"
	AgentStatusReviewing      AgentStatus = "reviewing"
	AgentStatusBlocked        AgentStatus = "blocked"
)

// Agent is a named AI worker the operator can point at tickets.
// Run bookkeeping (current ticket, runner session id, worktree, open PR)
// lives alongside identity so a full-roster snapshot is one row scan.
type Agent struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Role            string      `json:"role"`        // e.g. "backend-engineer"
	Personality     string      `json:"personality"` // e.g. "pragmatic"
	Status          AgentStatus `json:"status"`
	CurrentTicketID *uuid.UUID  `json:"current_ticket_id,omitempty"`
	SessionID       string      `json:"session_id,omitempty"` // runner session, used for --resume
	WorktreePath    string      `json:"worktree_path,omitempty"`
	PRNumber        *int        `json:"pr_number,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewAgent creates an Agent with validated required fields.
// id may be uuid.Nil, in which case one is generated.
func NewAgent(id uuid.UUID, name, role, personality string) (*Agent, error) {
	if name == "" {
		return nil, errors.New("agent: name is required")
	}
	if role == "" {
		return nil, errors.New("agent: role is required")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Agent{
		ID:          id,
		Name:        name,
		Role:        role,
		Personality: personality,
		Status:      AgentStatusIdle,
		CreatedAt:   time.Now(),
	}, nil
}

type AgentRepository interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	List(ctx context.Context) ([]*Agent, error)
	Update(ctx context.Context, a *Agent) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status AgentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
