package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusBacklog    TicketStatus = "backlog"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusReview     TicketStatus = "review"
	TicketStatusDone       TicketStatus = "done"
)

// ValidTransition checks if a ticket state transition is allowed.
// Allowed: backlog->in_progress, in_progress->review, review->done,
// review->in_progress (rework).
func (s TicketStatus) ValidTransition(to TicketStatus) bool {
	switch s {
	case TicketStatusBacklog:
		return to == TicketStatusInProgress
	case TicketStatusInProgress:
		return to == TicketStatusReview
	case TicketStatusReview:
		return to == TicketStatusDone || to == TicketStatusInProgress
	default:
		return false
	}
}

type Ticket struct {
	ID                 uuid.UUID    `json:"id"`
	ProjectID          uuid.UUID    `json:"project_id"`
	Number             int          `json:"number"` // per-project display number
	Slug               string       `json:"slug"`   // branch-safe, e.g. "fix-billing-nil-guard"
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	AcceptanceCriteria []string     `json:"acceptance_criteria,omitempty"`
	Status             TicketStatus `json:"status"`
	AssignedAgentID    *uuid.UUID   `json:"assigned_agent_id,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

var ErrInvalidTransition = errors.New("ticket: invalid state transition")

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Ticket, error)
	ListByStatus(ctx context.Context, projectID uuid.UUID, status TicketStatus) ([]*Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error
	Update(ctx context.Context, t *Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}
