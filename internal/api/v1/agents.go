package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/fleet"
)

type CreateAgentInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"100" doc:"Agent display name"`
		Role        string `json:"role" minLength:"1" doc:"Agent role, e.g. backend-engineer"`
		Personality string `json:"personality,omitempty" doc:"Working style, e.g. pragmatic"`
	}
}

type CreateAgentOutput struct {
	Body *domain.Agent
}

type ListAgentsOutput struct {
	Body []*domain.Agent
}

type GetAgentInput struct {
	ID uuid.UUID `path:"id" doc:"Agent ID"`
}

type GetAgentOutput struct {
	Body *domain.Agent
}

type DeleteAgentInput struct {
	ID uuid.UUID `path:"id" doc:"Agent ID"`
}

type StartTicketInput struct {
	ID   uuid.UUID `path:"id" doc:"Agent ID"`
	Body struct {
		TicketID uuid.UUID `json:"ticket_id" doc:"Ticket to start"`
	}
}

type StartTicketOutput struct {
	Body *domain.Agent
}

type AnswerAgentInput struct {
	ID   uuid.UUID `path:"id" doc:"Agent ID"`
	Body struct {
		Reply string `json:"reply" minLength:"1" doc:"Operator reply"`
	}
}

type CancelAgentInput struct {
	ID uuid.UUID `path:"id" doc:"Agent ID"`
}

func RegisterAgentRoutes(api huma.API, store DataStore, orch FleetOrchestrator) {
	huma.Register(api, huma.Operation{
		OperationID: "create-agent",
		Method:      http.MethodPost,
		Path:        "/agents",
		Summary:     "Hire a new agent",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *CreateAgentInput) (*CreateAgentOutput, error) {
		agent, err := domain.NewAgent(uuid.Nil, input.Body.Name, input.Body.Role, input.Body.Personality)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Agents().Create(ctx, agent); err != nil {
			return nil, huma.Error500InternalServerError("failed to create agent", err)
		}

		return &CreateAgentOutput{Body: agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-agents",
		Method:      http.MethodGet,
		Path:        "/agents",
		Summary:     "List the agent roster",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, _ *struct{}) (*ListAgentsOutput, error) {
		agents, err := orch.Roster(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list agents", err)
		}

		return &ListAgentsOutput{Body: agents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-agent",
		Method:      http.MethodGet,
		Path:        "/agents/{id}",
		Summary:     "Get an agent by ID",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *GetAgentInput) (*GetAgentOutput, error) {
		agent, err := store.Agents().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to get agent", err)
		}

		return &GetAgentOutput{Body: agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-agent",
		Method:      http.MethodDelete,
		Path:        "/agents/{id}",
		Summary:     "Remove an agent from the roster",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *DeleteAgentInput) (*struct{}, error) {
		agent, err := store.Agents().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to get agent", err)
		}
		if agent.Status == domain.AgentStatusWorking {
			return nil, huma.Error400BadRequest("agent is working; cancel its run first")
		}

		if err := store.Agents().Delete(ctx, input.ID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete agent", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "start-ticket",
		Method:      http.MethodPost,
		Path:        "/agents/{id}/start",
		Summary:     "Point an agent at a ticket",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *StartTicketInput) (*StartTicketOutput, error) {
		agent, err := orch.StartTicket(ctx, input.ID, input.Body.TicketID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound("agent or ticket not found")
			case errors.Is(err, fleet.ErrAgentBusy):
				return nil, huma.Error409Conflict("agent is busy")
			case errors.Is(err, domain.ErrInvalidTransition):
				return nil, huma.Error400BadRequest("ticket is not startable")
			default:
				return nil, huma.Error500InternalServerError("failed to start ticket", err)
			}
		}

		return &StartTicketOutput{Body: agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "answer-agent",
		Method:      http.MethodPost,
		Path:        "/agents/{id}/answer",
		Summary:     "Reply to an agent's question",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *AnswerAgentInput) (*struct{}, error) {
		err := orch.Answer(ctx, input.ID, input.Body.Reply)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound("agent not found")
			case errors.Is(err, fleet.ErrNoActiveRun):
				return nil, huma.Error409Conflict("agent has nothing to resume")
			case errors.Is(err, fleet.ErrAgentBusy):
				return nil, huma.Error409Conflict("agent is still working")
			default:
				return nil, huma.Error500InternalServerError("failed to deliver reply", err)
			}
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-agent",
		Method:      http.MethodPost,
		Path:        "/agents/{id}/cancel",
		Summary:     "Cancel an agent's current run",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *CancelAgentInput) (*struct{}, error) {
		err := orch.Cancel(ctx, input.ID)
		if err != nil {
			switch {
			case errors.Is(err, fleet.ErrNoActiveRun):
				return nil, huma.Error409Conflict("agent has no active run")
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound("agent not found")
			default:
				return nil, huma.Error500InternalServerError("failed to cancel run", err)
			}
		}

		return nil, nil
	})
}
