package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/canvas"
)

type GetCanvasInput struct {
	AgentID uuid.UUID `path:"agent_id" doc:"Agent ID"`
}

// CanvasGraph is the snapshot the UI renders: nodes in arrival order, edges
// chaining consecutive nodes, and an optional awaiting-reply signal.
type CanvasGraph struct {
	ActiveTicketID uuid.UUID             `json:"active_ticket_id"`
	Nodes          []canvas.Node         `json:"nodes"`
	Edges          []canvas.Edge         `json:"edges"`
	Awaiting       *canvas.AwaitingReply `json:"awaiting,omitempty"`
}

type GetCanvasOutput struct {
	Body CanvasGraph
}

type SetActiveTicketInput struct {
	AgentID uuid.UUID `path:"agent_id" doc:"Agent ID"`
	Body    struct {
		TicketID uuid.UUID `json:"ticket_id" doc:"Ticket to focus the canvas on"`
	}
}

type SetActiveTicketOutput struct {
	Body CanvasGraph
}

func RegisterCanvasRoutes(api huma.API, orch FleetOrchestrator) {
	huma.Register(api, huma.Operation{
		OperationID: "get-canvas",
		Method:      http.MethodGet,
		Path:        "/agents/{agent_id}/canvas",
		Summary:     "Get the canvas graph for an agent",
		Tags:        []string{"Canvas"},
	}, func(ctx context.Context, input *GetCanvasInput) (*GetCanvasOutput, error) {
		c := orch.Canvas(input.AgentID)
		return &GetCanvasOutput{Body: CanvasGraph{
			ActiveTicketID: c.ActiveTicket(),
			Nodes:          c.Nodes(),
			Edges:          c.Edges(),
			Awaiting:       c.Awaiting(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-active-ticket",
		Method:      http.MethodPut,
		Path:        "/agents/{agent_id}/canvas/active-ticket",
		Summary:     "Switch the canvas ticket filter",
		Description: "Changing the active ticket resets the graph; setting the same ticket is a no-op.",
		Tags:        []string{"Canvas"},
	}, func(ctx context.Context, input *SetActiveTicketInput) (*SetActiveTicketOutput, error) {
		c := orch.Canvas(input.AgentID)
		c.SetActiveTicket(input.Body.TicketID)
		return &SetActiveTicketOutput{Body: CanvasGraph{
			ActiveTicketID: c.ActiveTicket(),
			Nodes:          c.Nodes(),
			Edges:          c.Edges(),
			Awaiting:       c.Awaiting(),
		}}, nil
	})
}
