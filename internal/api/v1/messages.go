package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/domain"
)

type ListAgentMessagesInput struct {
	AgentID uuid.UUID `path:"agent_id" doc:"Agent ID"`
	Limit   int       `query:"limit" default:"100" minimum:"1" maximum:"500" doc:"Page size"`
	Offset  int       `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

type ListAgentMessagesOutput struct {
	Body []*domain.Message
}

type ListTicketMessagesInput struct {
	TicketID uuid.UUID `path:"ticket_id" doc:"Ticket ID"`
	Limit    int       `query:"limit" default:"100" minimum:"1" maximum:"500" doc:"Page size"`
	Offset   int       `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

type ListTicketMessagesOutput struct {
	Body []*domain.Message
}

func RegisterMessageRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-agent-messages",
		Method:      http.MethodGet,
		Path:        "/agents/{agent_id}/messages",
		Summary:     "List an agent's DM inbox",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *ListAgentMessagesInput) (*ListAgentMessagesOutput, error) {
		msgs, err := store.Messages().ListByAgent(ctx, input.AgentID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list messages", err)
		}

		return &ListAgentMessagesOutput{Body: msgs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-ticket-messages",
		Method:      http.MethodGet,
		Path:        "/tickets/{ticket_id}/messages",
		Summary:     "List messages exchanged on a ticket",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *ListTicketMessagesInput) (*ListTicketMessagesOutput, error) {
		msgs, err := store.Messages().ListByTicket(ctx, input.TicketID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list messages", err)
		}

		return &ListTicketMessagesOutput{Body: msgs}, nil
	})
}
