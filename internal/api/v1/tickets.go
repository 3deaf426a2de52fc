package v1

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/domain"
)

type CreateTicketInput struct {
	Body struct {
		ProjectID          uuid.UUID `json:"project_id" doc:"Project ID"`
		Number             int       `json:"number" minimum:"1" doc:"Per-project display number"`
		Title              string    `json:"title" minLength:"1" maxLength:"500" doc:"Ticket title"`
		Description        string    `json:"description,omitempty" doc:"Ticket description"`
		AcceptanceCriteria []string  `json:"acceptance_criteria,omitempty" doc:"Acceptance criteria"`
	}
}

type CreateTicketOutput struct {
	Body *domain.Ticket
}

type ListTicketsInput struct {
	ProjectID uuid.UUID `query:"project_id" required:"true" doc:"Project ID"`
	Status    string    `query:"status" doc:"Filter by status"`
}

type ListTicketsOutput struct {
	Body []*domain.Ticket
}

type GetTicketInput struct {
	ID uuid.UUID `path:"id" doc:"Ticket ID"`
}

type GetTicketOutput struct {
	Body *domain.Ticket
}

type UpdateTicketInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		Title              string   `json:"title,omitempty" maxLength:"500" doc:"Ticket title"`
		Description        string   `json:"description,omitempty" doc:"Ticket description"`
		AcceptanceCriteria []string `json:"acceptance_criteria,omitempty" doc:"Acceptance criteria"`
	}
}

type UpdateTicketOutput struct {
	Body *domain.Ticket
}

type TransitionTicketStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		Status string `json:"status" minLength:"1" doc:"Target status"`
	}
}

type TransitionTicketStatusOutput struct {
	Body *domain.Ticket
}

type DeleteTicketInput struct {
	ID uuid.UUID `path:"id" doc:"Ticket ID"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a branch-safe slug from a ticket title.
func slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	if s == "" {
		s = "ticket"
	}
	return s
}

func RegisterTicketRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-ticket",
		Method:      http.MethodPost,
		Path:        "/tickets",
		Summary:     "Create a new ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *CreateTicketInput) (*CreateTicketOutput, error) {
		if _, err := store.Projects().GetByID(ctx, input.Body.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate project")
		}

		now := time.Now()
		t := &domain.Ticket{
			ID:                 uuid.New(),
			ProjectID:          input.Body.ProjectID,
			Number:             input.Body.Number,
			Slug:               slugify(input.Body.Title),
			Title:              input.Body.Title,
			Description:        input.Body.Description,
			AcceptanceCriteria: input.Body.AcceptanceCriteria,
			Status:             domain.TicketStatusBacklog,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if err := store.Tickets().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create ticket", err)
		}

		return &CreateTicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tickets",
		Method:      http.MethodGet,
		Path:        "/tickets",
		Summary:     "List tickets for a project",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *ListTicketsInput) (*ListTicketsOutput, error) {
		if input.Status != "" {
			status := domain.TicketStatus(input.Status)
			tickets, err := store.Tickets().ListByStatus(ctx, input.ProjectID, status)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list tickets", err)
			}
			return &ListTicketsOutput{Body: tickets}, nil
		}

		tickets, err := store.Tickets().ListByProject(ctx, input.ProjectID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tickets", err)
		}

		return &ListTicketsOutput{Body: tickets}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ticket",
		Method:      http.MethodGet,
		Path:        "/tickets/{id}",
		Summary:     "Get a ticket by ID",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *GetTicketInput) (*GetTicketOutput, error) {
		t, err := store.Tickets().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("ticket not found")
			}
			return nil, huma.Error500InternalServerError("failed to get ticket", err)
		}

		return &GetTicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-ticket",
		Method:      http.MethodPut,
		Path:        "/tickets/{id}",
		Summary:     "Update a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *UpdateTicketInput) (*UpdateTicketOutput, error) {
		existing, err := store.Tickets().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("ticket not found")
			}
			return nil, huma.Error500InternalServerError("failed to get ticket", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
			existing.Slug = slugify(input.Body.Title)
		}
		if input.Body.Description != "" {
			existing.Description = input.Body.Description
		}
		if input.Body.AcceptanceCriteria != nil {
			existing.AcceptanceCriteria = input.Body.AcceptanceCriteria
		}
		existing.UpdatedAt = time.Now()

		err = store.Tickets().Update(ctx, existing)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update ticket", err)
		}

		return &UpdateTicketOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-ticket-status",
		Method:      http.MethodPatch,
		Path:        "/tickets/{id}/status",
		Summary:     "Transition ticket status",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TransitionTicketStatusInput) (*TransitionTicketStatusOutput, error) {
		existing, err := store.Tickets().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("ticket not found")
			}
			return nil, huma.Error500InternalServerError("failed to get ticket", err)
		}

		target := domain.TicketStatus(input.Body.Status)
		switch target {
		case domain.TicketStatusBacklog, domain.TicketStatusInProgress, domain.TicketStatusReview, domain.TicketStatusDone:
			// valid
		default:
			return nil, huma.Error400BadRequest("unknown ticket status: " + input.Body.Status)
		}
		if !existing.Status.ValidTransition(target) {
			return nil, huma.Error400BadRequest("invalid status transition from " + string(existing.Status) + " to " + string(target))
		}

		err = store.Tickets().UpdateStatus(ctx, input.ID, target)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update ticket status", err)
		}

		existing.Status = target
		existing.UpdatedAt = time.Now()

		return &TransitionTicketStatusOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-ticket",
		Method:      http.MethodDelete,
		Path:        "/tickets/{id}",
		Summary:     "Delete a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *DeleteTicketInput) (*struct{}, error) {
		if err := store.Tickets().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("ticket not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete ticket", err)
		}

		return nil, nil
	})
}
