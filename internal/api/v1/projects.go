package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/domain"
)

type CreateProjectInput struct {
	Body struct {
		Name          string `json:"name" minLength:"1" maxLength:"200" doc:"Project name"`
		RepoRoot      string `json:"repo_root" minLength:"1" doc:"Local checkout path"`
		RemoteURL     string `json:"remote_url,omitempty" doc:"Origin remote URL"`
		Provider      string `json:"provider,omitempty" doc:"Source-control host"`
		DefaultBranch string `json:"default_branch,omitempty" doc:"Base branch, default main"`
		Stack         string `json:"stack,omitempty" doc:"Tech stack summary for prompts"`
		Context       string `json:"context,omitempty" doc:"Project notes injected into prompts"`
	}
}

type CreateProjectOutput struct {
	Body *domain.Project
}

type ListProjectsOutput struct {
	Body []*domain.Project
}

type GetProjectInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

type GetProjectOutput struct {
	Body *domain.Project
}

type UpdateProjectInput struct {
	ID   uuid.UUID `path:"id" doc:"Project ID"`
	Body struct {
		Name    string `json:"name,omitempty" maxLength:"200" doc:"Project name"`
		Stack   string `json:"stack,omitempty" doc:"Tech stack summary"`
		Context string `json:"context,omitempty" doc:"Project notes injected into prompts"`
	}
}

type UpdateProjectOutput struct {
	Body *domain.Project
}

type ListProjectReposInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

type ListProjectReposOutput struct {
	Body []*domain.ProjectRepo
}

type DeleteProjectInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

func RegisterProjectRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-project",
		Method:      http.MethodPost,
		Path:        "/projects",
		Summary:     "Create a new project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *CreateProjectInput) (*CreateProjectOutput, error) {
		p, err := domain.NewProject(
			input.Body.Name, input.Body.RepoRoot,
			input.Body.RemoteURL, input.Body.Provider, input.Body.DefaultBranch,
		)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		p.Stack = input.Body.Stack
		p.Context = input.Body.Context

		if err := store.Projects().Create(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to create project", err)
		}

		return &CreateProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, _ *struct{}) (*ListProjectsOutput, error) {
		projects, err := store.Projects().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list projects", err)
		}

		return &ListProjectsOutput{Body: projects}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get a project by ID",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *GetProjectInput) (*GetProjectOutput, error) {
		p, err := store.Projects().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		return &GetProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{id}",
		Summary:     "Update a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *UpdateProjectInput) (*UpdateProjectOutput, error) {
		existing, err := store.Projects().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		if input.Body.Name != "" {
			existing.Name = input.Body.Name
		}
		if input.Body.Stack != "" {
			existing.Stack = input.Body.Stack
		}
		if input.Body.Context != "" {
			existing.Context = input.Body.Context
		}

		err = store.Projects().Update(ctx, existing)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update project", err)
		}

		return &UpdateProjectOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-project-repos",
		Method:      http.MethodGet,
		Path:        "/projects/{id}/repos",
		Summary:     "List additional repositories linked to a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *ListProjectReposInput) (*ListProjectReposOutput, error) {
		repos, err := store.ProjectRepos().ListByProject(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list project repos", err)
		}

		return &ListProjectReposOutput{Body: repos}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}",
		Summary:     "Delete a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *DeleteProjectInput) (*struct{}, error) {
		if err := store.Projects().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete project", err)
		}

		return nil, nil
	})
}
