package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	RepoRoot      string    `json:"repo_root"` // local checkout the agents work in
	RemoteURL     string    `json:"remote_url,omitempty"`
	Provider      string    `json:"provider,omitempty"` // "github", "gitlab", ...
	DefaultBranch string    `json:"default_branch"`
	Stack         string    `json:"stack,omitempty"`   // e.g. "Go 1.25, PostgreSQL, pgx"
	Context       string    `json:"context,omitempty"` // CLAUDE.md-style project notes for prompts
	CreatedAt     time.Time `json:"created_at"`
}

// NewProject creates a Project with validated required fields and defaults.
func NewProject(name, repoRoot, remoteURL, provider, branch string) (*Project, error) {
	if name == "" {
		return nil, errors.New("project: name is required")
	}
	if repoRoot == "" {
		return nil, errors.New("project: repo root is required")
	}
	if branch == "" {
		branch = "main"
	}
	return &Project{
		ID:            uuid.New(),
		Name:          name,
		RepoRoot:      repoRoot,
		RemoteURL:     remoteURL,
		Provider:      provider,
		DefaultBranch: branch,
		CreatedAt:     time.Now(),
	}, nil
}

// ProjectRepo links an additional repository to a project. The primary repo
// remains on Project.RepoRoot; these come from multi-repo folder scans.
type ProjectRepo struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	RepoRoot  string    `json:"repo_root"`
	RemoteURL string    `json:"remote_url,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepoRepository manages additional repository links per project.
type ProjectRepoRepository interface {
	Create(ctx context.Context, r *ProjectRepo) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ProjectRepo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
