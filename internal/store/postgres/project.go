package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poietai/poietai/internal/domain"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects (id, name, repo_root, remote_url, provider, default_branch, stack, context, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.RepoRoot, p.RemoteURL, p.Provider,
		p.DefaultBranch, p.Stack, p.Context, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, repo_root, remote_url, provider, default_branch, stack, context, created_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(
		&p.ID, &p.Name, &p.RepoRoot, &p.RemoteURL, &p.Provider,
		&p.DefaultBranch, &p.Stack, &p.Context, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, repo_root, remote_url, provider, default_branch, stack, context, created_at
		 FROM projects
		 ORDER BY created_at
		 LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.List: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.RepoRoot, &p.RemoteURL, &p.Provider,
			&p.DefaultBranch, &p.Stack, &p.Context, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("projectRepo.List: scan: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepo.List: rows: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET name = $1, repo_root = $2, remote_url = $3, provider = $4,
		        default_branch = $5, stack = $6, context = $7
		 WHERE id = $8`,
		p.Name, p.RepoRoot, p.RemoteURL, p.Provider,
		p.DefaultBranch, p.Stack, p.Context,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

type ProjectRepoRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepoRepo(pool *pgxpool.Pool) *ProjectRepoRepo {
	return &ProjectRepoRepo{pool: pool}
}

func (r *ProjectRepoRepo) Create(ctx context.Context, pr *domain.ProjectRepo) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO project_repos (id, project_id, name, repo_root, remote_url, provider, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pr.ID, pr.ProjectID, pr.Name, pr.RepoRoot, pr.RemoteURL, pr.Provider, pr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("projectRepoRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepoRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectRepo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, name, repo_root, remote_url, provider, created_at
		 FROM project_repos WHERE project_id = $1
		 ORDER BY name
		 LIMIT 1000`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepoRepo.ListByProject: %w", err)
	}
	defer rows.Close()

	var repos []*domain.ProjectRepo
	for rows.Next() {
		var pr domain.ProjectRepo
		if err := rows.Scan(
			&pr.ID, &pr.ProjectID, &pr.Name, &pr.RepoRoot, &pr.RemoteURL, &pr.Provider, &pr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("projectRepoRepo.ListByProject: scan: %w", err)
		}
		repos = append(repos, &pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepoRepo.ListByProject: rows: %w", err)
	}

	return repos, nil
}

func (r *ProjectRepoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM project_repos WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("projectRepoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepoRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
