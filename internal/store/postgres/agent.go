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

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

func (r *AgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agents (id, name, role, personality, status, current_ticket_id, session_id, worktree_path, pr_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Name, a.Role, a.Personality, a.Status,
		a.CurrentTicketID, a.SessionID, a.WorktreePath, a.PRNumber, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Create: %w", err)
	}

	return nil
}

func (r *AgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	var a domain.Agent

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, role, personality, status, current_ticket_id, session_id, worktree_path, pr_number, created_at
		 FROM agents WHERE id = $1`,
		id,
	).Scan(
		&a.ID, &a.Name, &a.Role, &a.Personality, &a.Status,
		&a.CurrentTicketID, &a.SessionID, &a.WorktreePath, &a.PRNumber, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", err)
	}

	return &a, nil
}

func (r *AgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, role, personality, status, current_ticket_id, session_id, worktree_path, pr_number, created_at
		 FROM agents
		 ORDER BY created_at
		 LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("agentRepo.List: %w", err)
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Role, &a.Personality, &a.Status,
			&a.CurrentTicketID, &a.SessionID, &a.WorktreePath, &a.PRNumber, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("agentRepo.List: scan: %w", err)
		}
		agents = append(agents, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agentRepo.List: rows: %w", err)
	}

	return agents, nil
}

func (r *AgentRepo) Update(ctx context.Context, a *domain.Agent) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET name = $1, role = $2, personality = $3, status = $4,
		        current_ticket_id = $5, session_id = $6, worktree_path = $7, pr_number = $8
		 WHERE id = $9`,
		a.Name, a.Role, a.Personality, a.Status,
		a.CurrentTicketID, a.SessionID, a.WorktreePath, a.PRNumber,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agentRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AgentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AgentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agentRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AgentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM agents WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
