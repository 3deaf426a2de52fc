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

type TicketRepo struct {
	pool *pgxpool.Pool
}

func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tickets (id, project_id, number, slug, title, description, acceptance_criteria, status, assigned_agent_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.ProjectID, t.Number, t.Slug, t.Title, t.Description,
		t.AcceptanceCriteria, t.Status, t.AssignedAgentID,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.Create: %w", err)
	}

	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var t domain.Ticket

	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, number, slug, title, description, acceptance_criteria,
		        status, assigned_agent_id, created_at, updated_at
		 FROM tickets WHERE id = $1`,
		id,
	).Scan(
		&t.ID, &t.ProjectID, &t.Number, &t.Slug, &t.Title, &t.Description,
		&t.AcceptanceCriteria, &t.Status, &t.AssignedAgentID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ticketRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ticketRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TicketRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, number, slug, title, description, acceptance_criteria,
		        status, assigned_agent_id, created_at, updated_at
		 FROM tickets WHERE project_id = $1
		 ORDER BY number
		 LIMIT 1000`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("ticketRepo.ListByProject: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows, "ticketRepo.ListByProject")
}

func (r *TicketRepo) ListByStatus(ctx context.Context, projectID uuid.UUID, status domain.TicketStatus) ([]*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, number, slug, title, description, acceptance_criteria,
		        status, assigned_agent_id, created_at, updated_at
		 FROM tickets WHERE project_id = $1 AND status = $2
		 ORDER BY number
		 LIMIT 1000`,
		projectID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("ticketRepo.ListByStatus: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows, "ticketRepo.ListByStatus")
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) Update(ctx context.Context, t *domain.Ticket) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET slug = $1, title = $2, description = $3, acceptance_criteria = $4,
		        status = $5, assigned_agent_id = $6, updated_at = now()
		 WHERE id = $7`,
		t.Slug, t.Title, t.Description, t.AcceptanceCriteria,
		t.Status, t.AssignedAgentID,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tickets WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTickets(rows pgx.Rows, caller string) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Number, &t.Slug, &t.Title, &t.Description,
			&t.AcceptanceCriteria, &t.Status, &t.AssignedAgentID,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tickets = append(tickets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tickets, nil
}
