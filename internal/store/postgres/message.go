package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poietai/poietai/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, m *domain.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, agent_id, ticket_id, author, body, is_question, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.AgentID, m.TicketID, m.Author, m.Body, m.IsQuestion, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("messageRepo.Append: %w", err)
	}

	return nil
}

func (r *MessageRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agent_id, ticket_id, author, body, is_question, created_at
		 FROM messages WHERE agent_id = $1
		 ORDER BY created_at
		 LIMIT $2 OFFSET $3`,
		agentID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.ListByAgent: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, "messageRepo.ListByAgent")
}

func (r *MessageRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agent_id, ticket_id, author, body, is_question, created_at
		 FROM messages WHERE ticket_id = $1
		 ORDER BY created_at
		 LIMIT $2 OFFSET $3`,
		ticketID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.ListByTicket: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, "messageRepo.ListByTicket")
}

func scanMessages(rows pgx.Rows, caller string) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.AgentID, &m.TicketID, &m.Author, &m.Body, &m.IsQuestion, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return messages, nil
}
