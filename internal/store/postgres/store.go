package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/secrets"
)

type Store struct {
	pool         *pgxpool.Pool
	agents       *AgentRepo
	tickets      *TicketRepo
	projects     *ProjectRepo
	projectRepos *ProjectRepoRepo
	messages     *MessageRepo
	secrets      *SecretRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:         pool,
		agents:       NewAgentRepo(pool),
		tickets:      NewTicketRepo(pool),
		projects:     NewProjectRepo(pool),
		projectRepos: NewProjectRepoRepo(pool),
		messages:     NewMessageRepo(pool),
		secrets:      NewSecretRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Agents() domain.AgentRepository             { return s.agents }
func (s *Store) Tickets() domain.TicketRepository           { return s.tickets }
func (s *Store) Projects() domain.ProjectRepository         { return s.projects }
func (s *Store) ProjectRepos() domain.ProjectRepoRepository { return s.projectRepos }
func (s *Store) Messages() domain.MessageRepository         { return s.messages }
func (s *Store) Secrets() secrets.SecretRepository          { return s.secrets }
