package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/canvas"
	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/github"
	"github.com/poietai/poietai/internal/gitutil"
	"github.com/poietai/poietai/internal/secrets"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Agents() domain.AgentRepository
	Tickets() domain.TicketRepository
	Projects() domain.ProjectRepository
	ProjectRepos() domain.ProjectRepoRepository
	Messages() domain.MessageRepository
	Secrets() secrets.SecretRepository
}

// FleetOrchestrator abstracts agent lifecycle operations for handler testing.
// *fleet.Orchestrator satisfies this interface.
type FleetOrchestrator interface {
	StartTicket(ctx context.Context, agentID, ticketID uuid.UUID) (*domain.Agent, error)
	Answer(ctx context.Context, agentID uuid.UUID, reply string) error
	Cancel(ctx context.Context, agentID uuid.UUID) error
	Canvas(agentID uuid.UUID) *canvas.Canvas
	Roster(ctx context.Context) ([]*domain.Agent, error)
}

// TokenVerifier checks a source-control token. github.VerifyToken in
// production, a stub in tests.
type TokenVerifier func(ctx context.Context, token string) (*github.TokenInfo, error)

// FolderScanner inspects a local folder for git repositories.
// gitutil.ScanFolder in production, a stub in tests.
type FolderScanner func(path string) gitutil.ScanResult
