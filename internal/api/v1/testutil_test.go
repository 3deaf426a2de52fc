package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/canvas"
	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/secrets"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	agents       domain.AgentRepository
	tickets      domain.TicketRepository
	projects     domain.ProjectRepository
	projectRepos domain.ProjectRepoRepository
	messages     domain.MessageRepository
	secrets      secrets.SecretRepository
}

func (m *mockDataStore) Agents() domain.AgentRepository            { return m.agents }
func (m *mockDataStore) Tickets() domain.TicketRepository          { return m.tickets }
func (m *mockDataStore) Projects() domain.ProjectRepository        { return m.projects }
func (m *mockDataStore) ProjectRepos() domain.ProjectRepoRepository { return m.projectRepos }
func (m *mockDataStore) Messages() domain.MessageRepository        { return m.messages }
func (m *mockDataStore) Secrets() secrets.SecretRepository         { return m.secrets }

// ---------------------------------------------------------------------------
// Mock AgentRepository
// ---------------------------------------------------------------------------

type mockAgentRepo struct {
	createFunc       func(ctx context.Context, a *domain.Agent) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	listFunc         func(ctx context.Context) ([]*domain.Agent, error)
	updateFunc       func(ctx context.Context, a *domain.Agent) error
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.AgentStatus) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	return m.createFunc(ctx, a)
}

func (m *mockAgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	return m.listFunc(ctx)
}

func (m *mockAgentRepo) Update(ctx context.Context, a *domain.Agent) error {
	return m.updateFunc(ctx, a)
}

func (m *mockAgentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AgentStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockAgentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TicketRepository
// ---------------------------------------------------------------------------

type mockTicketRepo struct {
	createFunc        func(ctx context.Context, t *domain.Ticket) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	listByProjectFunc func(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error)
	listByStatusFunc  func(ctx context.Context, projectID uuid.UUID, status domain.TicketStatus) ([]*domain.Ticket, error)
	updateStatusFunc  func(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error
	updateFunc        func(ctx context.Context, t *domain.Ticket) error
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	return m.createFunc(ctx, t)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTicketRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error) {
	return m.listByProjectFunc(ctx, projectID)
}

func (m *mockTicketRepo) ListByStatus(ctx context.Context, projectID uuid.UUID, status domain.TicketStatus) ([]*domain.Ticket, error) {
	return m.listByStatusFunc(ctx, projectID, status)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockTicketRepo) Update(ctx context.Context, t *domain.Ticket) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc  func(ctx context.Context, p *domain.Project) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	listFunc    func(ctx context.Context) ([]*domain.Project, error)
	updateFunc  func(ctx context.Context, p *domain.Project) error
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	return m.listFunc(ctx)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ProjectRepoRepository
// ---------------------------------------------------------------------------

type mockProjectRepoRepo struct {
	createFunc        func(ctx context.Context, r *domain.ProjectRepo) error
	listByProjectFunc func(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectRepo, error)
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProjectRepoRepo) Create(ctx context.Context, r *domain.ProjectRepo) error {
	return m.createFunc(ctx, r)
}

func (m *mockProjectRepoRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectRepo, error) {
	return m.listByProjectFunc(ctx, projectID)
}

func (m *mockProjectRepoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock MessageRepository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	appendFunc       func(ctx context.Context, msg *domain.Message) error
	listByAgentFunc  func(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	listByTicketFunc func(ctx context.Context, ticketID uuid.UUID, limit, offset int) ([]*domain.Message, error)
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	return m.appendFunc(ctx, msg)
}

func (m *mockMessageRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	return m.listByAgentFunc(ctx, agentID, limit, offset)
}

func (m *mockMessageRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	return m.listByTicketFunc(ctx, ticketID, limit, offset)
}

// ---------------------------------------------------------------------------
// Mock SecretRepository: stateful, backed by a map, since the token flow
// round-trips save/load within a single test.
// ---------------------------------------------------------------------------

type mockSecretRepo struct {
	byName map[string]*secrets.Secret
}

func newMockSecretRepo() *mockSecretRepo {
	return &mockSecretRepo{byName: make(map[string]*secrets.Secret)}
}

func (m *mockSecretRepo) Upsert(_ context.Context, s *secrets.Secret) error {
	m.byName[s.Name] = s
	return nil
}

func (m *mockSecretRepo) GetByName(_ context.Context, name string) (*secrets.Secret, error) {
	s, ok := m.byName[name]
	if !ok {
		return nil, secrets.ErrSecretNotFound
	}
	return s, nil
}

func (m *mockSecretRepo) List(_ context.Context) ([]*secrets.Secret, error) {
	out := make([]*secrets.Secret, 0, len(m.byName))
	for _, s := range m.byName {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSecretRepo) Delete(_ context.Context, name string) error {
	delete(m.byName, name)
	return nil
}

// ---------------------------------------------------------------------------
// Mock FleetOrchestrator
// ---------------------------------------------------------------------------

type mockOrchestrator struct {
	startTicketFunc func(ctx context.Context, agentID, ticketID uuid.UUID) (*domain.Agent, error)
	answerFunc      func(ctx context.Context, agentID uuid.UUID, reply string) error
	cancelFunc      func(ctx context.Context, agentID uuid.UUID) error
	canvasFunc      func(agentID uuid.UUID) *canvas.Canvas
	rosterFunc      func(ctx context.Context) ([]*domain.Agent, error)
}

func (m *mockOrchestrator) StartTicket(ctx context.Context, agentID, ticketID uuid.UUID) (*domain.Agent, error) {
	return m.startTicketFunc(ctx, agentID, ticketID)
}

func (m *mockOrchestrator) Answer(ctx context.Context, agentID uuid.UUID, reply string) error {
	return m.answerFunc(ctx, agentID, reply)
}

func (m *mockOrchestrator) Cancel(ctx context.Context, agentID uuid.UUID) error {
	return m.cancelFunc(ctx, agentID)
}

func (m *mockOrchestrator) Canvas(agentID uuid.UUID) *canvas.Canvas {
	return m.canvasFunc(agentID)
}

func (m *mockOrchestrator) Roster(ctx context.Context) ([]*domain.Agent, error) {
	return m.rosterFunc(ctx)
}
