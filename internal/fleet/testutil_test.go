package fleet

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/secrets"
)

// ---------------------------------------------------------------------------
// Mock AgentRepository: stateful, single-agent fleets are enough here
// ---------------------------------------------------------------------------

type mockAgentRepo struct {
	mu     sync.Mutex
	agents map[uuid.UUID]*domain.Agent
}

func newMockAgentRepo(agents ...*domain.Agent) *mockAgentRepo {
	m := &mockAgentRepo{agents: make(map[uuid.UUID]*domain.Agent)}
	for _, a := range agents {
		cp := *a
		m.agents[a.ID] = &cp
	}
	return m
}

func (m *mockAgentRepo) get(id uuid.UUID) *domain.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.agents[id]
	return &cp
}

func (m *mockAgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.agents[a.ID] = &cp
	return nil
}

func (m *mockAgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockAgentRepo) Update(ctx context.Context, a *domain.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	m.agents[a.ID] = &cp
	return nil
}

func (m *mockAgentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AgentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockAgentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.agents, id)
	return nil
}

// ---------------------------------------------------------------------------
// Mock TicketRepository
// ---------------------------------------------------------------------------

type mockTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*domain.Ticket
}

func newMockTicketRepo(tickets ...*domain.Ticket) *mockTicketRepo {
	m := &mockTicketRepo{tickets: make(map[uuid.UUID]*domain.Ticket)}
	for _, t := range tickets {
		cp := *t
		m.tickets[t.ID] = &cp
	}
	return m
}

func (m *mockTicketRepo) get(id uuid.UUID) *domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.tickets[id]
	return &cp
}

func (m *mockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTicketRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range m.tickets {
		if t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) ListByStatus(ctx context.Context, projectID uuid.UUID, status domain.TicketStatus) ([]*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range m.tickets {
		if t.ProjectID == projectID && t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (m *mockTicketRepo) Update(ctx context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *mockTicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tickets, id)
	return nil
}

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error { return nil }
func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return m.getByIDFunc(ctx, id)
}
func (m *mockProjectRepo) List(ctx context.Context) ([]*domain.Project, error) { return nil, nil }
func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error { return nil }
func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

// ---------------------------------------------------------------------------
// Mock MessageRepository: records appends
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockMessageRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.AgentID == agentID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.TicketID != nil && *msg.TicketID == ticketID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) all() []*domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// ---------------------------------------------------------------------------
// Mock SecretRepository
// ---------------------------------------------------------------------------

type mockSecretRepo struct {
	mu      sync.Mutex
	secrets map[string]*secrets.Secret
}

func newMockSecretRepo() *mockSecretRepo {
	return &mockSecretRepo{secrets: make(map[string]*secrets.Secret)}
}

func (m *mockSecretRepo) Upsert(ctx context.Context, s *secrets.Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.secrets[s.Name] = &cp
	return nil
}

func (m *mockSecretRepo) GetByName(ctx context.Context, name string) (*secrets.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[name]
	if !ok {
		return nil, secrets.ErrSecretNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSecretRepo) List(ctx context.Context) ([]*secrets.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secrets.Secret
	for _, s := range m.secrets {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockSecretRepo) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, name)
	return nil
}

// ---------------------------------------------------------------------------
// Mock pub/sub and answerer
// ---------------------------------------------------------------------------

type published struct {
	channel string
	payload []byte
}

type mockPubSub struct {
	mu   sync.Mutex
	msgs []published
}

func (m *mockPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{channel: channel, payload: payload})
	return nil
}

func (m *mockPubSub) byChannel(channel string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]byte
	for _, p := range m.msgs {
		if p.channel == channel {
			out = append(out, p.payload)
		}
	}
	return out
}

type mockAnswerer struct {
	mu        sync.Mutex
	pending   map[string]bool
	replies   map[string]string
	answerErr error
}

func newMockAnswerer() *mockAnswerer {
	return &mockAnswerer{pending: make(map[string]bool), replies: make(map[string]string)}
}

func (m *mockAnswerer) Pending(agentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[agentID]
}

func (m *mockAnswerer) Answer(agentID, reply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answerErr != nil {
		return m.answerErr
	}
	m.pending[agentID] = false
	m.replies[agentID] = reply
	return nil
}

// ---------------------------------------------------------------------------
// Mock Notifier
// ---------------------------------------------------------------------------

type mockNotifier struct {
	mu        sync.Mutex
	questions []string
	blocked   []string
	reviews   []int
}

func (m *mockNotifier) AgentAskedQuestion(agentName, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, agentName+": "+question)
	return nil
}

func (m *mockNotifier) AgentBlocked(agentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = append(m.blocked, agentName)
	return nil
}

func (m *mockNotifier) TicketInReview(agentName string, prNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, prNumber)
	return nil
}

func (m *mockNotifier) snapshot() (questions, blocked []string, reviews []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.questions...), append([]string(nil), m.blocked...), append([]int(nil), m.reviews...)
}
