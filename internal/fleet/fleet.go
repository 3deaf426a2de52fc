// Package fleet coordinates the agent roster: starting ticket runs, routing
// operator replies back to blocked or finished agents, and broadcasting
// status snapshots for the canvas UI.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/poietai/poietai/internal/canvas"
	"github.com/poietai/poietai/internal/domain"
	"github.com/poietai/poietai/internal/github"
	"github.com/poietai/poietai/internal/gitutil"
	"github.com/poietai/poietai/internal/runner"
	"github.com/poietai/poietai/internal/secrets"
	redisstore "github.com/poietai/poietai/internal/store/redis"
)

// ErrAgentBusy is returned when a start is attempted on a non-idle agent.
var ErrAgentBusy = errors.New("fleet: agent is busy") //nolint:gochecknoglobals // sentinel error

// ErrNoActiveRun is returned when a reply or cancel targets an agent with
// nothing to resume.
var ErrNoActiveRun = errors.New("fleet: no active run for agent") //nolint:gochecknoglobals // sentinel error

// githubTokenSecret is the vault entry holding the source-control token.
const githubTokenSecret = "github_token"

// PubSubPublisher abstracts the Redis pub/sub publish operation.
type PubSubPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Answerer routes replies to agents blocked inside an ask_human tool call.
type Answerer interface {
	Pending(agentID string) bool
	Answer(agentID, reply string) error
}

// Notifier pushes agent lifecycle events to an external channel, e.g. Slack.
// *notify.Notifier satisfies this interface; nil disables notifications.
type Notifier interface {
	AgentAskedQuestion(agentName, question string) error
	AgentBlocked(agentName string) error
	TicketInReview(agentName string, prNumber int) error
}

// Options carries runner and polling settings into the orchestrator.
type Options struct {
	RunnerBin      string
	AllowedTools   []string
	ReviewInterval time.Duration
	ReviewMaxPolls int
}

// run tracks one live agent process.
type run struct {
	cancel   context.CancelFunc
	ticketID uuid.UUID
}

// Orchestrator owns the agent run lifecycle: worktree setup, process spawn,
// event fan-out, status transitions, and review watching.
type Orchestrator struct {
	agents   domain.AgentRepository
	tickets  domain.TicketRepository
	projects domain.ProjectRepository
	messages domain.MessageRepository
	secrets  secrets.SecretRepository
	vault    *secrets.Vault
	pubsub   PubSubPublisher
	answerer Answerer
	notifier Notifier // nil when Slack is not configured
	opts     Options

	// Injectable process/git hooks, overridden in tests.
	runFn      func(ctx context.Context, cfg runner.RunConfig, h runner.Handler) runner.Result
	worktreeFn func(cfg gitutil.WorktreeConfig) (*gitutil.Worktree, error)
	findPRFn   func(ctx context.Context, dir string) (int, error)
	fetcher    github.ReviewFetcher

	mu       sync.RWMutex
	runs     map[uuid.UUID]*run          // agent id -> live process
	canvases map[uuid.UUID]*canvas.Canvas // agent id -> event graph

	done chan struct{}
}

func NewOrchestrator(
	agents domain.AgentRepository,
	tickets domain.TicketRepository,
	projects domain.ProjectRepository,
	messages domain.MessageRepository,
	secretRepo secrets.SecretRepository,
	vault *secrets.Vault,
	pubsub PubSubPublisher,
	answerer Answerer,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		agents:     agents,
		tickets:    tickets,
		projects:   projects,
		messages:   messages,
		secrets:    secretRepo,
		vault:      vault,
		pubsub:     pubsub,
		answerer:   answerer,
		opts:       opts,
		runFn:      runner.Run,
		worktreeFn: gitutil.CreateWorktree,
		findPRFn:   github.FindPRNumber,
		fetcher:    github.GHCLIFetcher{},
		runs:       make(map[uuid.UUID]*run),
		canvases:   make(map[uuid.UUID]*canvas.Canvas),
		done:       make(chan struct{}),
	}
}

// SetNotifier enables lifecycle notifications. Call before any run starts.
func (o *Orchestrator) SetNotifier(n Notifier) {
	o.notifier = n
}

// SetAnswerer wires the ask_human reply channel. The MCP server needs the
// orchestrator's question callback and the orchestrator needs the MCP
// server's pending/answer surface, so one side is attached after construction.
func (o *Orchestrator) SetAnswerer(a Answerer) {
	o.answerer = a
}

// Shutdown cancels all live runs and stops background goroutines.
func (o *Orchestrator) Shutdown() {
	close(o.done)

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range o.runs {
		r.cancel()
	}
}

// Canvas returns the event graph for an agent, creating it on first use.
func (o *Orchestrator) Canvas(agentID uuid.UUID) *canvas.Canvas {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.canvases[agentID]
	if !ok {
		c = canvas.New(uuid.Nil)
		o.canvases[agentID] = c
	}
	return c
}

// StartTicket assigns a ticket to an idle agent: carve a worktree, build the
// prompts, spawn the agent process, and stream its events.
func (o *Orchestrator) StartTicket(ctx context.Context, agentID, ticketID uuid.UUID) (*domain.Agent, error) {
	agent, err := o.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("fleet.StartTicket: get agent: %w", err)
	}
	if agent.Status != domain.AgentStatusIdle {
		return nil, fmt.Errorf("fleet.StartTicket: agent status %q: %w", agent.Status, ErrAgentBusy)
	}

	ticket, err := o.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("fleet.StartTicket: get ticket: %w", err)
	}
	if ticket.Status != domain.TicketStatusBacklog && ticket.Status != domain.TicketStatusInProgress {
		return nil, fmt.Errorf("fleet.StartTicket: ticket status %q: %w", ticket.Status, domain.ErrInvalidTransition)
	}

	project, err := o.projects.GetByID(ctx, ticket.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("fleet.StartTicket: get project: %w", err)
	}

	wtCfg := gitutil.WorktreeConfig{
		RepoRoot:   project.RepoRoot,
		TicketID:   ticket.ID.String(),
		TicketSlug: ticket.Slug,
		AgentName:  agent.Name,
		AgentEmail: agentEmail(agent.Name),
	}

	worktree := &gitutil.Worktree{Path: agent.WorktreePath, TicketID: ticket.ID.String()}
	if agent.WorktreePath == "" || agent.CurrentTicketID == nil || *agent.CurrentTicketID != ticketID {
		worktree, err = o.worktreeFn(wtCfg)
		if err != nil {
			return nil, fmt.Errorf("fleet.StartTicket: %w", err)
		}
	}

	token, err := o.vault.Load(ctx, o.secrets, githubTokenSecret)
	if err != nil && !errors.Is(err, secrets.ErrSecretNotFound) {
		return nil, fmt.Errorf("fleet.StartTicket: load token: %w", err)
	}

	systemPrompt := runner.BuildSystemPrompt(runner.PromptInput{
		Role:               agent.Role,
		Personality:        agent.Personality,
		ProjectName:        project.Name,
		ProjectStack:       project.Stack,
		ProjectContext:     project.Context,
		TicketNumber:       ticket.Number,
		TicketTitle:        ticket.Title,
		TicketDescription:  ticket.Description,
		AcceptanceCriteria: ticket.AcceptanceCriteria,
		AgentID:            agent.ID.String(),
	})
	prompt := runner.BuildTicketPrompt(ticket.Title, ticket.Description, ticket.AcceptanceCriteria)

	runCfg := runner.RunConfig{
		Bin:          o.opts.RunnerBin,
		AgentID:      agent.ID,
		TicketID:     ticket.ID,
		WorkDir:      worktree.Path,
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		AllowedTools: o.opts.AllowedTools,
		Env:          gitutil.AgentEnv(wtCfg, token),
	}

	agent.Status = domain.AgentStatusWorking
	agent.CurrentTicketID = &ticketID
	agent.WorktreePath = worktree.Path
	if err := o.agents.Update(ctx, agent); err != nil {
		return nil, fmt.Errorf("fleet.StartTicket: update agent: %w", err)
	}

	if ticket.Status == domain.TicketStatusBacklog {
		if err := o.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusInProgress); err != nil {
			return nil, fmt.Errorf("fleet.StartTicket: update ticket: %w", err)
		}
	}
	if ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != agentID {
		ticket.AssignedAgentID = &agentID
		ticket.Status = domain.TicketStatusInProgress
		if err := o.tickets.Update(ctx, ticket); err != nil {
			return nil, fmt.Errorf("fleet.StartTicket: assign ticket: %w", err)
		}
	}

	o.Canvas(agentID).SetActiveTicket(ticket.ID)

	o.launch(agent, ticket, project, runCfg)

	return agent, nil
}

// Answer routes an operator reply: into a blocked ask_human call when one is
// pending, otherwise as a session resume on the agent's worktree.
func (o *Orchestrator) Answer(ctx context.Context, agentID uuid.UUID, reply string) error {
	agent, err := o.agents.GetByID(ctx, agentID)
	if err != nil {
		return fmt.Errorf("fleet.Answer: get agent: %w", err)
	}

	now := time.Now()
	msg := &domain.Message{
		ID:        uuid.New(),
		AgentID:   agentID,
		TicketID:  agent.CurrentTicketID,
		Author:    domain.MessageAuthorUser,
		Body:      reply,
		CreatedAt: now,
	}
	if err := o.messages.Append(ctx, msg); err != nil {
		return fmt.Errorf("fleet.Answer: append message: %w", err)
	}
	o.publishInbox(agentID, msg)

	o.Canvas(agentID).ClearAwaiting()

	if o.answerer != nil && o.answerer.Pending(agentID.String()) {
		if err := o.answerer.Answer(agentID.String(), reply); err == nil {
			if err := o.agents.UpdateStatus(ctx, agentID, domain.AgentStatusWorking); err != nil {
				return fmt.Errorf("fleet.Answer: update status: %w", err)
			}
			return nil
		}
		// The blocked call timed out between the pending check and delivery.
		// The reply is already in the inbox; fall through to the resume path.
		log.Debug().Str("agent_id", agentID.String()).Msg("pending question gone, trying session resume")
	}

	// A resume spawns a fresh process in the agent's worktree. While a run is
	// still live that would double-launch: the second run would overwrite the
	// run table entry and both processes would share one worktree.
	o.mu.RLock()
	_, live := o.runs[agentID]
	o.mu.RUnlock()
	if live {
		return fmt.Errorf("fleet.Answer: run still active: %w", ErrAgentBusy)
	}

	if agent.SessionID == "" || agent.CurrentTicketID == nil {
		return fmt.Errorf("fleet.Answer: %w", ErrNoActiveRun)
	}

	ticket, err := o.tickets.GetByID(ctx, *agent.CurrentTicketID)
	if err != nil {
		return fmt.Errorf("fleet.Answer: get ticket: %w", err)
	}
	project, err := o.projects.GetByID(ctx, ticket.ProjectID)
	if err != nil {
		return fmt.Errorf("fleet.Answer: get project: %w", err)
	}

	token, err := o.vault.Load(ctx, o.secrets, githubTokenSecret)
	if err != nil && !errors.Is(err, secrets.ErrSecretNotFound) {
		return fmt.Errorf("fleet.Answer: load token: %w", err)
	}

	wtCfg := gitutil.WorktreeConfig{
		RepoRoot:   project.RepoRoot,
		TicketID:   ticket.ID.String(),
		TicketSlug: ticket.Slug,
		AgentName:  agent.Name,
		AgentEmail: agentEmail(agent.Name),
	}

	runCfg := runner.RunConfig{
		Bin:          o.opts.RunnerBin,
		AgentID:      agent.ID,
		TicketID:     ticket.ID,
		WorkDir:      agent.WorktreePath,
		SystemPrompt: "",
		Prompt:       reply,
		AllowedTools: o.opts.AllowedTools,
		ResumeSID:    agent.SessionID,
		Env:          gitutil.AgentEnv(wtCfg, token),
	}

	agent.Status = domain.AgentStatusWorking
	if err := o.agents.Update(ctx, agent); err != nil {
		return fmt.Errorf("fleet.Answer: update agent: %w", err)
	}

	o.launch(agent, ticket, project, runCfg)
	return nil
}

// Cancel kills an agent's live process and returns it to idle. The ticket
// keeps its status; the worktree stays for a later resume.
func (o *Orchestrator) Cancel(ctx context.Context, agentID uuid.UUID) error {
	o.mu.Lock()
	r, ok := o.runs[agentID]
	if ok {
		delete(o.runs, agentID)
	}
	o.mu.Unlock()

	if !ok {
		return fmt.Errorf("fleet.Cancel: %w", ErrNoActiveRun)
	}
	r.cancel()

	if err := o.agents.UpdateStatus(ctx, agentID, domain.AgentStatusIdle); err != nil {
		return fmt.Errorf("fleet.Cancel: update status: %w", err)
	}
	return nil
}

// OnQuestion handles an ask_human call: the question lands in the inbox and
// the agent flips to waiting_for_user. Wired as the MCP server callback.
func (o *Orchestrator) OnQuestion(agentIDStr, question string) {
	agentID, err := uuid.Parse(agentIDStr)
	if err != nil {
		log.Warn().Str("agent_id", agentIDStr).Msg("question from unknown agent id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	agent, err := o.agents.GetByID(ctx, agentID)
	if err != nil {
		log.Error().Err(err).Str("agent_id", agentIDStr).Msg("question for missing agent")
		return
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		AgentID:    agentID,
		TicketID:   agent.CurrentTicketID,
		Author:     domain.MessageAuthorAgent,
		Body:       question,
		IsQuestion: true,
		CreatedAt:  time.Now(),
	}
	if err := o.messages.Append(ctx, msg); err != nil {
		log.Error().Err(err).Str("agent_id", agentIDStr).Msg("failed to append question")
	}
	o.publishInbox(agentID, msg)

	if err := o.agents.UpdateStatus(ctx, agentID, domain.AgentStatusWaitingForUser); err != nil {
		log.Error().Err(err).Str("agent_id", agentIDStr).Msg("failed to flip agent to waiting")
	}

	if o.notifier != nil {
		if err := o.notifier.AgentAskedQuestion(agent.Name, question); err != nil {
			log.Warn().Err(err).Msg("question notification failed")
		}
	}
}

// launch spawns the agent process goroutine and wires its event stream into
// the canvas, the inbox, and Redis.
func (o *Orchestrator) launch(agent *domain.Agent, ticket *domain.Ticket, project *domain.Project, runCfg runner.RunConfig) {
	runCtx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	o.runs[agent.ID] = &run{cancel: cancel, ticketID: ticket.ID}
	o.mu.Unlock()

	agentID := agent.ID
	ticketID := ticket.ID
	channel := redisstore.CanvasChannel(agentID, ticketID)

	go func() {
		defer cancel()

		result := o.runFn(runCtx, runCfg, func(env canvas.Envelope) {
			o.handleEnvelope(agentID, channel, env)
		})

		o.finishRun(agentID, ticketID, project, result)
	}()
}

// handleEnvelope applies one event to the agent's canvas and fans it out.
func (o *Orchestrator) handleEnvelope(agentID uuid.UUID, channel string, env canvas.Envelope) {
	select {
	case <-o.done:
		return
	default:
	}

	o.Canvas(agentID).Apply(env)

	payload, err := json.Marshal(env)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.pubsub.Publish(ctx, channel, payload); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to publish canvas event")
	}

	// Agent narration also lands in the DM inbox.
	if env.Event.Type == canvas.EventText && strings.TrimSpace(env.Event.Text) != "" {
		ticketID := env.TicketID
		text := env.Event.Text
		msg := &domain.Message{
			ID:         uuid.New(),
			AgentID:    agentID,
			TicketID:   &ticketID,
			Author:     domain.MessageAuthorAgent,
			Body:       text,
			IsQuestion: strings.HasSuffix(strings.TrimSpace(text), "?"),
			CreatedAt:  time.Now(),
		}
		if err := o.messages.Append(ctx, msg); err != nil {
			log.Error().Err(err).Str("agent_id", agentID.String()).Msg("failed to append inbox message")
		}
		o.publishInbox(agentID, msg)
	}
}

// finishRun records the session id and settles statuses after the process
// exits: waiting when a question is open, reviewing with the ticket in
// review otherwise.
func (o *Orchestrator) finishRun(agentID, ticketID uuid.UUID, project *domain.Project, result runner.Result) {
	o.mu.Lock()
	_, active := o.runs[agentID]
	delete(o.runs, agentID)
	o.mu.Unlock()

	// Cancel already settled the agent's status.
	if !active {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	agent, err := o.agents.GetByID(ctx, agentID)
	if err != nil {
		log.Error().Err(err).Str("agent_id", agentID.String()).Msg("finish: get agent")
		return
	}

	if result.SessionID != "" {
		agent.SessionID = result.SessionID
	}

	switch {
	case result.ExitErr != nil:
		agent.Status = domain.AgentStatusBlocked

		if o.notifier != nil {
			if err := o.notifier.AgentBlocked(agent.Name); err != nil {
				log.Warn().Err(err).Msg("blocked notification failed")
			}
		}
	case o.Canvas(agentID).Awaiting() != nil:
		agent.Status = domain.AgentStatusWaitingForUser
	default:
		agent.Status = domain.AgentStatusReviewing

		if err := o.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusReview); err != nil {
			log.Error().Err(err).Str("ticket_id", ticketID.String()).Msg("finish: ticket to review")
		}

		if prNumber, prErr := o.findPRFn(ctx, agent.WorktreePath); prErr == nil && prNumber > 0 {
			agent.PRNumber = &prNumber
			go o.watchReviews(agentID, project.RepoRoot, prNumber)
		}

		if o.notifier != nil {
			pr := 0
			if agent.PRNumber != nil {
				pr = *agent.PRNumber
			}
			if err := o.notifier.TicketInReview(agent.Name, pr); err != nil {
				log.Warn().Err(err).Msg("review notification failed")
			}
		}
	}

	if err := o.agents.Update(ctx, agent); err != nil {
		log.Error().Err(err).Str("agent_id", agentID.String()).Msg("finish: update agent")
	}
}

// watchReviews polls the PR and drops each new review into the inbox.
func (o *Orchestrator) watchReviews(agentID uuid.UUID, repoRoot string, prNumber int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-o.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	poller := github.NewPoller(o.fetcher, o.opts.ReviewInterval, o.opts.ReviewMaxPolls)
	err := poller.Watch(ctx, repoRoot, prNumber, func(r github.Review) {
		msgCtx, msgCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer msgCancel()

		body := fmt.Sprintf("Review from %s (%s)", r.Author, r.State)
		if r.Body != "" {
			body += ": " + r.Body
		}
		msg := &domain.Message{
			ID:        uuid.New(),
			AgentID:   agentID,
			Author:    domain.MessageAuthorAgent,
			Body:      body,
			CreatedAt: time.Now(),
		}
		if err := o.messages.Append(msgCtx, msg); err != nil {
			log.Error().Err(err).Int("pr", prNumber).Msg("failed to append review message")
		}
		o.publishInbox(agentID, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Int("pr", prNumber).Msg("review watch ended")
	}
}

func (o *Orchestrator) publishInbox(agentID uuid.UUID, msg *domain.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.pubsub.Publish(ctx, redisstore.InboxChannel(agentID), payload); err != nil {
		log.Error().Err(err).Str("agent_id", agentID.String()).Msg("failed to publish inbox message")
	}
}

// agentEmail derives a stable local email for git identity.
func agentEmail(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	return slug + "@poietai.local"
}
