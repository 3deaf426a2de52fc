package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/poietai/poietai/internal/domain"
	redisstore "github.com/poietai/poietai/internal/store/redis"
)

// RosterSnapshot is the full agent roster published on every poll tick.
// Consumers replace their state wholesale, so a missed tick costs nothing.
type RosterSnapshot struct {
	Agents []*domain.Agent `json:"agents"`
	At     time.Time       `json:"at"`
}

// Roster returns the current agent roster.
func (o *Orchestrator) Roster(ctx context.Context) ([]*domain.Agent, error) {
	agents, err := o.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet.Roster: %w", err)
	}
	return agents, nil
}

// Broadcast publishes full-roster snapshots on a fixed interval until ctx is
// cancelled or the orchestrator shuts down. Run it as a goroutine from main.
func (o *Orchestrator) Broadcast(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.done:
			return
		case <-ticker.C:
		}

		if err := o.broadcastOnce(ctx); err != nil {
			log.Warn().Err(err).Msg("roster broadcast failed")
		}
	}
}

func (o *Orchestrator) broadcastOnce(ctx context.Context) error {
	tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	agents, err := o.agents.List(tickCtx)
	if err != nil {
		return fmt.Errorf("fleet.broadcastOnce: list agents: %w", err)
	}

	payload, err := json.Marshal(RosterSnapshot{Agents: agents, At: time.Now()})
	if err != nil {
		return fmt.Errorf("fleet.broadcastOnce: marshal: %w", err)
	}

	if err := o.pubsub.Publish(tickCtx, redisstore.AgentsChannel(), payload); err != nil {
		return fmt.Errorf("fleet.broadcastOnce: %w", err)
	}
	return nil
}
