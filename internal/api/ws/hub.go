// Package ws bridges Redis pub/sub channels onto WebSocket connections.
// Each connection subscribes to exactly one channel; payloads are forwarded
// verbatim, so the wire format is whatever the publisher marshalled.
package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/poietai/poietai/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub *redisstore.PubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeCanvas handles WebSocket connections for live canvas updates.
// Subscribes to Redis channel "canvas:<agentID>:<ticketID>" and streams
// projected node envelopes to the client.
func (h *Hub) ServeCanvas(w http.ResponseWriter, r *http.Request) {
	agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return
	}

	h.stream(w, r, redisstore.CanvasChannel(agentID, ticketID))
}

// ServeAgents handles WebSocket connections for agent roster updates.
// Subscribes to Redis channel "agents" and streams roster snapshots.
func (h *Hub) ServeAgents(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, redisstore.AgentsChannel())
}

// ServeInbox handles WebSocket connections for one agent's DM inbox.
// Subscribes to Redis channel "inbox:<agentID>" and streams new messages.
func (h *Hub) ServeInbox(w http.ResponseWriter, r *http.Request) {
	agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	h.stream(w, r, redisstore.InboxChannel(agentID))
}

// stream upgrades the connection and forwards everything published on the
// channel until either side goes away.
func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// Publish sends a payload to a Redis channel. Convenience wrapper for API
// handlers that mutate state the UI is watching.
func (h *Hub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := h.pubsub.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("ws.Hub.Publish: %w", err)
	}
	return nil
}
