package v1_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/poietai/poietai/internal/api/v1"
	"github.com/poietai/poietai/internal/canvas"
)

// seedCanvas builds a canvas for one ticket with a thought, a message, and an
// armed awaiting-reply signal.
func seedCanvas(agentID, ticketID uuid.UUID) *canvas.Canvas {
	c := canvas.New(ticketID)
	c.Apply(canvas.Envelope{
		NodeID: "n-0", AgentID: agentID, TicketID: ticketID,
		Event: canvas.AgentEvent{Type: canvas.EventThinking, Thinking: "Reading the billing code."},
	})
	c.Apply(canvas.Envelope{
		NodeID: "n-1", AgentID: agentID, TicketID: ticketID,
		Event: canvas.AgentEvent{Type: canvas.EventText, Text: "Should I drop the legacy plan column?"},
	})
	c.Apply(canvas.Envelope{
		NodeID: "n-2", AgentID: agentID, TicketID: ticketID,
		Event: canvas.AgentEvent{Type: canvas.EventResult, SessionID: "sess-42"},
	})
	return c
}

// ---------------------------------------------------------------------------
// TestGetCanvas
// ---------------------------------------------------------------------------

func TestGetCanvas(t *testing.T) {
	t.Parallel()

	agentID := uuid.New()
	ticketID := uuid.New()

	_, api := humatest.New(t)
	orch := &mockOrchestrator{
		canvasFunc: func(id uuid.UUID) *canvas.Canvas {
			assert.Equal(t, agentID, id)
			return seedCanvas(agentID, ticketID)
		},
	}
	v1.RegisterCanvasRoutes(api, orch)

	resp := api.Get("/agents/" + agentID.String() + "/canvas")

	require.Equal(t, http.StatusOK, resp.Code)

	var body v1.CanvasGraph
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ticketID, body.ActiveTicketID)
	require.Len(t, body.Nodes, 2)
	assert.Equal(t, canvas.NodeThought, body.Nodes[0].Type)
	assert.Equal(t, canvas.NodeAgentMessage, body.Nodes[1].Type)
	require.Len(t, body.Edges, 1)
	assert.Equal(t, "n-0>n-1", body.Edges[0].ID)
	require.NotNil(t, body.Awaiting)
	assert.Equal(t, "Should I drop the legacy plan column?", body.Awaiting.Question)
	assert.Equal(t, "sess-42", body.Awaiting.SessionID)
}

// ---------------------------------------------------------------------------
// TestSetActiveTicket
// ---------------------------------------------------------------------------

func TestSetActiveTicket(t *testing.T) {
	t.Parallel()

	agentID := uuid.New()
	ticketID := uuid.New()
	otherTicket := uuid.New()

	t.Run("switch_resets_graph", func(t *testing.T) {
		t.Parallel()

		c := seedCanvas(agentID, ticketID)
		_, api := humatest.New(t)
		v1.RegisterCanvasRoutes(api, &mockOrchestrator{
			canvasFunc: func(_ uuid.UUID) *canvas.Canvas { return c },
		})

		resp := api.Put("/agents/"+agentID.String()+"/canvas/active-ticket", map[string]any{
			"ticket_id": otherTicket.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.CanvasGraph
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, otherTicket, body.ActiveTicketID)
		assert.Empty(t, body.Nodes)
		assert.Empty(t, body.Edges)
		assert.Nil(t, body.Awaiting)
	})

	t.Run("same_ticket_is_noop", func(t *testing.T) {
		t.Parallel()

		c := seedCanvas(agentID, ticketID)
		_, api := humatest.New(t)
		v1.RegisterCanvasRoutes(api, &mockOrchestrator{
			canvasFunc: func(_ uuid.UUID) *canvas.Canvas { return c },
		})

		resp := api.Put("/agents/"+agentID.String()+"/canvas/active-ticket", map[string]any{
			"ticket_id": ticketID.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.CanvasGraph
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, ticketID, body.ActiveTicketID)
		assert.Len(t, body.Nodes, 2, "nodes survive a no-op switch")
		require.NotNil(t, body.Awaiting)
	})
}
