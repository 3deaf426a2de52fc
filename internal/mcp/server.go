// Package mcp exposes the ask_human tool to agent processes over the MCP
// SSE transport: a long-lived GET /sse stream per agent session and a POST
// /message endpoint carrying JSON-RPC both ways.
package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "poietai"
	serverVersion   = "0.1.0"

	// answerTimeout bounds how long an ask_human call blocks waiting for a
	// reply before the agent gets told to proceed on its own judgment.
	answerTimeout = 10 * time.Minute
)

// QuestionFunc is invoked when an agent asks a question, before the call
// blocks. It surfaces the question in the inbox and flips agent status.
type QuestionFunc func(agentID, question string)

// Server handles the MCP protocol and routes ask_human answers back to
// blocked tool calls.
type Server struct {
	onQuestion QuestionFunc
	timeout    time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall // agent id -> blocked tool call
}

// pendingCall is one blocked ask_human invocation. The reply channel is
// unbuffered so a delivery only succeeds while the tool-call goroutine is
// still waiting; done is closed when that goroutine stops listening.
type pendingCall struct {
	ch   chan string
	done chan struct{}
}

func NewServer(onQuestion QuestionFunc) *Server {
	return &Server{
		onQuestion: onQuestion,
		timeout:    answerTimeout,
		pending:    make(map[string]*pendingCall),
	}
}

// Routes mounts the SSE and message endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Get("/sse", s.handleSSE)
	r.Post("/message", s.handleMessage)
}

// Pending reports whether an agent has an ask_human call blocked on a reply.
func (s *Server) Pending(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[agentID]
	return ok
}

// Answer delivers a reply to a blocked ask_human call. Returns an error when
// the agent has no pending question or the call stopped waiting, so the
// caller can route the reply elsewhere instead of losing it.
func (s *Server) Answer(agentID, reply string) error {
	s.mu.Lock()
	call, ok := s.pending[agentID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("mcp.Answer: no pending question for agent %s", agentID)
	}

	select {
	case call.ch <- reply:
	case <-call.done:
		return fmt.Errorf("mcp.Answer: question for agent %s already timed out", agentID)
	}

	s.mu.Lock()
	if s.pending[agentID] == call {
		delete(s.pending, agentID)
	}
	s.mu.Unlock()
	return nil
}

// handleSSE opens the event stream. The endpoint event tells the client
// where to POST messages; afterwards the stream stays open as a keepalive
// channel until the client disconnects.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The stream outlives any server write deadline.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sessionID := uuid.NewString()
	fmt.Fprintf(w, "event: endpoint\ndata: /message?session_id=%s\n\n", sessionID)
	flusher.Flush()

	log.Debug().Str("session_id", sessionID).Msg("mcp sse stream opened")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("session_id", sessionID).Msg("mcp sse stream closed")
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	// ask_human blocks until the operator answers, which can take far longer
	// than the server write deadline.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "initialize":
		s.reply(w, req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		})
	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)
	case "tools/list":
		s.reply(w, req.ID, map[string]any{"tools": []map[string]any{askHumanTool()}})
	case "tools/call":
		s.handleToolCall(w, req)
	default:
		s.replyError(w, req.ID, -32601, "method not found: "+req.Method)
	}
}

func askHumanTool() map[string]any {
	return map[string]any{
		"name":        "ask_human",
		"description": "Ask the human operator a question and block until they answer. Use for clarifications that would change your approach.",
		"inputSchema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"agent_id": map[string]any{"type": "string", "description": "Your agent id, exactly as given in your system prompt"},
				"question": map[string]any{"type": "string", "description": "The question to ask"},
			},
			"required": []string{"agent_id", "question"},
		},
	}
}

func (s *Server) handleToolCall(w http.ResponseWriter, req rpcRequest) {
	var params struct {
		Name      string `json:"name"`
		Arguments struct {
			AgentID  string `json:"agent_id"`
			Question string `json:"question"`
		} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.replyError(w, req.ID, -32602, "invalid params")
		return
	}
	if params.Name != "ask_human" {
		s.replyError(w, req.ID, -32602, "unknown tool: "+params.Name)
		return
	}
	if params.Arguments.AgentID == "" || params.Arguments.Question == "" {
		s.replyError(w, req.ID, -32602, "agent_id and question are required")
		return
	}

	agentID := params.Arguments.AgentID
	call := &pendingCall{ch: make(chan string), done: make(chan struct{})}
	s.mu.Lock()
	s.pending[agentID] = call
	s.mu.Unlock()

	log.Info().
		Str("agent_id", agentID).
		Msg("agent asked a question, blocking tool call")
	if s.onQuestion != nil {
		s.onQuestion(agentID, params.Arguments.Question)
	}

	var text string
	select {
	case reply := <-call.ch:
		text = reply
	case <-time.After(s.timeout):
		text = "No answer received within the waiting period. Use your best judgment and proceed."
	}

	// This goroutine owns the entry: close done first so a racing Answer
	// reports failure instead of dropping the reply.
	close(call.done)
	s.mu.Lock()
	if s.pending[agentID] == call {
		delete(s.pending, agentID)
	}
	s.mu.Unlock()

	s.reply(w, req.ID, map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	})
}

func (s *Server) reply(w http.ResponseWriter, id json.RawMessage, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) replyError(w http.ResponseWriter, id json.RawMessage, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}})
}
