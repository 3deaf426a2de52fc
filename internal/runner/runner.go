// Package runner spawns coding-agent CLI processes and streams their
// events. One Run is one ticket session in one worktree; resuming a session
// is a new Run carrying the previous session id.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/poietai/poietai/internal/canvas"
)

// scanBufSize bounds a single stream-json line. Tool results can carry whole
// file contents, so the default 64K token limit is far too small.
const scanBufSize = 10 * 1024 * 1024

// stderrCapSize bounds how much process stderr is kept for abnormal-exit
// diagnostics.
const stderrCapSize = 8 * 1024

// capWriter keeps the first max bytes written and discards the rest.
type capWriter struct {
	buf bytes.Buffer
	max int
}

func (w *capWriter) Write(p []byte) (int, error) {
	n := len(p)
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			p = p[:room]
		}
		w.buf.Write(p)
	}
	return n, nil
}

// RunConfig describes one agent process invocation.
type RunConfig struct {
	Bin          string // agent CLI binary, e.g. "claude"
	AgentID      uuid.UUID
	TicketID     uuid.UUID
	WorkDir      string            // worktree the process runs in
	SystemPrompt string            // appended system prompt
	Prompt       string            // the ticket prompt, passed on stdin
	AllowedTools []string          // tool allowlist, joined with commas
	ResumeSID    string            // non-empty resumes a previous session
	Env          map[string]string // extra environment (git identity, GH_TOKEN)
}

// Result is what a completed run leaves behind.
type Result struct {
	SessionID string // last session id seen on the stream
	ExitErr   error  // non-nil when the process exited abnormally
}

// Handler receives each projected envelope as it arrives. Called from the
// run goroutine; implementations decide their own synchronization.
type Handler func(canvas.Envelope)

// Args builds the CLI argument list for a run.
func Args(cfg RunConfig) []string {
	args := []string{
		"--print",
		"--output-format", "stream-json",
		"--verbose",
	}
	if cfg.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", cfg.SystemPrompt)
	}
	if len(cfg.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(cfg.AllowedTools, ","))
	}
	if cfg.ResumeSID != "" {
		args = append(args, "--resume", cfg.ResumeSID)
	}
	return args
}

// NodeID names an event node: <agent>-<ticket>-<seq>. Sequence numbers are
// per-run and strictly increasing, so node ids sort in arrival order.
func NodeID(agentID, ticketID uuid.UUID, seq int) string {
	return fmt.Sprintf("%s-%s-%d", agentID, ticketID, seq)
}

// Run starts the agent process and blocks until it exits, invoking handler
// for every event on the stream. Unknown and malformed lines are skipped.
// Cancelling ctx kills the process.
func Run(ctx context.Context, cfg RunConfig, handler Handler) Result {
	cmd := exec.CommandContext(ctx, cfg.Bin, Args(cfg)...)
	cmd.Dir = cfg.WorkDir
	cmd.Stdin = strings.NewReader(cfg.Prompt)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stderr := &capWriter{max: stderrCapSize}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitErr: fmt.Errorf("runner.Run: stdout pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitErr: fmt.Errorf("runner.Run: start %s: %w", cfg.Bin, err)}
	}

	log.Info().
		Str("agent_id", cfg.AgentID.String()).
		Str("ticket_id", cfg.TicketID.String()).
		Str("dir", cfg.WorkDir).
		Bool("resume", cfg.ResumeSID != "").
		Msg("agent process started")

	var sessionID string
	seq := 0

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), scanBufSize)
	for scanner.Scan() {
		event, ok := canvas.ParseEvent(scanner.Text())
		if !ok {
			continue
		}
		if event.SessionID != "" {
			sessionID = event.SessionID
		}
		seq++
		handler(canvas.Envelope{
			NodeID:   NodeID(cfg.AgentID, cfg.TicketID, seq),
			AgentID:  cfg.AgentID,
			TicketID: cfg.TicketID,
			Event:    event,
		})
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("agent_id", cfg.AgentID.String()).Msg("agent stream read error")
	}

	waitErr := cmd.Wait()
	if waitErr != nil && ctx.Err() == nil {
		errOut := strings.TrimSpace(stderr.buf.String())
		log.Error().Err(waitErr).
			Str("agent_id", cfg.AgentID.String()).
			Str("stderr", errOut).
			Msg("agent process exited abnormally")
		exitErr := fmt.Errorf("runner.Run: %s: %w", cfg.Bin, waitErr)
		if errOut != "" {
			exitErr = fmt.Errorf("runner.Run: %s: %w: %s", cfg.Bin, waitErr, errOut)
		}
		return Result{SessionID: sessionID, ExitErr: exitErr}
	}

	log.Info().
		Str("agent_id", cfg.AgentID.String()).
		Str("ticket_id", cfg.TicketID.String()).
		Str("session_id", sessionID).
		Msg("agent process finished")
	return Result{SessionID: sessionID}
}
