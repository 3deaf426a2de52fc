package gitutil

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// WorktreeConfig names everything needed to carve out an isolated worktree
// for one agent run on one ticket.
type WorktreeConfig struct {
	RepoRoot   string // root of the main checkout
	TicketID   string // names the worktree directory
	TicketSlug string // names the branch, e.g. "fix-billing-nil-guard"
	AgentName  string // git author name for commits
	AgentEmail string // git author email for commits
}

// Worktree is a created worktree, ready for agent use.
type Worktree struct {
	Path     string
	Branch   string
	TicketID string
}

// BranchFor returns the branch name for a ticket slug: feat/<slug>.
func BranchFor(slug string) string {
	return "feat/" + slug
}

// WorktreePath returns the worktree directory: <repo>/.worktrees/<ticket-id>.
func WorktreePath(repoRoot, ticketID string) string {
	return filepath.Join(repoRoot, ".worktrees", ticketID)
}

// CreateWorktree runs: git worktree add .worktrees/<ticket-id> -b feat/<slug>.
func CreateWorktree(cfg WorktreeConfig) (*Worktree, error) {
	branch := BranchFor(cfg.TicketSlug)
	path := WorktreePath(cfg.RepoRoot, cfg.TicketID)

	cmd := exec.Command("git", "worktree", "add", path, "-b", branch)
	cmd.Dir = cfg.RepoRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("gitutil.CreateWorktree: git worktree add: %w: %s", err, out)
	}

	return &Worktree{Path: path, Branch: branch, TicketID: cfg.TicketID}, nil
}

// RemoveWorktree runs: git worktree remove <path> --force.
func RemoveWorktree(repoRoot, worktreePath string) error {
	cmd := exec.Command("git", "worktree", "remove", worktreePath, "--force")
	cmd.Dir = repoRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gitutil.RemoveWorktree: git worktree remove: %w: %s", err, out)
	}
	return nil
}

// AgentEnv builds the environment for the agent process: git identity so
// commits carry the agent's name, plus the GitHub token for gh.
func AgentEnv(cfg WorktreeConfig, ghToken string) map[string]string {
	return map[string]string{
		"GIT_AUTHOR_NAME":     cfg.AgentName,
		"GIT_AUTHOR_EMAIL":    cfg.AgentEmail,
		"GIT_COMMITTER_NAME":  cfg.AgentName,
		"GIT_COMMITTER_EMAIL": cfg.AgentEmail,
		"GH_TOKEN":            ghToken,
	}
}
