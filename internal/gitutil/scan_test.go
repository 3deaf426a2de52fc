package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "github https", url: "https://github.com/user/repo", want: "github"},
		{name: "github ssh", url: "git@github.com:user/repo.git", want: "github"},
		{name: "gitlab", url: "https://gitlab.com/user/repo", want: "gitlab"},
		{name: "bitbucket", url: "https://bitbucket.org/user/repo", want: "bitbucket"},
		{name: "azure", url: "https://dev.azure.com/org/project/_git/repo", want: "azure"},
		{name: "azure legacy", url: "https://org.visualstudio.com/_git/repo", want: "azure"},
		{name: "unknown host", url: "https://custom-git.company.com/repo", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectProvider(tc.url))
		})
	}
}

func makeRepoDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func TestScanFolder(t *testing.T) {
	t.Run("single repo", func(t *testing.T) {
		root := t.TempDir()
		repo := makeRepoDir(t, root, "myrepo")

		result := ScanFolder(repo)
		assert.Equal(t, ScanSingleRepo, result.Kind)
		require.Len(t, result.Repos, 1)
		assert.Equal(t, "myrepo", result.Repos[0].Name)
		assert.Equal(t, repo, result.Repos[0].RepoRoot)
	})

	t.Run("multi repo one level deep", func(t *testing.T) {
		root := t.TempDir()
		ws := filepath.Join(root, "workspace")
		require.NoError(t, os.MkdirAll(ws, 0o755))
		makeRepoDir(t, ws, "backend")
		makeRepoDir(t, ws, "frontend")
		require.NoError(t, os.MkdirAll(filepath.Join(ws, "notes"), 0o755)) // not a repo

		result := ScanFolder(ws)
		assert.Equal(t, ScanMultiRepo, result.Kind)
		assert.Equal(t, "workspace", result.SuggestedName)
		require.Len(t, result.Repos, 2)
		// Sorted by name.
		assert.Equal(t, "backend", result.Repos[0].Name)
		assert.Equal(t, "frontend", result.Repos[1].Name)
	})

	t.Run("no repo", func(t *testing.T) {
		result := ScanFolder(t.TempDir())
		assert.Equal(t, ScanNoRepo, result.Kind)
	})

	t.Run("missing folder", func(t *testing.T) {
		result := ScanFolder(filepath.Join(t.TempDir(), "does-not-exist"))
		assert.Equal(t, ScanNoRepo, result.Kind)
	})
}

func TestWorktreeNaming(t *testing.T) {
	assert.Equal(t, "feat/fix-billing-nil-guard", BranchFor("fix-billing-nil-guard"))
	assert.Equal(t,
		filepath.Join("/home/user/myrepo", ".worktrees", "ticket-42"),
		WorktreePath("/home/user/myrepo", "ticket-42"),
	)
}

func TestAgentEnv(t *testing.T) {
	env := AgentEnv(WorktreeConfig{
		RepoRoot:   "/tmp/repo",
		TicketID:   "t-1",
		TicketSlug: "fix-thing",
		AgentName:  "Staff Engineer",
		AgentEmail: "staff-engineer@poietai.local",
	}, "gh_token_abc")

	assert.Equal(t, "Staff Engineer", env["GIT_AUTHOR_NAME"])
	assert.Equal(t, "Staff Engineer", env["GIT_COMMITTER_NAME"])
	assert.Equal(t, "staff-engineer@poietai.local", env["GIT_AUTHOR_EMAIL"])
	assert.Equal(t, "gh_token_abc", env["GH_TOKEN"])
}
