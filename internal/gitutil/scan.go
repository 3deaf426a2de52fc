// Package gitutil shells out to git for folder scanning and worktree
// management. Agents run against local checkouts, so everything here works
// on paths, not clone URLs.
package gitutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ScanResult classifies what a folder scan found during onboarding.
type ScanResult struct {
	Kind          ScanKind   `json:"kind"`
	Repos         []RepoInfo `json:"repos,omitempty"`
	SuggestedName string     `json:"suggested_name,omitempty"`
}

type ScanKind string

const (
	ScanSingleRepo ScanKind = "single_repo"
	ScanMultiRepo  ScanKind = "multi_repo"
	ScanNoRepo     ScanKind = "no_repo"
)

// RepoInfo describes one discovered git repository.
type RepoInfo struct {
	Name      string `json:"name"`
	RepoRoot  string `json:"repo_root"`
	RemoteURL string `json:"remote_url,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// DetectProvider maps a remote URL to a known source-control host.
// Returns "" for unrecognized hosts.
func DetectProvider(remoteURL string) string {
	switch {
	case strings.Contains(remoteURL, "github.com"):
		return "github"
	case strings.Contains(remoteURL, "gitlab.com"):
		return "gitlab"
	case strings.Contains(remoteURL, "bitbucket.org"):
		return "bitbucket"
	case strings.Contains(remoteURL, "dev.azure.com"), strings.Contains(remoteURL, "visualstudio.com"):
		return "azure"
	default:
		return ""
	}
}

// RemoteURL returns the origin remote URL of a repo, or "" when there is no
// remote (or git is unavailable).
func RemoteURL(path string) string {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = path
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// ScanFolder inspects a folder for git repositories: the folder itself, or
// one level deep for multi-repo workspaces.
func ScanFolder(path string) ScanResult {
	if isGitRepo(path) {
		return ScanResult{
			Kind:  ScanSingleRepo,
			Repos: []RepoInfo{repoInfo(filepath.Base(path), path)},
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return ScanResult{Kind: ScanNoRepo}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var repos []RepoInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(path, entry.Name())
		if isGitRepo(sub) {
			repos = append(repos, repoInfo(entry.Name(), sub))
		}
	}

	if len(repos) == 0 {
		return ScanResult{Kind: ScanNoRepo}
	}

	return ScanResult{
		Kind:          ScanMultiRepo,
		Repos:         repos,
		SuggestedName: filepath.Base(path),
	}
}

func isGitRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

func repoInfo(name, path string) RepoInfo {
	remote := RemoteURL(path)
	return RepoInfo{
		Name:      name,
		RepoRoot:  path,
		RemoteURL: remote,
		Provider:  DetectProvider(remote),
	}
}
