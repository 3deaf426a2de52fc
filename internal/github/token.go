package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const apiBase = "https://api.github.com"

// TokenInfo is what a successful token verification reveals.
type TokenInfo struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// VerifyToken checks a personal access token against the GitHub API and
// returns the account it belongs to.
func VerifyToken(ctx context.Context, token string) (*TokenInfo, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("github.VerifyToken: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github.VerifyToken: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("github.VerifyToken: token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github.VerifyToken: unexpected status %d", resp.StatusCode)
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("github.VerifyToken: decode response: %w", err)
	}
	return &info, nil
}

// MaskToken renders a token for display: first 7 and last 4 characters.
func MaskToken(token string) string {
	if len(token) <= 11 {
		return "****"
	}
	return token[:7] + "..." + token[len(token)-4:]
}
