// Package github covers the two GitHub touchpoints: verifying a personal
// access token during onboarding and watching pull requests for reviews.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Review is one PR review as reported by gh.
type Review struct {
	Author      string    `json:"author"`
	State       string    `json:"state"` // APPROVED, CHANGES_REQUESTED, COMMENTED
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewFetcher fetches the current review list for a PR. The production
// implementation shells out to gh; tests stub it.
type ReviewFetcher interface {
	FetchReviews(ctx context.Context, repoRoot string, prNumber int) ([]Review, error)
}

// GHCLIFetcher fetches reviews via the gh CLI, which picks up GH_TOKEN from
// the environment.
type GHCLIFetcher struct{}

type ghReview struct {
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (GHCLIFetcher) FetchReviews(ctx context.Context, repoRoot string, prNumber int) ([]Review, error) {
	cmd := exec.CommandContext(ctx, "gh", "pr", "view", fmt.Sprint(prNumber), "--json", "reviews")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("github.FetchReviews: gh pr view %d: %w", prNumber, err)
	}

	var payload struct {
		Reviews []ghReview `json:"reviews"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("github.FetchReviews: decode gh output: %w", err)
	}

	reviews := make([]Review, 0, len(payload.Reviews))
	for _, r := range payload.Reviews {
		reviews = append(reviews, Review{
			Author:      r.Author.Login,
			State:       r.State,
			Body:        r.Body,
			SubmittedAt: r.SubmittedAt,
		})
	}
	return reviews, nil
}

// FindPRNumber returns the number of the PR for the current branch of dir,
// or 0 when none exists yet.
func FindPRNumber(ctx context.Context, dir string) (int, error) {
	cmd := exec.CommandContext(ctx, "gh", "pr", "view", "--json", "number")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		// gh exits non-zero when the branch has no PR.
		return 0, nil
	}

	var payload struct {
		Number int `json:"number"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("github.FindPRNumber: decode gh output: %w", err)
	}
	return payload.Number, nil
}

// Poller watches one PR for new reviews and hands them to a callback.
type Poller struct {
	fetcher  ReviewFetcher
	interval time.Duration
	maxPolls int
}

// NewPoller builds a poller. Zero interval and maxPolls get the defaults
// of 30s and 120 polls (one hour of watching).
func NewPoller(fetcher ReviewFetcher, interval time.Duration, maxPolls int) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 120
	}
	return &Poller{fetcher: fetcher, interval: interval, maxPolls: maxPolls}
}

// reviewKey dedupes reviews across polls. gh reports the full list every
// time, so identity is author+state+timestamp.
func reviewKey(r Review) string {
	return fmt.Sprintf("%s|%s|%d", r.Author, r.State, r.SubmittedAt.UnixNano())
}

// Watch polls until the PR is approved, the poll budget runs out, or ctx is
// cancelled. onReview fires once per previously unseen review. Fetch errors
// are logged and the poll retried; only ctx cancellation is returned.
func (p *Poller) Watch(ctx context.Context, repoRoot string, prNumber int, onReview func(Review)) error {
	seen := make(map[string]bool)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for polls := 0; polls < p.maxPolls; polls++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		reviews, err := p.fetcher.FetchReviews(ctx, repoRoot, prNumber)
		if err != nil {
			log.Warn().Err(err).Int("pr", prNumber).Msg("review poll failed")
			continue
		}

		approved := false
		for _, r := range reviews {
			key := reviewKey(r)
			if !seen[key] {
				seen[key] = true
				onReview(r)
			}
			if r.State == "APPROVED" {
				approved = true
			}
		}
		if approved {
			log.Info().Int("pr", prNumber).Msg("pull request approved, stopping review poll")
			return nil
		}
	}

	log.Info().Int("pr", prNumber).Msg("review poll budget exhausted")
	return nil
}
