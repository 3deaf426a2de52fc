// Package notify pushes operator-facing notifications to Slack. The desktop
// UI is the primary surface; Slack is the "agent pinged you while you were
// away" channel.
package notify

import (
	"fmt"

	slacklib "github.com/slack-go/slack"
)

// SlackAPI abstracts the subset of the Slack client used by Notifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Notifier posts agent lifecycle events to a single Slack channel.
type Notifier struct {
	api     SlackAPI
	channel string
}

// NewNotifier creates a Notifier posting to the given channel.
func NewNotifier(api SlackAPI, channel string) *Notifier {
	return &Notifier{api: api, channel: channel}
}

// AgentAskedQuestion announces an agent blocked on operator input.
func (n *Notifier) AgentAskedQuestion(agentName, question string) error {
	text := fmt.Sprintf(":question: *%s* needs input: %s", agentName, question)
	if _, _, err := n.api.PostMessage(n.channel, slacklib.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("notify.AgentAskedQuestion: %w", err)
	}
	return nil
}

// AgentBlocked announces a run that exited with an error.
func (n *Notifier) AgentBlocked(agentName string) error {
	text := fmt.Sprintf(":no_entry: *%s* hit an error and is blocked", agentName)
	if _, _, err := n.api.PostMessage(n.channel, slacklib.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("notify.AgentBlocked: %w", err)
	}
	return nil
}

// TicketInReview announces a finished run with an open pull request.
func (n *Notifier) TicketInReview(agentName string, prNumber int) error {
	text := fmt.Sprintf(":eyes: *%s* finished and opened PR #%d", agentName, prNumber)
	if prNumber == 0 {
		text = fmt.Sprintf(":eyes: *%s* finished, no PR found", agentName)
	}
	if _, _, err := n.api.PostMessage(n.channel, slacklib.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("notify.TicketInReview: %w", err)
	}
	return nil
}
