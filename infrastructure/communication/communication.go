// Package communication posts operational notifications to Slack.
package communication

import (
	"fmt"
	"os"

	"github.com/slack-go/slack"
)

type Notifier struct {
	client  *slack.Client
	options Options
}

type Options struct {
	InfoChannelID  string
	ErrorChannelID string
}

// ConnectSlack builds a notifier from environment variables. An empty token
// yields a disabled notifier whose methods are no-ops.
func ConnectSlack() *Notifier {
	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		return &Notifier{}
	}
	return NewNotifier(token, Options{
		InfoChannelID:  os.Getenv("SLACK_INFO_CHANNEL"),
		ErrorChannelID: os.Getenv("SLACK_ERROR_CHANNEL"),
	})
}

func NewNotifier(token string, options Options) *Notifier {
	return &Notifier{client: slack.New(token), options: options}
}

func (n *Notifier) Info(message string) error {
	return n.postMessage(n.options.InfoChannelID, message)
}

func (n *Notifier) Error(message string) error {
	return n.postMessage(n.options.ErrorChannelID, message)
}

func (n *Notifier) postMessage(channelID, message string) error {
	if n.client == nil || channelID == "" {
		return nil
	}

	_, _, err := n.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}
