// Package messenger delivers replies back to the messaging platform through
// its send API.
package messenger

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Poster is the outbound seam the dispatcher depends on.
type Poster interface {
	Post(ctx context.Context, channel, text string) error
}

// SlackPoster posts messages with a bot token via the Slack Web API.
type SlackPoster struct {
	api *slack.Client
}

// NewSlackPoster creates a SlackPoster for the given bot token. Extra options
// are passed through to the underlying client (API URL override in tests).
func NewSlackPoster(botToken string, opts ...slack.Option) *SlackPoster {
	return &SlackPoster{api: slack.New(botToken, opts...)}
}

// Post sends text to a channel.
func (p *SlackPoster) Post(ctx context.Context, channel, text string) error {
	_, _, err := p.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("post message to %s: %w", channel, err)
	}
	return nil
}
