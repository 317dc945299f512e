package islackclient

import (
	"context"

	"github.com/mettware/slack-notifier/internal/dal/slack"
)

// ISlackClient is an interface for the outbound Slack Web API client.
type ISlackClient interface {
	Enabled() bool
	PostMessage(ctx context.Context, channel string, blocks []slack.Block) error
}
