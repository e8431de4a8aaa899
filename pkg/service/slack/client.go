package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts case lifecycle events to a Slack channel
type Notifier struct {
	api       *slack.Client
	channelID string
	baseURL   string
	apiURL    string
}

var _ interfaces.CaseNotifier = &Notifier{}

// Option is a functional option for Notifier configuration
type Option func(*Notifier)

// WithBaseURL links messages to the case pages of the web UI
func WithBaseURL(url string) Option {
	return func(n *Notifier) {
		n.baseURL = url
	}
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(n *Notifier) {
		n.apiURL = url
	}
}

// New creates a notifier with the provided bot token and target channel
func New(token, channelID string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	n := &Notifier{channelID: channelID}
	for _, opt := range opts {
		opt(n)
	}

	var apiOpts []slack.Option
	if n.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(n.apiURL))
	}
	n.api = slack.New(token, apiOpts...)

	return n, nil
}

// NotifyCase posts a summary of the case carried by event. Events without a
// case are ignored.
func (n *Notifier) NotifyCase(ctx context.Context, event *model.Event) error {
	if event == nil || event.Case == nil {
		return nil
	}

	blocks, text := buildCaseMessage(event, n.baseURL)
	_, _, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post case message",
			goerr.V("channel_id", n.channelID),
			goerr.V(model.CaseIDKey, event.Case.ID),
			goerr.V("type", event.Type))
	}
	return nil
}
