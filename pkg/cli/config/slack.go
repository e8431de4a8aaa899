package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
	baseURL   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token used to post case notifications",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("ARGUS_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel receiving case notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("ARGUS_SLACK_CHANNEL_ID"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the case UI linked from notifications (e.g., https://argus.example.com)",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("ARGUS_BASE_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
		slog.String("base-url", x.baseURL),
	)
}

// IsConfigured checks if Slack configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns the case notifier, or nil when Slack is not configured
func (x *Slack) Configure() (*slack.Notifier, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrInvalidConfig, "both --slack-bot-token and --slack-channel-id are required")
	}

	var opts []slack.Option
	if x.baseURL != "" {
		opts = append(opts, slack.WithBaseURL(x.baseURL))
	}

	notifier, err := slack.New(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack notifier")
	}
	return notifier, nil
}
