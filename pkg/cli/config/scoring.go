package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/service/scoring"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type Scoring struct {
	endpoint        string
	alertThreshold  int
	amountThreshold float64
}

func (x *Scoring) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scoring-endpoint",
			Usage:       "URL of an external fraud model; the built-in rule scorer is used when empty",
			Category:    "Scoring",
			Sources:     cli.EnvVars("ARGUS_SCORING_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.IntFlag{
			Name:        "alert-threshold",
			Usage:       "Risk score from which a transaction raises an alert",
			Category:    "Scoring",
			Value:       usecase.DefaultAlertThreshold,
			Sources:     cli.EnvVars("ARGUS_ALERT_THRESHOLD"),
			Destination: &x.alertThreshold,
		},
		&cli.FloatFlag{
			Name:        "amount-threshold",
			Usage:       "Amount above which the built-in rule flags a transaction",
			Category:    "Scoring",
			Value:       scoring.DefaultAmountThreshold,
			Sources:     cli.EnvVars("ARGUS_AMOUNT_THRESHOLD"),
			Destination: &x.amountThreshold,
		},
	}
}

func (x Scoring) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", x.endpoint),
		slog.Int("alert-threshold", x.alertThreshold),
		slog.Float64("amount-threshold", x.amountThreshold),
	)
}

// AlertThreshold returns the configured alert threshold
func (x *Scoring) AlertThreshold() int {
	return x.alertThreshold
}

// Configure returns the scorer applied to new transactions. The built-in
// scorer evaluates the rules kept in rules.
func (x *Scoring) Configure(rules interfaces.RuleRepository) (interfaces.RiskScorer, error) {
	if x.alertThreshold < 0 || x.alertThreshold > 100 {
		return nil, goerr.Wrap(ErrInvalidConfig, "alert threshold must be between 0 and 100", goerr.V("threshold", x.alertThreshold))
	}

	if x.endpoint == "" {
		return scoring.NewRuleScorer(
			scoring.WithAmountThreshold(x.amountThreshold),
			scoring.WithRuleSource(rules),
		), nil
	}

	scorer, err := scoring.NewHTTPScorer(x.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure scoring endpoint")
	}
	return scorer, nil
}
