package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/service/evidence"
	"github.com/urfave/cli/v3"
)

// Evidence configures the verification of uploaded evidence URLs against
// Cloud Storage.
type Evidence struct {
	verify         bool
	allowedBuckets []string
	allowExternal  bool
}

func (x *Evidence) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "evidence-verify",
			Usage:       "Check that evidence URLs point to readable Cloud Storage objects",
			Category:    "Evidence",
			Sources:     cli.EnvVars("ARGUS_EVIDENCE_VERIFY"),
			Destination: &x.verify,
		},
		&cli.StringSliceFlag{
			Name:        "evidence-bucket",
			Usage:       "Cloud Storage bucket allowed for evidence (repeatable)",
			Category:    "Evidence",
			Sources:     cli.EnvVars("ARGUS_EVIDENCE_BUCKETS"),
			Destination: &x.allowedBuckets,
		},
		&cli.BoolFlag{
			Name:        "evidence-allow-external",
			Usage:       "Accept evidence URLs outside Cloud Storage without verification",
			Category:    "Evidence",
			Sources:     cli.EnvVars("ARGUS_EVIDENCE_ALLOW_EXTERNAL"),
			Destination: &x.allowExternal,
		},
	}
}

func (x Evidence) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("verify", x.verify),
		slog.Any("buckets", x.allowedBuckets),
		slog.Bool("allow-external", x.allowExternal),
	)
}

// Configure returns the verifier, or nil when verification is disabled.
// The caller closes the returned verifier.
func (x *Evidence) Configure(ctx context.Context) (*evidence.GCSVerifier, error) {
	if !x.verify {
		return nil, nil
	}

	verifier, err := evidence.NewGCSVerifier(ctx,
		evidence.WithAllowedBuckets(x.allowedBuckets...),
		evidence.WithExternalURLs(x.allowExternal),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize evidence verifier")
	}
	return verifier, nil
}
