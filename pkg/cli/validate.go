package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/cli/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var seedPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a seed file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "seed",
				Usage:       "TOML file with the principal directory and fixture data",
				Required:    true,
				Sources:     cli.EnvVars("ARGUS_SEED"),
				Destination: &seedPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := config.LoadSeedFile(seedPath)
			if err != nil {
				color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %s\n", seedPath)
				return goerr.Wrap(err, "seed validation failed")
			}

			printSeedSummary(os.Stdout, seedPath, seed)
			return nil
		},
	}
}

func printSeedSummary(w io.Writer, path string, seed *config.SeedFile) {
	ok := color.New(color.FgGreen, color.Bold)
	label := color.New(color.FgCyan)

	ok.Fprintf(w, "✓ %s\n", path)

	byRole := make(map[types.Role]int)
	for _, u := range seed.Users {
		byRole[u.Role]++
	}

	label.Fprint(w, "  users:        ")
	fmt.Fprintf(w, "%d", len(seed.Users))
	for _, role := range types.AllRoles() {
		if n := byRole[role]; n > 0 {
			fmt.Fprintf(w, " %s=%d", role, n)
		}
	}
	fmt.Fprintln(w)

	label.Fprint(w, "  transactions: ")
	fmt.Fprintf(w, "%d\n", len(seed.Transactions))
	label.Fprint(w, "  alerts:       ")
	fmt.Fprintf(w, "%d\n", len(seed.Alerts))
}
