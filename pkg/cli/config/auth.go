package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth selects how bearer credentials are verified. With no key configured
// the service runs in no-auth mode and trusts the principal named by the
// client.
type Auth struct {
	jwtSecret string
	jwksURL   string
	issuer    string
	audience  string
	roleClaim string

	noAuthPrincipal string
	noAuthRole      string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Shared HS256 secret for bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "URL of the JWKS used to verify bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Required iss claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_JWT_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.StringFlag{
			Name:        "jwt-audience",
			Usage:       "Required aud claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_JWT_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.StringFlag{
			Name:        "jwt-role-claim",
			Usage:       "Claim carrying the principal role",
			Category:    "Authentication",
			Value:       "role",
			Sources:     cli.EnvVars("ARGUS_JWT_ROLE_CLAIM"),
			Destination: &x.roleClaim,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip token verification and act as this principal by default (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_NO_AUTH"),
			Destination: &x.noAuthPrincipal,
		},
		&cli.StringFlag{
			Name:        "no-auth-role",
			Usage:       "Role of the --no-auth principal when it is not in the directory",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_NO_AUTH_ROLE"),
			Destination: &x.noAuthRole,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.String("jwks-url", x.jwksURL),
		slog.String("issuer", x.issuer),
		slog.String("no-auth", x.noAuthPrincipal),
	)
}

// IsNoAuthMode returns true when no verification key is configured
func (x *Auth) IsNoAuthMode() bool {
	return x.jwtSecret == "" && x.jwksURL == ""
}

// Configure returns the token verifier, or a NoAuthnUseCase in no-auth mode
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuthRole != "" && !types.Role(x.noAuthRole).IsValid() {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid --no-auth-role", goerr.V("role", x.noAuthRole))
	}

	if x.IsNoAuthMode() {
		return usecase.NewNoAuthnUseCase(repo, types.PrincipalID(x.noAuthPrincipal), types.Role(x.noAuthRole)), nil
	}
	if x.noAuthPrincipal != "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "--no-auth cannot be combined with --jwt-secret or --jwks-url")
	}

	var opts []usecase.AuthOption
	if x.jwtSecret != "" {
		opts = append(opts, usecase.WithHMACKey([]byte(x.jwtSecret)))
	}
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	}
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}
	if x.audience != "" {
		opts = append(opts, usecase.WithAudience(x.audience))
	}
	if x.roleClaim != "" {
		opts = append(opts, usecase.WithRoleClaim(x.roleClaim))
	}

	authUC, err := usecase.NewAuthUseCase(repo, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure token verification")
	}
	return authUC, nil
}
