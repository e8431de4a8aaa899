package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/argus/pkg/cli/config"
	httpctrl "github.com/secmon-lab/argus/pkg/controller/http"
	"github.com/secmon-lab/argus/pkg/controller/ws"
	"github.com/secmon-lab/argus/pkg/service/realtime"
	"github.com/secmon-lab/argus/pkg/service/worker"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/async"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/secmon-lab/argus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(version string) *cli.Command {
	var (
		serverCfg   config.Server
		repoCfg     config.Repository
		authCfg     config.Auth
		slackCfg    config.Slack
		evidenceCfg config.Evidence
		scoringCfg  config.Scoring
		sentryCfg   config.Sentry
		seedCfg     config.Seed
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, evidenceCfg.Flags()...)
	flags = append(flags, scoringCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the REST API and the live push channel",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"server", serverCfg,
				"repository", repoCfg,
				"auth", authCfg,
				"slack", slackCfg,
				"evidence", evidenceCfg,
				"scoring", scoringCfg,
				"sentry", sentryCfg,
			)

			if err := serverCfg.Validate(); err != nil {
				return err
			}

			sentryCfg.SetRelease(version)
			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			seed, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load seed file")
			}
			if seed != nil {
				if err := seed.Apply(ctx, repo, time.Now().UTC()); err != nil {
					return goerr.Wrap(err, "failed to apply seed file")
				}
				logger.Info("Seed file applied",
					"path", seedCfg.Path(),
					"users", len(seed.Users),
					"transactions", len(seed.Transactions),
					"alerts", len(seed.Alerts),
				)
			}

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logger.Warn("Running in no-auth mode (development only)")
			}

			scorer, err := scoringCfg.Configure(repo.Rule())
			if err != nil {
				return err
			}

			registry := realtime.NewRegistry(ctx,
				realtime.WithQueueSize(serverCfg.QueueSize()),
				realtime.WithSendTimeout(serverCfg.SendTimeout()),
			)
			defer registry.Close()
			router := realtime.NewRouter(registry)
			broadcaster := realtime.NewBroadcaster(registry)

			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
				usecase.WithPublisher(broadcaster),
				usecase.WithRiskScorer(scorer),
				usecase.WithAlertThreshold(scoringCfg.AlertThreshold()),
				usecase.WithStoreTimeout(serverCfg.StoreTimeout()),
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithCaseNotifier(notifier))
				logger.Info("Slack case notifications enabled")
			}

			verifier, err := evidenceCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if verifier != nil {
				defer safe.Close(ctx, verifier)
				ucOpts = append(ucOpts, usecase.WithEvidenceVerifier(verifier))
				logger.Info("Evidence verification enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			var directoryWorker *worker.DirectoryRefreshWorker
			if interval := seedCfg.RefreshInterval(); interval > 0 {
				directoryWorker = worker.NewDirectoryRefreshWorker(repo, &seedCfg, interval)
				if err := directoryWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start directory refresh worker")
				}
			}

			wsHandler := ws.New(registry, router,
				ws.WithAuth(authUC),
				ws.WithOriginPatterns(serverCfg.OriginPatterns()...),
			)

			server := &http.Server{
				Addr: serverCfg.Addr(),
				Handler: httpctrl.New(uc,
					httpctrl.WithWebSocket(wsHandler),
					httpctrl.WithConnectionCounter(registry),
					httpctrl.WithRateLimit(serverCfg.RateLimit(), httpctrl.DefaultRateWindow),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server", "addr", serverCfg.Addr())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down")

				if directoryWorker != nil {
					directoryWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				// live connections are not tracked by http.Server
				registry.Close()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := async.Wait(shutdownCtx); err != nil {
					logger.Warn("pending notifications dropped", "error", err.Error())
				}

				logger.Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
