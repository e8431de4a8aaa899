package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// DirectorySource lists the principals of the directory
type DirectorySource interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// DirectoryRefreshWorker periodically copies the principal directory from its
// source into the repository, so that role changes reach assignment checks
// and token role fallback without a restart.
//
// Users missing from the source are kept: the repository has no delete and
// cases keep referring to former assignees.
type DirectoryRefreshWorker struct {
	repo     interfaces.Repository
	source   DirectorySource
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDirectoryRefreshWorker creates a new worker for refreshing the directory
func NewDirectoryRefreshWorker(repo interfaces.Repository, source DirectorySource, interval time.Duration) *DirectoryRefreshWorker {
	return &DirectoryRefreshWorker{
		repo:     repo,
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop without blocking startup
func (w *DirectoryRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Directory refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *DirectoryRefreshWorker) Stop() {
	logging.Default().Info("Directory refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Directory refresh worker stopped")
}

func (w *DirectoryRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				logging.Default().Error("Directory refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Directory refresh worker context cancelled")
			return
		}
	}
}

// Refresh performs a single refresh cycle and returns the number of users
// written. Invalid entries are skipped.
func (w *DirectoryRefreshWorker) Refresh(ctx context.Context) (int, error) {
	startTime := time.Now()

	users, err := w.source.ListUsers(ctx)
	if err != nil {
		// the directory in the repository stays as it was
		return 0, goerr.Wrap(err, "failed to list users from directory source")
	}

	written := 0
	for _, u := range users {
		if err := u.Validate(); err != nil {
			logging.Default().Warn("Skipping invalid directory entry", "id", u.ID, "error", err.Error())
			continue
		}
		if err := w.repo.User().Put(ctx, u); err != nil {
			return written, goerr.Wrap(err, "failed to save user", goerr.V(model.PrincipalIDKey, u.ID))
		}
		written++
	}

	logging.Default().Debug("Directory refresh completed",
		"count", written,
		"duration", time.Since(startTime).String())

	return written, nil
}
