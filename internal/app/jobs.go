package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KhushiMandaliya2/RoleCall/internal/identity"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

// loadJobs resolves the configured identity and loads the job feed for it. The tracker follows
// an identity source that starts out unknown, the same way a UI waits for sign-in to settle.
func (a *App) loadJobs(ctx context.Context) (identity.Identity, error) {
	src := identity.NewSource(identity.Unknown())
	stop := a.tracker.Follow(ctx, src)
	defer stop()

	id, err := a.Config.Identity()
	if err != nil {
		return id, fmt.Errorf("failed to resolve identity: %w", err)
	}
	src.Set(id)

	snap := a.tracker.Snapshot()
	switch snap.State {
	case lifecycle.StateAuthRequired:
		return id, lifecycle.ErrUnauthenticated
	case lifecycle.StateFailed:
		return id, fmt.Errorf("failed to load jobs: %w", snap.Err)
	}
	return id, nil
}

// ListJobs prints the job feed of the configured user.
func (a *App) ListJobs(ctx context.Context) error {
	id, err := a.loadJobs(ctx)
	a.printer.Jobs(a.tracker.Snapshot(), func(jobID string) bool {
		return a.tracker.CanApply(jobID, id)
	})
	return err
}

// ViewJob prints the details of one job.
func (a *App) ViewJob(ctx context.Context, jobID string) error {
	if _, err := a.loadJobs(ctx); err != nil && !errors.Is(err, lifecycle.ErrUnauthenticated) {
		a.Logger.Debug("job feed unavailable", slog.String("error", err.Error()))
	}

	job, err := a.tracker.Job(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	a.printer.Job(job)
	return nil
}

// Apply applies the configured user to jobID.
func (a *App) Apply(ctx context.Context, jobID string) error {
	id, err := a.loadJobs(ctx)
	if err != nil {
		return err
	}

	title := jobID
	for _, job := range a.tracker.Jobs() {
		if job.ID == jobID {
			title = job.Title
			if !job.HasApplied && job.OwnedBy(userID(id)) {
				return fmt.Errorf("job %s is your own posting", jobID)
			}
		}
	}

	result, err := a.tracker.Apply(ctx, jobID, id)
	if err != nil {
		return fmt.Errorf("could not apply to job %s: %w", jobID, err)
	}
	a.printer.Applied(result, title)
	return nil
}

// Jobs returns the job feed as last loaded.
func (a *App) Jobs() []types.JobListing {
	return a.tracker.Jobs()
}

func userID(id identity.Identity) string {
	u, _ := id.UserID()
	return u
}
