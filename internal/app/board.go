package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/KhushiMandaliya2/RoleCall/internal/identity"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
)

// Board loads the posting list and the job feed concurrently and prints both. A logged-out user
// still sees the postings.
func (a *App) Board(ctx context.Context) error {
	var g errgroup.Group
	id := identity.Unknown()

	g.Go(func() error {
		if err := a.postings.List(ctx); err != nil {
			return fmt.Errorf("failed to list job postings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		resolved, err := a.loadJobs(ctx)
		id = resolved
		if errors.Is(err, lifecycle.ErrUnauthenticated) {
			return nil
		}
		return err
	})
	err := g.Wait()

	a.printer.Postings(a.postings.Snapshot())
	a.printer.Jobs(a.tracker.Snapshot(), func(jobID string) bool {
		return a.tracker.CanApply(jobID, id)
	})
	return err
}
