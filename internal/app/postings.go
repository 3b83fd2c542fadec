package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/postings"
	"github.com/KhushiMandaliya2/RoleCall/internal/render"
)

// PostingEdit holds the fields to change on update. Nil fields keep their current value.
type PostingEdit struct {
	Title       *string
	Description *string
}

// ListPostings prints every job posting.
func (a *App) ListPostings(ctx context.Context) error {
	err := a.postings.List(ctx)
	a.printer.Postings(a.postings.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to list job postings: %w", err)
	}
	return nil
}

// CreatePosting creates a job posting.
func (a *App) CreatePosting(ctx context.Context, title, description string) error {
	a.postings.CancelEdit()
	a.postings.SetDraft(title, description)

	saved, err := a.postings.Submit(ctx)
	if saved != nil {
		a.printer.Saved(saved, false)
	}
	return a.submitError(err)
}

// UpdatePosting changes the title and/or description of posting id.
func (a *App) UpdatePosting(ctx context.Context, id string, edit PostingEdit) error {
	if err := a.postings.List(ctx); err != nil {
		return fmt.Errorf("failed to load job postings: %w", err)
	}
	if err := a.postings.BeginEdit(id); err != nil {
		return fmt.Errorf("job posting %s not found: %w", id, err)
	}

	draft := a.postings.Session()
	title, description := draft.DraftTitle, draft.DraftDescription
	if edit.Title != nil {
		title = *edit.Title
	}
	if edit.Description != nil {
		description = *edit.Description
	}
	a.postings.SetDraft(title, description)

	saved, err := a.postings.Submit(ctx)
	if saved != nil {
		a.printer.Saved(saved, true)
	}
	return a.submitError(err)
}

func (a *App) submitError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postings.ErrRefreshAfterWrite):
		return fmt.Errorf("%s", render.Reason(err))
	case errors.Is(err, lifecycle.ErrInvalidDraft):
		return err
	default:
		return fmt.Errorf("failed to save job posting: %w", err)
	}
}

// DeletePosting deletes posting id after asking for confirmation. assumeYes skips the question.
func (a *App) DeletePosting(ctx context.Context, id string, assumeYes bool) error {
	if err := a.postings.List(ctx); err != nil {
		return fmt.Errorf("failed to load job postings: %w", err)
	}

	err := a.postings.Delete(ctx, id, func(prompt postings.DeletePrompt) bool {
		if assumeYes {
			return true
		}
		return a.confirm(fmt.Sprintf("%s\n  [%s] %s\n", prompt.Message, prompt.PostingID, prompt.Title))
	})
	switch {
	case err == nil:
		a.printer.Deleted(id)
		return nil
	case errors.Is(err, lifecycle.ErrNotConfirmed):
		_, _ = fmt.Fprintln(a.Out, "Delete cancelled.")
		return nil
	case errors.Is(err, lifecycle.ErrStaleReference):
		return fmt.Errorf("job posting %s not found: %w", id, err)
	default:
		return fmt.Errorf("failed to delete job posting %s: %w", id, err)
	}
}
