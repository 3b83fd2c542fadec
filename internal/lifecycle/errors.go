package lifecycle

import (
	"errors"
	"fmt"
)

// Local precondition failures. None of these involve a network round trip.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrStaleReference      = errors.New("stale reference")
	ErrAlreadyApplied      = errors.New("already applied")
	ErrApplyInFlight       = errors.New("application already in progress")
	ErrUnknownConfirmation = errors.New("unknown or already used confirmation")
	ErrNotConfirmed        = errors.New("action not confirmed")
	ErrInvalidDraft        = errors.New("invalid draft")
)

// ErrSuperseded reports a refresh whose result was dropped because the collection was reset
// while it was in flight and nothing newer has loaded since.
var ErrSuperseded = errors.New("refresh superseded")

var preconditions = []error{
	ErrUnauthenticated,
	ErrStaleReference,
	ErrAlreadyApplied,
	ErrApplyInFlight,
	ErrUnknownConfirmation,
	ErrNotConfirmed,
	ErrInvalidDraft,
}

// IsPrecondition reports whether err is a local precondition failure rather than a
// remote or transport failure.
func IsPrecondition(err error) bool {
	for _, target := range preconditions {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StaleReference returns an error for an id that is not in the local cache.
func StaleReference(kind, id string) error {
	return fmt.Errorf("%w: %s %q is not in the local cache", ErrStaleReference, kind, id)
}

// DuplicateIDError reports a list response that contains the same id more than once.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("response contains duplicate id %q", e.ID)
}

// CheckUniqueIDs returns a *DuplicateIDError for the first repeated id in items.
func CheckUniqueIDs[T any](items []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		k := id(item)
		if _, dup := seen[k]; dup {
			return &DuplicateIDError{ID: k}
		}
		seen[k] = struct{}{}
	}
	return nil
}
