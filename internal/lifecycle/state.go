// Package lifecycle provides the reconciliation helpers shared by the posting manager and the
// listing tracker: a locally cached collection with full-refresh semantics, request generation
// sequencing, display states and the local precondition errors.
package lifecycle

import "fmt"

// DisplayState is what a UI should render for a collection.
type DisplayState int

const (
	// StateIdle means nothing has been loaded yet.
	StateIdle DisplayState = iota
	// StateAwaitingIdentity means loading is deferred until the identity resolves.
	StateAwaitingIdentity
	// StateAuthRequired means the user is logged out and nothing will be fetched.
	StateAuthRequired
	// StateLoading means a refresh is in flight.
	StateLoading
	// StateFailed means the latest refresh failed. Previously loaded items are kept.
	StateFailed
	// StateEmpty means the latest refresh succeeded with zero items.
	StateEmpty
	// StatePopulated means the latest refresh succeeded with at least one item.
	StatePopulated
)

var displayStateNames = map[DisplayState]string{
	StateIdle:             "idle",
	StateAwaitingIdentity: "awaiting_identity",
	StateAuthRequired:     "auth_required",
	StateLoading:          "loading",
	StateFailed:           "failed",
	StateEmpty:            "empty",
	StatePopulated:        "populated",
}

func (s DisplayState) String() string {
	if name, ok := displayStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DisplayState(%d)", int(s))
}
