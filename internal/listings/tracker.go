// Package listings implements the candidate-side job feed: an identity-gated, locally cached
// list of job listings and the apply action with its one-application-per-user gate.
//
// The per-user "applied" flag is kept as a set of (job, user) facts next to the raw cache. The
// raw cache always mirrors the last list response; the view handed to callers is the response
// with the facts of the current user folded in, so a successful apply shows immediately and never
// flips back within a session.
package listings

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/KhushiMandaliya2/RoleCall/internal/identity"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/logging"
	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

const collectionName = "jobs"

// Remote is the part of the job board API used by the tracker.
type Remote interface {
	ListJobs(ctx context.Context, userID string) ([]types.JobListing, error)
	GetJob(ctx context.Context, id string) (*types.JobListing, error)
	Apply(ctx context.Context, jobID, userID string) (*types.ApplyResult, error)
}

// Snapshot is a consistent view of the tracker for rendering.
type Snapshot struct {
	State    lifecycle.DisplayState
	Identity identity.Identity
	Jobs     []types.JobListing
	Err      error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(t *Tracker) {
		if recorder != nil {
			t.metrics = recorder
		}
	}
}

type applyKey struct {
	jobID  string
	userID string
}

// Tracker owns the candidate job feed. It is safe for concurrent use.
type Tracker struct {
	remote  Remote
	jobs    *lifecycle.Collection[types.JobListing]
	logger  *slog.Logger
	metrics metrics.Recorder

	mu       sync.Mutex
	identity identity.Identity
	user     string // user the cache is scoped to
	applied  map[applyKey]bool
	inflight map[applyKey]bool
}

// New creates a tracker that waits for an identity before loading anything.
func New(remote Remote, opts ...Option) *Tracker {
	t := &Tracker{
		remote:   remote,
		jobs:     lifecycle.NewCollection[types.JobListing](),
		logger:   logging.Discard(),
		metrics:  metrics.Nop{},
		identity: identity.Unknown(),
		applied:  make(map[applyKey]bool),
		inflight: make(map[applyKey]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LoadJobs loads the job feed for id.
//
// An unknown identity defers: nothing is fetched and nil is returned. A logged-out identity
// clears the feed and returns lifecycle.ErrUnauthenticated without a request. A present identity
// replaces the cache with the feed scoped to that user, or records the failure and keeps the
// cache. Jobs the response marks as applied stay applied for that user even if a later response
// disagrees. When the response is dropped because the feed was reset in the meantime and nothing
// newer has loaded, lifecycle.ErrSuperseded is returned.
func (t *Tracker) LoadJobs(ctx context.Context, id identity.Identity) error {
	t.mu.Lock()
	t.identity = id

	switch id.Kind() {
	case identity.KindUnknown:
		t.mu.Unlock()
		t.logger.Debug("job feed deferred until identity resolves")
		return nil

	case identity.KindNone:
		t.forgetLocked()
		t.mu.Unlock()
		return lifecycle.ErrUnauthenticated
	}

	userID, _ := id.UserID()
	if t.user != userID {
		if t.user != "" {
			t.logger.Info("identity changed, dropping job feed",
				slog.String("from", t.user),
				slog.String("to", userID),
			)
		}
		t.forgetLocked()
		t.user = userID
	}
	gen := t.jobs.BeginRefresh()
	t.mu.Unlock()

	items, err := t.remote.ListJobs(ctx, userID)

	t.mu.Lock()
	applied := t.jobs.Settle(gen, items, err)
	if applied && err == nil && t.user == userID {
		for _, job := range items {
			if job.HasApplied {
				t.applied[applyKey{jobID: job.ID, userID: userID}] = true
			}
		}
	}
	loaded := t.jobs.Loaded()
	t.mu.Unlock()

	if !applied {
		t.logger.Debug("discarded stale refresh",
			slog.String("collection", collectionName),
			slog.Uint64("generation", uint64(gen)),
		)
		t.metrics.RefreshDiscarded(collectionName)
		if err == nil && !loaded {
			return lifecycle.ErrSuperseded
		}
		return err
	}
	if err != nil {
		return err
	}

	t.logger.Debug("refresh applied",
		slog.String("collection", collectionName),
		slog.String("user_id", userID),
		slog.Uint64("generation", uint64(gen)),
		slog.Int("count", len(items)),
	)
	return nil
}

// forgetLocked drops the cache and every fact of the previous user.
func (t *Tracker) forgetLocked() {
	t.jobs.Reset()
	for k := range t.applied {
		if k.userID == t.user {
			delete(t.applied, k)
		}
	}
	t.user = ""
}

// Follow loads the feed for p's current identity and again every time it changes. Loads run
// on the goroutine that announces the change. Announcing the identity already followed does
// nothing. The returned function stops following.
func (t *Tracker) Follow(ctx context.Context, p identity.Provider) (stop func()) {
	var (
		mu      sync.Mutex
		last    identity.Identity
		seen    bool
		stopped bool
	)
	handle := func(id identity.Identity) {
		mu.Lock()
		if stopped || (seen && id == last) || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		last, seen = id, true
		mu.Unlock()

		err := t.LoadJobs(ctx, id)
		if errors.Is(err, lifecycle.ErrSuperseded) {
			t.logger.Debug("job feed load superseded", slog.String("identity", id.String()))
			return
		}
		if err != nil && !lifecycle.IsPrecondition(err) {
			t.logger.Warn("failed to load job feed",
				slog.String("identity", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	unsubscribe := p.Subscribe(handle)
	handle(p.Current())

	return func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		unsubscribe()
	}
}

// Apply submits an application of id's user to jobID.
//
// The local gate runs first and rejects, without a request, in this order: a missing identity,
// a job that is not in the feed, a job already applied to, and an application to the same job
// that is still in flight. On success the job shows as applied at once. On failure nothing
// changes locally and the error carries the server's reason.
func (t *Tracker) Apply(ctx context.Context, jobID string, id identity.Identity) (*types.ApplyResult, error) {
	t.mu.Lock()
	if err := t.gateLocked(jobID, id); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	userID, _ := id.UserID()
	key := applyKey{jobID: jobID, userID: userID}
	t.inflight[key] = true
	t.mu.Unlock()

	result, err := t.remote.Apply(ctx, jobID, userID)

	t.mu.Lock()
	delete(t.inflight, key)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.applied[key] = true
	if t.user != userID {
		// The feed now belongs to another user and its refresh must not be discarded.
		t.mu.Unlock()
		t.logger.Info("applied to job after identity changed",
			slog.String("job_id", jobID),
			slog.String("user_id", userID),
		)
		return result, nil
	}
	gen := t.jobs.Invalidate()
	t.mu.Unlock()

	t.metrics.OptimisticMutation("apply")
	t.logger.Info("applied to job",
		slog.String("job_id", jobID),
		slog.String("user_id", userID),
		slog.Uint64("generation", uint64(gen)),
	)
	return result, nil
}

func (t *Tracker) gateLocked(jobID string, id identity.Identity) error {
	userID, ok := id.UserID()
	if !ok {
		return lifecycle.ErrUnauthenticated
	}
	job, ok := t.jobs.Find(func(j types.JobListing) bool { return j.ID == jobID })
	if !ok {
		return lifecycle.StaleReference("job", jobID)
	}
	if t.hasAppliedLocked(job, userID) {
		return lifecycle.ErrAlreadyApplied
	}
	if t.inflight[applyKey{jobID: jobID, userID: userID}] {
		return lifecycle.ErrApplyInFlight
	}
	return nil
}

// hasAppliedLocked reports the applied flag of job for userID. The response flag only counts
// when the cache was loaded for that user.
func (t *Tracker) hasAppliedLocked(job types.JobListing, userID string) bool {
	return (job.HasApplied && t.user == userID) || t.applied[applyKey{jobID: job.ID, userID: userID}]
}

// CanApply reports whether the apply control for jobID should be enabled for id. Listings the
// user owns are suppressed as well.
func (t *Tracker) CanApply(jobID string, id identity.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gateLocked(jobID, id) != nil {
		return false
	}
	userID, _ := id.UserID()
	job, _ := t.jobs.Find(func(j types.JobListing) bool { return j.ID == jobID })
	return !job.OwnedBy(userID)
}

// Job fetches the details of one job with the applied flag of the current user folded in. The
// feed cache is not touched.
func (t *Tracker) Job(ctx context.Context, jobID string) (*types.JobListing, error) {
	job, err := t.remote.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.user != "" {
		if cached, ok := t.jobs.Find(func(j types.JobListing) bool { return j.ID == jobID }); ok {
			job.HasApplied = job.HasApplied || t.hasAppliedLocked(cached, t.user)
		}
		job.HasApplied = job.HasApplied || t.applied[applyKey{jobID: jobID, userID: t.user}]
	}
	return job, nil
}

// Jobs returns the job feed as shown to the current user.
func (t *Tracker) Jobs() []types.JobListing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(t.jobs.Items())
}

func (t *Tracker) viewLocked(items []types.JobListing) []types.JobListing {
	for i := range items {
		items[i].HasApplied = t.hasAppliedLocked(items[i], t.user)
	}
	return items
}

// Identity returns the identity of the latest load.
func (t *Tracker) Identity() identity.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.identity
}

// State returns the display state of the feed.
func (t *Tracker) State() lifecycle.DisplayState {
	return t.Snapshot().State
}

// Snapshot returns the display state, identity, feed and last error.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.jobs.Snapshot()
	out := Snapshot{
		State:    snap.State,
		Identity: t.identity,
		Jobs:     t.viewLocked(snap.Items),
		Err:      snap.Err,
	}
	switch t.identity.Kind() {
	case identity.KindUnknown:
		if !t.jobs.Loaded() && snap.State != lifecycle.StateLoading {
			out.State = lifecycle.StateAwaitingIdentity
		}
	case identity.KindNone:
		out.State = lifecycle.StateAuthRequired
	}
	return out
}
