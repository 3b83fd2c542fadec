// Package postings implements the recruiter-side posting manager: a locally cached list of job
// postings kept in sync with the remote API, plus the single edit session that turns the create
// form into an update form.
package postings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/logging"
	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

// collectionName labels logs and metrics for this collection.
const collectionName = "postings"

// ConfirmDeleteMessage is the question shown before a posting is deleted.
const ConfirmDeleteMessage = "Are you sure you want to delete this job posting?"

// ErrRefreshAfterWrite is returned by Submit when the write succeeded but the refresh that
// follows it failed. The local cache then still shows the state before the write.
var ErrRefreshAfterWrite = errors.New("saved, but refreshing postings failed")

// Remote is the part of the job board API used by the manager.
type Remote interface {
	ListPostings(ctx context.Context) ([]types.JobPosting, error)
	CreatePosting(ctx context.Context, in types.PostingInput) (*types.JobPosting, error)
	UpdatePosting(ctx context.Context, id string, in types.PostingInput) (*types.JobPosting, error)
	DeletePosting(ctx context.Context, id string) error
}

// EditSession is the state of the posting form. An empty EditingID means create mode.
type EditSession struct {
	EditingID        string
	DraftTitle       string
	DraftDescription string
}

// Editing reports whether the form updates an existing posting.
func (s EditSession) Editing() bool {
	return s.EditingID != ""
}

// DeletePrompt describes a pending delete that waits for the user's answer.
type DeletePrompt struct {
	Token     string
	PostingID string
	Title     string
	Message   string
}

// Snapshot is a consistent view of the manager for rendering.
type Snapshot struct {
	State    lifecycle.DisplayState
	Postings []types.JobPosting
	Err      error
	Session  EditSession
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(m *Manager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// Manager owns the local posting cache and the edit session. It is safe for concurrent use;
// no lock is held while a request is outstanding.
type Manager struct {
	remote   Remote
	postings *lifecycle.Collection[types.JobPosting]
	logger   *slog.Logger
	metrics  metrics.Recorder

	mu      sync.Mutex
	session EditSession
	pending map[string]string // confirmation token -> posting id
}

// New creates a manager with an empty, never-loaded cache in create mode.
func New(remote Remote, opts ...Option) *Manager {
	m := &Manager{
		remote:   remote,
		postings: lifecycle.NewCollection[types.JobPosting](),
		logger:   logging.Discard(),
		metrics:  metrics.Nop{},
		pending:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List reads every posting and replaces the local cache with the result. On failure the cache
// is kept and the error is returned.
func (m *Manager) List(ctx context.Context) error {
	gen := m.postings.BeginRefresh()
	items, err := m.remote.ListPostings(ctx)
	if !m.postings.Settle(gen, items, err) {
		m.logger.Debug("discarded stale refresh",
			slog.String("collection", collectionName),
			slog.Uint64("generation", uint64(gen)),
		)
		m.metrics.RefreshDiscarded(collectionName)
		return err
	}
	if err != nil {
		return err
	}

	m.logger.Debug("refresh applied",
		slog.String("collection", collectionName),
		slog.Uint64("generation", uint64(gen)),
		slog.Int("count", len(items)),
	)
	return nil
}

// BeginEdit switches the form to update mode for posting id and fills the draft from the
// cached posting.
func (m *Manager) BeginEdit(id string) error {
	p, ok := m.find(id)
	if !ok {
		return lifecycle.StaleReference("posting", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = EditSession{
		EditingID:        p.ID,
		DraftTitle:       p.Title,
		DraftDescription: p.Description,
	}
	return nil
}

// SetDraft replaces the draft fields.
func (m *Manager) SetDraft(title, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.DraftTitle = title
	m.session.DraftDescription = description
}

// CancelEdit returns the form to create mode with an empty draft.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = EditSession{}
}

// Submit creates a posting from the draft, or updates the posting being edited. The cache is
// never changed from the draft itself: a successful write is followed by a full refresh.
//
// On failure the session is kept so the draft can be resubmitted. If the write succeeded and
// only the refresh failed, the saved posting is returned along with an error wrapping
// ErrRefreshAfterWrite.
func (m *Manager) Submit(ctx context.Context) (*types.JobPosting, error) {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	in := types.NewPostingInput(session.DraftTitle, session.DraftDescription)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: title is required", lifecycle.ErrInvalidDraft)
	}

	var (
		saved *types.JobPosting
		err   error
	)
	if session.Editing() {
		saved, err = m.remote.UpdatePosting(ctx, session.EditingID, in)
	} else {
		saved, err = m.remote.CreatePosting(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.session.EditingID == session.EditingID {
		m.session = EditSession{}
	}
	m.mu.Unlock()

	m.logger.Info("posting saved",
		slog.String("id", saved.ID),
		slog.Bool("update", session.Editing()),
	)

	if err := m.List(ctx); err != nil {
		return saved, fmt.Errorf("%w: %w", ErrRefreshAfterWrite, err)
	}
	return saved, nil
}

// RequestDelete starts the delete of posting id. Nothing is sent until the returned prompt is
// confirmed with ConfirmDelete.
func (m *Manager) RequestDelete(id string) (DeletePrompt, error) {
	p, ok := m.find(id)
	if !ok {
		return DeletePrompt{}, lifecycle.StaleReference("posting", id)
	}

	prompt := DeletePrompt{
		Token:     uuid.NewString(),
		PostingID: p.ID,
		Title:     p.Title,
		Message:   ConfirmDeleteMessage,
	}

	m.mu.Lock()
	m.pending[prompt.Token] = p.ID
	m.mu.Unlock()

	return prompt, nil
}

// DismissDelete abandons a pending delete. Unknown tokens are ignored.
func (m *Manager) DismissDelete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, token)
}

// ConfirmDelete deletes the posting a prompt was issued for. The token is consumed whatever
// the outcome. On success the posting is removed from the cache immediately; on failure the
// cache is left as it was.
func (m *Manager) ConfirmDelete(ctx context.Context, token string) error {
	m.mu.Lock()
	id, ok := m.pending[token]
	delete(m.pending, token)
	m.mu.Unlock()
	if !ok {
		return lifecycle.ErrUnknownConfirmation
	}

	if err := m.remote.DeletePosting(ctx, id); err != nil {
		return err
	}

	gen := m.postings.Mutate(func(items []types.JobPosting) []types.JobPosting {
		out := items[:0]
		for _, p := range items {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out
	})
	m.metrics.OptimisticMutation("delete")

	m.mu.Lock()
	if m.session.EditingID == id {
		m.session = EditSession{}
	}
	for t, pid := range m.pending {
		if pid == id {
			delete(m.pending, t)
		}
	}
	m.mu.Unlock()

	m.logger.Info("posting deleted",
		slog.String("id", id),
		slog.Uint64("generation", uint64(gen)),
	)
	return nil
}

// Delete asks confirm and deletes posting id when it answers yes. A no answer returns
// lifecycle.ErrNotConfirmed without contacting the server.
func (m *Manager) Delete(ctx context.Context, id string, confirm func(DeletePrompt) bool) error {
	prompt, err := m.RequestDelete(id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(prompt) {
		m.DismissDelete(prompt.Token)
		return lifecycle.ErrNotConfirmed
	}
	return m.ConfirmDelete(ctx, prompt.Token)
}

// Postings returns a copy of the cached postings.
func (m *Manager) Postings() []types.JobPosting {
	return m.postings.Items()
}

// Session returns the current edit session.
func (m *Manager) Session() EditSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// State returns the display state of the posting list.
func (m *Manager) State() lifecycle.DisplayState {
	return m.postings.State()
}

// Snapshot returns the display state, postings, last error and session.
func (m *Manager) Snapshot() Snapshot {
	snap := m.postings.Snapshot()
	return Snapshot{
		State:    snap.State,
		Postings: snap.Items,
		Err:      snap.Err,
		Session:  m.Session(),
	}
}

func (m *Manager) find(id string) (types.JobPosting, bool) {
	return m.postings.Find(func(p types.JobPosting) bool { return p.ID == id })
}
