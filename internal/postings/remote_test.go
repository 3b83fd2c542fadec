package postings

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushiMandaliya2/RoleCall/internal/api"
	"github.com/KhushiMandaliya2/RoleCall/internal/apitest"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

func newAPIManager(t *testing.T) (*Manager, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, nil)
	require.NoError(t, err)
	return New(client), srv
}

func TestManager_OverHTTP_EditScenario(t *testing.T) {
	m, srv := newAPIManager(t)
	srv.Seed("Engineer", "Build things")
	ctx := context.Background()

	require.NoError(t, m.List(ctx))
	require.NoError(t, m.BeginEdit("1"))
	assert.Equal(t, "Engineer", m.Session().DraftTitle)
	assert.Equal(t, "Build things", m.Session().DraftDescription)

	m.SetDraft("Senior Engineer", m.Session().DraftDescription)
	_, err := m.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, m.Session().Editing())

	require.NoError(t, m.List(ctx))
	assert.Equal(t, []types.JobPosting{{ID: "1", Title: "Senior Engineer", Description: "Build things"}}, m.Postings())
}

func TestManager_OverHTTP_UpdateRejected(t *testing.T) {
	m, srv := newAPIManager(t)
	srv.Seed("Engineer", "Build things")
	ctx := context.Background()

	require.NoError(t, m.List(ctx))
	require.NoError(t, m.BeginEdit("1"))
	m.SetDraft("Senior Engineer", "Build things")
	srv.FailNext(apitest.RouteUpdatePosting, http.StatusNotFound, "Job posting not found")

	_, err := m.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Job posting not found", api.Reason(err))
	assert.True(t, api.IsRejected(err))
	assert.Equal(t, "1", m.Session().EditingID)
	assert.Equal(t, "Engineer", srv.Postings()[0].Title)
}

func TestManager_OverHTTP_DeleteUnconfirmedSendsNothing(t *testing.T) {
	m, srv := newAPIManager(t)
	srv.Seed("Engineer", "Build things")
	ctx := context.Background()
	require.NoError(t, m.List(ctx))

	err := m.Delete(ctx, "1", func(DeletePrompt) bool { return false })
	require.ErrorIs(t, err, lifecycle.ErrNotConfirmed)
	assert.Equal(t, 0, srv.Count(apitest.RouteDeletePosting))

	require.NoError(t, m.Delete(ctx, "1", func(DeletePrompt) bool { return true }))
	assert.Empty(t, m.Postings())
	assert.Empty(t, srv.Postings())
}

func TestManager_OverHTTP_ListTransportFailure(t *testing.T) {
	m, srv := newAPIManager(t)
	srv.Seed("Engineer", "Build things")
	ctx := context.Background()
	require.NoError(t, m.List(ctx))

	srv.OverrideNext(apitest.RouteListPostings, apitest.Override{Drop: true})
	err := m.List(ctx)
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.Equal(t, lifecycle.StateFailed, m.State())
	assert.Len(t, m.Postings(), 1)
}
