package listings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushiMandaliya2/RoleCall/internal/api"
	"github.com/KhushiMandaliya2/RoleCall/internal/apitest"
	"github.com/KhushiMandaliya2/RoleCall/internal/identity"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
)

func newAPITracker(t *testing.T) (*Tracker, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, nil)
	require.NoError(t, err)
	return New(client), srv
}

func TestTracker_OverHTTP_ApplyRejectedThenRetried(t *testing.T) {
	tr, srv := newAPITracker(t)
	job := srv.Seed("Engineer", "Build things")
	ctx := context.Background()

	require.NoError(t, tr.LoadJobs(ctx, userA))
	require.False(t, tr.Jobs()[0].HasApplied)

	srv.CloseJob(job.ID, "already closed")
	_, err := tr.Apply(ctx, job.ID, userA)
	require.Error(t, err)
	assert.Equal(t, "already closed", api.Reason(err))
	assert.False(t, tr.Jobs()[0].HasApplied)
	assert.True(t, tr.CanApply(job.ID, userA))
	assert.False(t, srv.Applied(job.ID, "userA"))
}

func TestTracker_OverHTTP_ApplyOnce(t *testing.T) {
	tr, srv := newAPITracker(t)
	job := srv.Seed("Engineer", "")
	ctx := context.Background()
	require.NoError(t, tr.LoadJobs(ctx, userA))

	result, err := tr.Apply(ctx, job.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", result.JobTitle)
	assert.True(t, tr.Jobs()[0].HasApplied)

	_, err = tr.Apply(ctx, job.ID, userA)
	require.ErrorIs(t, err, lifecycle.ErrAlreadyApplied)
	assert.Equal(t, 1, srv.Count(apitest.RouteApply))

	require.NoError(t, tr.LoadJobs(ctx, userA))
	assert.True(t, tr.Jobs()[0].HasApplied)
}

func TestTracker_OverHTTP_IdentityResolution(t *testing.T) {
	tr, srv := newAPITracker(t)
	srv.Seed("Engineer", "")
	src := identity.NewSource(identity.Unknown())

	stop := tr.Follow(context.Background(), src)
	defer stop()
	assert.Equal(t, 0, srv.Count(apitest.RouteListJobs))

	src.Set(identity.Present("u1"))
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, apitest.RouteListJobs, reqs[0].Route)
	assert.Equal(t, "u1", reqs[0].UserID)
}

func TestTracker_OverHTTP_NoneNeverCallsServer(t *testing.T) {
	tr, srv := newAPITracker(t)
	srv.Seed("Engineer", "")

	require.ErrorIs(t, tr.LoadJobs(context.Background(), identity.None()), lifecycle.ErrUnauthenticated)
	_, err := tr.Apply(context.Background(), "1", identity.None())
	require.ErrorIs(t, err, lifecycle.ErrUnauthenticated)
	assert.Empty(t, srv.Requests())
}
