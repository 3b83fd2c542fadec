package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushiMandaliya2/RoleCall/internal/apitest"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

func newTestClient(t *testing.T, baseURL string, opts *Options) *Client {
	t.Helper()
	c, err := New(baseURL, opts)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("not a url", nil)
	assert.Error(t, err)

	_, err = New("/relative", nil)
	assert.Error(t, err)
}

func TestListPostings_Success(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Seed("Engineer", "Build things")
	srv.Seed("Designer", "Draw things")

	c := newTestClient(t, srv.URL, nil)
	postings, err := c.ListPostings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.JobPosting{
		{ID: "1", Title: "Engineer", Description: "Build things"},
		{ID: "2", Title: "Designer", Description: "Draw things"},
	}, postings)
}

func TestListPostings_EmptyIsNotNil(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/", nil)
	postings, err := c.ListPostings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, postings)
	assert.Empty(t, postings)
}

func TestCreateUpdateDeletePosting(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	created, err := c.CreatePosting(ctx, types.PostingInput{Title: "Engineer", Description: "Build things"})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	updated, err := c.UpdatePosting(ctx, created.ID, types.PostingInput{Title: "Senior Engineer", Description: "Build things"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", updated.Title)

	require.NoError(t, c.DeletePosting(ctx, created.ID))
	assert.Empty(t, srv.Postings())

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "/api/v1/job_postings/", reqs[0].Path)
	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Equal(t, "/api/v1/job_postings/1", reqs[1].Path)
	assert.Equal(t, http.MethodDelete, reqs[2].Method)
}

func TestDeletePosting_EmptyBody(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Seed("Engineer", "")
	srv.OverrideNext(apitest.RouteDeletePosting, apitest.Override{Status: http.StatusNoContent})

	c := newTestClient(t, srv.URL, nil)
	assert.NoError(t, c.DeletePosting(context.Background(), "1"))
}

func TestUpdatePosting_NotFound(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.UpdatePosting(context.Background(), "404", types.PostingInput{Title: "x"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Job posting not found", apiErr.Reason())
	assert.Equal(t, OpUpdatePosting, apiErr.Op)
	assert.True(t, IsRejected(err))
	assert.False(t, IsTransport(err))
}

func TestListJobs_ScopedByUser(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	p := srv.SeedOwned("Engineer", "Build things", "recruiter")
	srv.MarkApplied(p.ID, "u1")

	c := newTestClient(t, srv.URL, nil)
	jobs, err := c.ListJobs(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].HasApplied)
	assert.True(t, jobs[0].OwnedBy("recruiter"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "u1", reqs[0].UserID)
	assert.Equal(t, "/api/v1/jobs/", reqs[0].Path)
}

func TestGetJob(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Seed("Engineer", "Build things")

	c := newTestClient(t, srv.URL, nil)
	job, err := c.GetJob(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", job.Title)

	_, err = c.GetJob(context.Background(), "9")
	assert.Equal(t, "Job not found", Reason(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestApply_SuccessAndDetail(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	p := srv.Seed("Engineer", "")

	c := newTestClient(t, srv.URL, nil)
	result, err := c.Apply(context.Background(), p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", result.JobTitle)
	assert.True(t, srv.Applied(p.ID, "u1"))

	reqs := srv.Requests()
	assert.Equal(t, "/api/v1/jobs/1/apply", reqs[0].Path)
	assert.Equal(t, "u1", reqs[0].UserID)

	srv.CloseJob(p.ID, "already closed")
	_, err = c.Apply(context.Background(), p.ID, "u2")
	require.Error(t, err)
	assert.Equal(t, "already closed", Reason(err))
	assert.Equal(t, "apply: already closed", err.Error())
}

func TestApply_EmptyBodyAccepted(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Seed("Engineer", "")
	srv.OverrideNext(apitest.RouteApply, apitest.Override{Status: http.StatusCreated})

	c := newTestClient(t, srv.URL, nil)
	result, err := c.Apply(context.Background(), "1", "u1")
	require.NoError(t, err)
	assert.Empty(t, result.Message)
}

func TestRejected_WithoutDetail(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.FailNext(apitest.RouteListPostings, http.StatusInternalServerError, "")

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ListPostings(context.Background())
	assert.Equal(t, "HTTP 500 Internal Server Error", Reason(err))
}

func TestRejected_FastAPIValidationDetail(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.OverrideNext(apitest.RouteCreatePosting, apitest.Override{
		Status: http.StatusUnprocessableEntity,
		Body:   `{"detail":[{"loc":["body","title"],"msg":"field required"},{"loc":["body","x"],"msg":"extra field"}]}`,
	})

	c := newTestClient(t, srv.URL, nil)
	_, err := c.CreatePosting(context.Background(), types.PostingInput{Title: "x"})
	assert.Equal(t, "field required; extra field", Reason(err))
}

func TestTransport_ConnectionDropped(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.OverrideNext(apitest.RouteListJobs, apitest.Override{Drop: true})

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ListJobs(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, nil)
	_, err := c.ListPostings(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestTransport_MalformedJSON(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.OverrideNext(apitest.RouteListPostings, apitest.Override{Body: `[{"id":`})

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ListPostings(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "malformed response")
}

func TestTransport_SchemaMismatch(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.OverrideNext(apitest.RouteListPostings, apitest.Override{Body: `[{"title":"no id"}]`})

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ListPostings(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestTransport_DuplicateIDs(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.OverrideNext(apitest.RouteListJobs, apitest.Override{
		Body: `[{"id":"j1","title":"a","has_applied":false},{"id":"j1","title":"b","has_applied":false}]`,
	})

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ListJobs(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	var dup *lifecycle.DuplicateIDError
	assert.ErrorAs(t, err, &dup)
}

func TestTimeout(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	_, release := srv.Hold(apitest.RouteListPostings)
	defer release()

	c := newTestClient(t, srv.URL, &Options{Timeout: 50 * time.Millisecond})
	_, err := c.ListPostings(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHeaders(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c := newTestClient(t, srv.URL, &Options{Token: "tok"})
	_, err := c.ListPostings(context.Background())
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer tok", reqs[0].Auth)
	assert.Len(t, reqs[0].RequestID, 36)
}

func TestPathEscaping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	require.NoError(t, c.DeletePosting(context.Background(), "a/b c"))
	assert.Equal(t, "/api/v1/job_postings/a%2Fb%20c", gotPath)
}

func TestMetricsRecorded(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.FailNext(apitest.RouteApply, http.StatusBadRequest, "already closed")

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	c := newTestClient(t, srv.URL, &Options{Metrics: collector})

	_, _ = c.ListPostings(context.Background())
	_, _ = c.Apply(context.Background(), "1", "u1")

	n, err := testutil.GatherAndCount(reg, "rolecall_remote_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRateLimitedClient(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c := newTestClient(t, srv.URL, &Options{RequestsPerSecond: 1000})
	for i := 0; i < 3; i++ {
		_, err := c.ListPostings(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, srv.Count(apitest.RouteListPostings))
}

func TestRateLimitedClient_CancelledWhileWaiting(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c := newTestClient(t, srv.URL, &Options{RequestsPerSecond: 0.001})
	_, err := c.ListPostings(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ListPostings(ctx)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, 1, srv.Count(apitest.RouteListPostings))
}
