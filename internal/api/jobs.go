package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/schemas"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

const jobsPath = "/api/v1/jobs/"

func jobPath(id string) string {
	return "/api/v1/jobs/" + url.PathEscape(id)
}

// ListJobs fetches the candidate job feed with has_applied computed for userID.
func (c *Client) ListJobs(ctx context.Context, userID string) ([]types.JobListing, error) {
	var jobs []types.JobListing
	err := c.do(ctx, call{
		op:     OpListJobs,
		method: http.MethodGet,
		path:   jobsPath,
		query:  url.Values{"user_id": {userID}},
		schema: schemas.ListingList,
		out:    &jobs,
	})
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckUniqueIDs(jobs, func(j types.JobListing) string { return j.ID }); err != nil {
		return nil, c.malformed(OpListJobs, http.MethodGet, jobsPath, err)
	}
	if jobs == nil {
		jobs = []types.JobListing{}
	}
	return jobs, nil
}

// GetJob fetches the details of one job.
func (c *Client) GetJob(ctx context.Context, id string) (*types.JobListing, error) {
	var job types.JobListing
	err := c.do(ctx, call{
		op:     OpGetJob,
		method: http.MethodGet,
		path:   jobPath(id),
		schema: schemas.Listing,
		out:    &job,
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Apply submits an application of userID to job id.
func (c *Client) Apply(ctx context.Context, id, userID string) (*types.ApplyResult, error) {
	var result types.ApplyResult
	err := c.do(ctx, call{
		op:         OpApply,
		method:     http.MethodPost,
		path:       jobPath(id) + "/apply",
		query:      url.Values{"user_id": {userID}},
		schema:     schemas.ApplyResult,
		out:        &result,
		allowEmpty: true,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
