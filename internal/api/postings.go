package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/schemas"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

const postingsPath = "/api/v1/job_postings/"

// Operation names used in errors, logs and metrics.
const (
	OpListPostings  = "list_postings"
	OpCreatePosting = "create_posting"
	OpUpdatePosting = "update_posting"
	OpDeletePosting = "delete_posting"
	OpListJobs      = "list_jobs"
	OpGetJob        = "get_job"
	OpApply         = "apply"
)

func postingPath(id string) string {
	return "/api/v1/job_postings/" + url.PathEscape(id)
}

// ListPostings fetches every posting.
func (c *Client) ListPostings(ctx context.Context) ([]types.JobPosting, error) {
	var postings []types.JobPosting
	err := c.do(ctx, call{
		op:     OpListPostings,
		method: http.MethodGet,
		path:   postingsPath,
		schema: schemas.PostingList,
		out:    &postings,
	})
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckUniqueIDs(postings, func(p types.JobPosting) string { return p.ID }); err != nil {
		return nil, c.malformed(OpListPostings, http.MethodGet, postingsPath, err)
	}
	if postings == nil {
		postings = []types.JobPosting{}
	}
	return postings, nil
}

// CreatePosting creates a posting and returns it with its server-assigned ID.
func (c *Client) CreatePosting(ctx context.Context, in types.PostingInput) (*types.JobPosting, error) {
	var created types.JobPosting
	err := c.do(ctx, call{
		op:     OpCreatePosting,
		method: http.MethodPost,
		path:   postingsPath,
		body:   in,
		schema: schemas.Posting,
		out:    &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePosting replaces the title and description of posting id.
func (c *Client) UpdatePosting(ctx context.Context, id string, in types.PostingInput) (*types.JobPosting, error) {
	var updated types.JobPosting
	err := c.do(ctx, call{
		op:     OpUpdatePosting,
		method: http.MethodPut,
		path:   postingPath(id),
		body:   in,
		schema: schemas.Posting,
		out:    &updated,
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePosting deletes posting id. Any 2xx response counts as success.
func (c *Client) DeletePosting(ctx context.Context, id string) error {
	return c.do(ctx, call{
		op:         OpDeletePosting,
		method:     http.MethodDelete,
		path:       postingPath(id),
		allowEmpty: true,
	})
}

func (c *Client) malformed(op, method, path string, cause error) error {
	c.logger.Warn("remote call returned a malformed response",
		slog.String("op", op),
		slog.String("error", cause.Error()),
	)
	return &Error{
		Op:     op,
		Method: method,
		Path:   path,
		Err:    cause,
	}
}
