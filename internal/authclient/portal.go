package authclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Ayu-zh/placement-connector/internal/api/request"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
)

// ListJobs returns every job posting
func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	var list response.List[model.Job]
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", c.tokenFor(ctx), nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// CreateJob posts a job (admin)
func (c *Client) CreateJob(ctx context.Context, job model.Job) (*model.Job, error) {
	var created model.Job
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", c.tokenFor(ctx), job, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteJob removes a job posting (admin)
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/jobs/"+url.PathEscape(id), c.tokenFor(ctx), nil, nil)
}

// ListStudents returns every student (admin)
func (c *Client) ListStudents(ctx context.Context) ([]model.Identity, error) {
	var list response.List[model.Identity]
	if err := c.do(ctx, http.MethodGet, "/api/v1/students", c.tokenFor(ctx), nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// Register signs a student up. It does not sign them in.
func (c *Client) Register(ctx context.Context, req request.RegisterRequest) (*model.Identity, error) {
	var created model.Identity
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// AddStudent creates a student account (admin)
func (c *Client) AddStudent(ctx context.Context, req request.StudentRequest) (*model.Identity, error) {
	var created model.Identity
	if err := c.do(ctx, http.MethodPost, "/api/v1/students", c.tokenFor(ctx), req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ToggleVerification flips a student's verified flag (admin)
func (c *Client) ToggleVerification(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	var student model.Identity
	path := "/api/v1/students/" + url.PathEscape(string(id)) + "/verify"
	if err := c.do(ctx, http.MethodPost, path, c.tokenFor(ctx), nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// SearchTeammates finds teammate requests matching query
func (c *Client) SearchTeammates(ctx context.Context, query string) ([]model.TeammateRequest, error) {
	var list response.List[model.TeammateRequest]
	path := "/api/v1/teammates/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, c.tokenFor(ctx), nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// PostTeammate publishes a teammate request as the signed-in identity
func (c *Client) PostTeammate(ctx context.Context, req model.TeammateRequest) (*model.TeammateRequest, error) {
	var created model.TeammateRequest
	if err := c.do(ctx, http.MethodPost, "/api/v1/teammates", c.tokenFor(ctx), req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Stats returns the admin dashboard statistics
func (c *Client) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard/stats", c.tokenFor(ctx), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) (*response.Health, error) {
	var health response.Health
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", "", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
