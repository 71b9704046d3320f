package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// ProjectsClient implements autotask.ProjectsClient.
type ProjectsClient struct {
	entityOps[autotask.Project]
}

// NewProjectsClient creates a projects client over the handler.
func NewProjectsClient(handler *RequestHandler) *ProjectsClient {
	return &ProjectsClient{entityOps[autotask.Project]{handler: handler, endpoint: "Projects"}}
}

// Create creates a project.
func (c *ProjectsClient) Create(ctx context.Context, project *autotask.Project) (*autotask.Project, error) {
	return c.create(ctx, project)
}

// Get fetches a project by id.
func (c *ProjectsClient) Get(ctx context.Context, id int64) (*autotask.Project, error) {
	return c.get(ctx, id)
}

// Update replaces a project.
func (c *ProjectsClient) Update(ctx context.Context, id int64, project *autotask.Project) (*autotask.Project, error) {
	return c.update(ctx, id, project)
}

// Patch applies a partial update to a project.
func (c *ProjectsClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.Project, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a project.
func (c *ProjectsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists projects matching params.
func (c *ProjectsClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.Project], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a project query.
func (c *ProjectsClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.Project, error) {
	return c.queryAll(ctx, params)
}
