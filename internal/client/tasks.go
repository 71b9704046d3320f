package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// TasksClient implements autotask.TasksClient.
type TasksClient struct {
	entityOps[autotask.Task]
}

// NewTasksClient creates a tasks client over the handler.
func NewTasksClient(handler *RequestHandler) *TasksClient {
	return &TasksClient{entityOps[autotask.Task]{handler: handler, endpoint: "Tasks"}}
}

// Create creates a task.
func (c *TasksClient) Create(ctx context.Context, task *autotask.Task) (*autotask.Task, error) {
	return c.create(ctx, task)
}

// Get fetches a task by id.
func (c *TasksClient) Get(ctx context.Context, id int64) (*autotask.Task, error) {
	return c.get(ctx, id)
}

// Update replaces a task.
func (c *TasksClient) Update(ctx context.Context, id int64, task *autotask.Task) (*autotask.Task, error) {
	return c.update(ctx, id, task)
}

// Patch applies a partial update to a task.
func (c *TasksClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.Task, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a task.
func (c *TasksClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists tasks matching params.
func (c *TasksClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.Task], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a task query.
func (c *TasksClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.Task, error) {
	return c.queryAll(ctx, params)
}
