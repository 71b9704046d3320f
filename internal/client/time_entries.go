package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// TimeEntriesClient implements autotask.TimeEntriesClient.
type TimeEntriesClient struct {
	entityOps[autotask.TimeEntry]
}

// NewTimeEntriesClient creates a time entries client over the handler.
func NewTimeEntriesClient(handler *RequestHandler) *TimeEntriesClient {
	return &TimeEntriesClient{entityOps[autotask.TimeEntry]{handler: handler, endpoint: "TimeEntries"}}
}

// Create creates a time entry.
func (c *TimeEntriesClient) Create(ctx context.Context, entry *autotask.TimeEntry) (*autotask.TimeEntry, error) {
	return c.create(ctx, entry)
}

// Get fetches a time entry by id.
func (c *TimeEntriesClient) Get(ctx context.Context, id int64) (*autotask.TimeEntry, error) {
	return c.get(ctx, id)
}

// Update replaces a time entry.
func (c *TimeEntriesClient) Update(ctx context.Context, id int64, entry *autotask.TimeEntry) (*autotask.TimeEntry, error) {
	return c.update(ctx, id, entry)
}

// Patch applies a partial update to a time entry.
func (c *TimeEntriesClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.TimeEntry, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a time entry.
func (c *TimeEntriesClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists time entries matching params.
func (c *TimeEntriesClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.TimeEntry], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a time entry query.
func (c *TimeEntriesClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.TimeEntry, error) {
	return c.queryAll(ctx, params)
}
