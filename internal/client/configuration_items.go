package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// ConfigurationItemsClient implements autotask.ConfigurationItemsClient.
type ConfigurationItemsClient struct {
	entityOps[autotask.ConfigurationItem]
}

// NewConfigurationItemsClient creates a configuration items client over
// the handler.
func NewConfigurationItemsClient(handler *RequestHandler) *ConfigurationItemsClient {
	return &ConfigurationItemsClient{entityOps[autotask.ConfigurationItem]{handler: handler, endpoint: "ConfigurationItems"}}
}

// Create creates a configuration item.
func (c *ConfigurationItemsClient) Create(ctx context.Context, item *autotask.ConfigurationItem) (*autotask.ConfigurationItem, error) {
	return c.create(ctx, item)
}

// Get fetches a configuration item by id.
func (c *ConfigurationItemsClient) Get(ctx context.Context, id int64) (*autotask.ConfigurationItem, error) {
	return c.get(ctx, id)
}

// Update replaces a configuration item.
func (c *ConfigurationItemsClient) Update(ctx context.Context, id int64, item *autotask.ConfigurationItem) (*autotask.ConfigurationItem, error) {
	return c.update(ctx, id, item)
}

// Patch applies a partial update to a configuration item.
func (c *ConfigurationItemsClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.ConfigurationItem, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a configuration item.
func (c *ConfigurationItemsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists configuration items matching params.
func (c *ConfigurationItemsClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.ConfigurationItem], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a configuration item query.
func (c *ConfigurationItemsClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.ConfigurationItem, error) {
	return c.queryAll(ctx, params)
}
