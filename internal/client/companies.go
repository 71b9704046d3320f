package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// CompaniesClient implements autotask.CompaniesClient.
type CompaniesClient struct {
	entityOps[autotask.Company]
}

// NewCompaniesClient creates a companies client over the handler.
func NewCompaniesClient(handler *RequestHandler) *CompaniesClient {
	return &CompaniesClient{entityOps[autotask.Company]{handler: handler, endpoint: "Companies"}}
}

// Create creates a company.
func (c *CompaniesClient) Create(ctx context.Context, company *autotask.Company) (*autotask.Company, error) {
	return c.create(ctx, company)
}

// Get fetches a company by id.
func (c *CompaniesClient) Get(ctx context.Context, id int64) (*autotask.Company, error) {
	return c.get(ctx, id)
}

// Update replaces a company.
func (c *CompaniesClient) Update(ctx context.Context, id int64, company *autotask.Company) (*autotask.Company, error) {
	return c.update(ctx, id, company)
}

// Patch applies a partial update to a company.
func (c *CompaniesClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.Company, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a company.
func (c *CompaniesClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists companies matching params.
func (c *CompaniesClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.Company], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a company query.
func (c *CompaniesClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.Company, error) {
	return c.queryAll(ctx, params)
}
