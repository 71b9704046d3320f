package client

import (
	"context"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// ContactsClient implements autotask.ContactsClient.
type ContactsClient struct {
	entityOps[autotask.Contact]
}

// NewContactsClient creates a contacts client over the handler.
func NewContactsClient(handler *RequestHandler) *ContactsClient {
	return &ContactsClient{entityOps[autotask.Contact]{handler: handler, endpoint: "Contacts"}}
}

// Create creates a contact.
func (c *ContactsClient) Create(ctx context.Context, contact *autotask.Contact) (*autotask.Contact, error) {
	return c.create(ctx, contact)
}

// Get fetches a contact by id.
func (c *ContactsClient) Get(ctx context.Context, id int64) (*autotask.Contact, error) {
	return c.get(ctx, id)
}

// Update replaces a contact.
func (c *ContactsClient) Update(ctx context.Context, id int64, contact *autotask.Contact) (*autotask.Contact, error) {
	return c.update(ctx, id, contact)
}

// Patch applies a partial update to a contact.
func (c *ContactsClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.Contact, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a contact.
func (c *ContactsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists contacts matching params.
func (c *ContactsClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.Contact], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a contact query.
func (c *ContactsClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.Contact, error) {
	return c.queryAll(ctx, params)
}
