package client

import (
	"context"
	"fmt"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// TicketsClient implements autotask.TicketsClient.
type TicketsClient struct {
	entityOps[autotask.Ticket]
}

// NewTicketsClient creates a tickets client over the handler.
func NewTicketsClient(handler *RequestHandler) *TicketsClient {
	return &TicketsClient{entityOps[autotask.Ticket]{handler: handler, endpoint: "Tickets"}}
}

// Create creates a ticket.
func (c *TicketsClient) Create(ctx context.Context, ticket *autotask.Ticket) (*autotask.Ticket, error) {
	return c.create(ctx, ticket)
}

// Get fetches a ticket by id.
func (c *TicketsClient) Get(ctx context.Context, id int64) (*autotask.Ticket, error) {
	return c.get(ctx, id)
}

// Update replaces a ticket.
func (c *TicketsClient) Update(ctx context.Context, id int64, ticket *autotask.Ticket) (*autotask.Ticket, error) {
	return c.update(ctx, id, ticket)
}

// Patch applies a partial update to a ticket.
func (c *TicketsClient) Patch(ctx context.Context, id int64, fields map[string]any) (*autotask.Ticket, error) {
	return c.patch(ctx, id, fields)
}

// Delete removes a ticket.
func (c *TicketsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, id)
}

// Query lists tickets matching params.
func (c *TicketsClient) Query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[autotask.Ticket], error) {
	return c.query(ctx, params)
}

// QueryAll drains every page of a ticket query.
func (c *TicketsClient) QueryAll(ctx context.Context, params *autotask.QueryParams) ([]autotask.Ticket, error) {
	return c.queryAll(ctx, params)
}

// Notes queries the notes of one ticket.
func (c *TicketsClient) Notes(ctx context.Context, ticketID int64, params *autotask.QueryParams) (*autotask.ListResponse[autotask.TicketNote], error) {
	body, err := c.handler.ExecuteChildQueryRequest(ctx, "Tickets", ticketID, "Notes", params)
	if err != nil {
		return nil, fmt.Errorf("querying notes of ticket %d: %w", ticketID, err)
	}
	return decodeList[autotask.TicketNote](body)
}
