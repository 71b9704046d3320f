package client

import (
	"strings"

	"github.com/fieldops-io/autotask-client/internal/constants"
	athttp "github.com/fieldops-io/autotask-client/internal/http"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// Client implements the autotask.Client interface.
type Client struct {
	handler *RequestHandler

	tickets            *TicketsClient
	companies          *CompaniesClient
	contacts           *ContactsClient
	projects           *ProjectsClient
	tasks              *TasksClient
	timeEntries        *TimeEntriesClient
	configurationItems *ConfigurationItemsClient
}

// New creates a client against the zone endpoint in cfg. The endpoint
// must already be resolved; pkg/atclient performs zone discovery first.
func New(cfg *autotask.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, autotask.ErrEndpointRequired
	}

	opts := []athttp.Option{}
	if cfg.Logger != nil {
		opts = append(opts, athttp.WithLogger(cfg.Logger))
	}
	if cfg.Debug {
		opts = append(opts, athttp.WithDebug(true))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, athttp.WithUserAgent(cfg.UserAgent))
	}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, athttp.WithHTTPTimeout(cfg.HTTPTimeout))
	}

	transport := athttp.NewClient(NormalizeEndpoint(cfg.Endpoint), &athttp.Credentials{
		IntegrationCode: cfg.IntegrationCode,
		Username:        cfg.Username,
		Secret:          cfg.Secret,
	}, opts...)

	handler, err := NewRequestHandler(transport, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		handler:            handler,
		tickets:            NewTicketsClient(handler),
		companies:          NewCompaniesClient(handler),
		contacts:           NewContactsClient(handler),
		projects:           NewProjectsClient(handler),
		tasks:              NewTasksClient(handler),
		timeEntries:        NewTimeEntriesClient(handler),
		configurationItems: NewConfigurationItemsClient(handler),
	}, nil
}

// NormalizeEndpoint trims trailing slashes and ensures the versioned
// API path is present, so both zone URLs and full endpoints work.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(strings.ToLower(endpoint), strings.ToLower(constants.APIVersionPath)) {
		endpoint += constants.APIVersionPath
	}
	return endpoint
}

// Tickets returns the tickets client.
func (c *Client) Tickets() autotask.TicketsClient { return c.tickets }

// Companies returns the companies client.
func (c *Client) Companies() autotask.CompaniesClient { return c.companies }

// Contacts returns the contacts client.
func (c *Client) Contacts() autotask.ContactsClient { return c.contacts }

// Projects returns the projects client.
func (c *Client) Projects() autotask.ProjectsClient { return c.projects }

// Tasks returns the tasks client.
func (c *Client) Tasks() autotask.TasksClient { return c.tasks }

// TimeEntries returns the time entries client.
func (c *Client) TimeEntries() autotask.TimeEntriesClient { return c.timeEntries }

// ConfigurationItems returns the configuration items client.
func (c *Client) ConfigurationItems() autotask.ConfigurationItemsClient {
	return c.configurationItems
}

// CacheStats reports response-cache counters.
func (c *Client) CacheStats() autotask.CacheStats { return c.handler.CacheStats() }

// Close flushes pending batched work and releases resources.
func (c *Client) Close() error { return c.handler.Close() }
