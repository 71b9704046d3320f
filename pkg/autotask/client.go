package autotask

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client is the top-level interface for the Autotask REST API.
type Client interface {
	Tickets() TicketsClient
	Companies() CompaniesClient
	Contacts() ContactsClient
	Projects() ProjectsClient
	Tasks() TasksClient
	TimeEntries() TimeEntriesClient
	ConfigurationItems() ConfigurationItemsClient

	// CacheStats reports response-cache counters. Zero when caching is
	// disabled.
	CacheStats() CacheStats

	// Close flushes pending batched work and releases resources.
	Close() error
}

// TicketsClient manages Tickets.
type TicketsClient interface {
	Create(ctx context.Context, ticket *Ticket) (*Ticket, error)
	Get(ctx context.Context, id int64) (*Ticket, error)
	Update(ctx context.Context, id int64, ticket *Ticket) (*Ticket, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*Ticket, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[Ticket], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]Ticket, error)
	Notes(ctx context.Context, ticketID int64, params *QueryParams) (*ListResponse[TicketNote], error)
}

// CompaniesClient manages Companies.
type CompaniesClient interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	Get(ctx context.Context, id int64) (*Company, error)
	Update(ctx context.Context, id int64, company *Company) (*Company, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*Company, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[Company], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]Company, error)
}

// ContactsClient manages Contacts.
type ContactsClient interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	Get(ctx context.Context, id int64) (*Contact, error)
	Update(ctx context.Context, id int64, contact *Contact) (*Contact, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*Contact, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[Contact], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]Contact, error)
}

// ProjectsClient manages Projects.
type ProjectsClient interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	Update(ctx context.Context, id int64, project *Project) (*Project, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*Project, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[Project], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]Project, error)
}

// TasksClient manages Tasks.
type TasksClient interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, id int64, task *Task) (*Task, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*Task, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[Task], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]Task, error)
}

// TimeEntriesClient manages TimeEntries.
type TimeEntriesClient interface {
	Create(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	Get(ctx context.Context, id int64) (*TimeEntry, error)
	Update(ctx context.Context, id int64, entry *TimeEntry) (*TimeEntry, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*TimeEntry, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[TimeEntry], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]TimeEntry, error)
}

// ConfigurationItemsClient manages ConfigurationItems.
type ConfigurationItemsClient interface {
	Create(ctx context.Context, item *ConfigurationItem) (*ConfigurationItem, error)
	Get(ctx context.Context, id int64) (*ConfigurationItem, error)
	Update(ctx context.Context, id int64, item *ConfigurationItem) (*ConfigurationItem, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*ConfigurationItem, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, params *QueryParams) (*ListResponse[ConfigurationItem], error)
	QueryAll(ctx context.Context, params *QueryParams) ([]ConfigurationItem, error)
}

// Logger is the logging interface used across the client. Adapt your
// logger of choice to it; a nil Logger disables logging.
type Logger interface {
	Debug(message string, fields map[string]interface{})
	Info(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}

// Config configures a client.
type Config struct {
	// IntegrationCode, Username, and Secret are the API credentials.
	IntegrationCode string
	Username        string
	Secret          string

	// Endpoint is the zone base URL, e.g.
	// https://webservices14.autotask.net/atservicesrest/v1.0. Leave
	// empty to resolve it via zone discovery.
	Endpoint string

	// GlobalEndpoint hosts the zoneInformation endpoint used for
	// discovery. Defaults to the public global endpoint.
	GlobalEndpoint string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// HTTPTimeout bounds each transport call.
	HTTPTimeout time.Duration

	// Logger receives client logs. Nil disables logging.
	Logger Logger

	// Debug logs request and response bodies.
	Debug bool

	// DedupTTL is the deduplication window. Defaults to
	// DefaultDedupTTL.
	DedupTTL time.Duration

	// BatchingEnabledFor lists the endpoints whose get-by-id calls are
	// batched. Empty disables batching.
	BatchingEnabledFor []string

	// BatchMaxSize and BatchFlushInterval tune the batch processors.
	BatchMaxSize       int
	BatchFlushInterval time.Duration

	// MaxRetries, BaseRetryDelay, and MaxRetryDelay tune the retry
	// executor.
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration

	// Cache configures the response cache. Nil disables it.
	Cache *CacheConfig

	// MetricsRegisterer, when set, enables Prometheus metrics on that
	// registerer.
	MetricsRegisterer prometheus.Registerer

	// Hooks receives optimization-layer events.
	Hooks *Hooks
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}
	if c.IntegrationCode == "" || c.Username == "" || c.Secret == "" {
		return ErrCredentialsRequired
	}
	return nil
}

// RetryExecutorFromConfig builds the retry executor the handler uses.
func (c *Config) RetryExecutorFromConfig() *RetryExecutor {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	baseDelay := c.BaseRetryDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	executor := NewRetryExecutor(maxRetries, baseDelay)
	if c.MaxRetryDelay > 0 {
		executor.MaxDelay = c.MaxRetryDelay
	}
	return executor
}
