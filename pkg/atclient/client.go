// Package atclient constructs Autotask API clients. It validates the
// configuration, resolves the account's zone endpoint when none is
// configured, and wires the optimization pipeline.
package atclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fieldops-io/autotask-client/internal/client"
	"github.com/fieldops-io/autotask-client/internal/constants"
	athttp "github.com/fieldops-io/autotask-client/internal/http"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// New creates a client from cfg. When cfg.Endpoint is empty the zone is
// resolved through the global zoneInformation endpoint first, which
// requires network access; pass a resolved endpoint to skip discovery.
func New(ctx context.Context, cfg *autotask.Config) (autotask.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Endpoint == "" {
		zone, err := DiscoverZone(ctx, cfg)
		if err != nil {
			return nil, err
		}
		resolved := *cfg
		resolved.Endpoint = zone.URL
		return client.New(&resolved)
	}
	return client.New(cfg)
}

// NewWithEndpoint creates a client against a known zone endpoint.
func NewWithEndpoint(endpoint string, cfg *autotask.Config) (autotask.Client, error) {
	resolved := *cfg
	resolved.Endpoint = endpoint
	return client.New(&resolved)
}

// DiscoverZone resolves the zone serving cfg.Username via the global
// zoneInformation endpoint. Discovery is unauthenticated.
func DiscoverZone(ctx context.Context, cfg *autotask.Config) (*autotask.ZoneInfo, error) {
	global := cfg.GlobalEndpoint
	if global == "" {
		global = constants.DefaultGlobalEndpoint
	}

	opts := []athttp.Option{athttp.WithHTTPTimeout(constants.ZoneDiscoveryTimeout)}
	if cfg.Logger != nil {
		opts = append(opts, athttp.WithLogger(cfg.Logger))
	}
	transport := athttp.NewClient(global, nil, opts...)

	resp, err := transport.Get(ctx, constants.ZoneInformationPath, url.Values{
		"user": []string{cfg.Username},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", autotask.ErrZoneDiscoveryFailed, err)
	}

	var zone autotask.ZoneInfo
	if err := json.Unmarshal(resp.Body, &zone); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", autotask.ErrZoneDiscoveryFailed, err)
	}
	if zone.URL == "" {
		return nil, fmt.Errorf("%w: empty zone URL for user %q", autotask.ErrZoneDiscoveryFailed, cfg.Username)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("resolved zone", map[string]interface{}{
			"user": cfg.Username,
			"zone": zone.URL,
		})
	}
	return &zone, nil
}
