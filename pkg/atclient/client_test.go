package atclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldops-io/autotask-client/pkg/atclient"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *autotask.Config {
	return &autotask.Config{
		IntegrationCode: "code",
		Username:        "user@example.com",
		Secret:          "secret",
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := atclient.New(context.Background(), &autotask.Config{})
	assert.ErrorIs(t, err, autotask.ErrCredentialsRequired)

	_, err = atclient.New(context.Background(), &autotask.Config{
		IntegrationCode: "code",
		Username:        "user@example.com",
	})
	assert.ErrorIs(t, err, autotask.ErrCredentialsRequired)
}

func TestNewWithEndpointSkipsDiscovery(t *testing.T) {
	t.Parallel()

	c, err := atclient.NewWithEndpoint("https://webservices14.autotask.net/atservicesrest/v1.0", validConfig())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.NotNil(t, c.Tickets())
	assert.NotNil(t, c.ConfigurationItems())
}

func TestDiscoverZone(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/zoneInformation", r.URL.Path)
		assert.Equal(t, "user@example.com", r.URL.Query().Get("user"))
		_ = json.NewEncoder(w).Encode(autotask.ZoneInfo{
			ZoneName: "Pre-America East 14",
			URL:      "https://webservices14.autotask.net/atservicesrest",
			WebURL:   "https://ww14.autotask.net",
			CI:       14,
		})
	}))
	defer server.Close()

	cfg := validConfig()
	cfg.GlobalEndpoint = server.URL

	zone, err := atclient.DiscoverZone(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://webservices14.autotask.net/atservicesrest", zone.URL)
	assert.Equal(t, 14, zone.CI)
}

func TestDiscoverZoneUnknownUser(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{"Zone information could not be determined"}})
	}))
	defer server.Close()

	cfg := validConfig()
	cfg.GlobalEndpoint = server.URL

	_, err := atclient.DiscoverZone(context.Background(), cfg)
	assert.ErrorIs(t, err, autotask.ErrZoneDiscoveryFailed)
}

func TestDiscoverZoneEmptyURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(autotask.ZoneInfo{})
	}))
	defer server.Close()

	cfg := validConfig()
	cfg.GlobalEndpoint = server.URL

	_, err := atclient.DiscoverZone(context.Background(), cfg)
	assert.ErrorIs(t, err, autotask.ErrZoneDiscoveryFailed)
}

func TestNewDiscoversZone(t *testing.T) {
	t.Parallel()

	zoneServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(autotask.ListResponse[autotask.Ticket]{})
	}))
	defer zoneServer.Close()

	globalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(autotask.ZoneInfo{URL: zoneServer.URL, CI: 14})
	}))
	defer globalServer.Close()

	cfg := validConfig()
	cfg.GlobalEndpoint = globalServer.URL

	c, err := atclient.New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	// A query against the discovered zone round-trips.
	_, err = c.Tickets().Query(context.Background(), nil)
	require.NoError(t, err)
}
