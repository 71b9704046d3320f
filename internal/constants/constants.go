// Package constants centralizes shared defaults and wire-level names.
package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ZoneDiscoveryTimeout bounds the zoneInformation lookup.
	ZoneDiscoveryTimeout = 10 * time.Second

	// DefaultUserAgent identifies this client on the wire.
	DefaultUserAgent = "autotask-client/1.0"
)

// Auth header names required by the API.
const (
	// HeaderIntegrationCode carries the API integration code.
	HeaderIntegrationCode = "ApiIntegrationCode"

	// HeaderUsername carries the API user name.
	HeaderUsername = "UserName"

	// HeaderSecret carries the API secret.
	HeaderSecret = "Secret"
)

// Zone discovery endpoints.
const (
	// DefaultGlobalEndpoint hosts the zoneInformation lookup for
	// accounts whose zone is not yet known.
	DefaultGlobalEndpoint = "https://webservices.autotask.net/atservicesrest"

	// APIVersionPath is appended to a zone base URL.
	APIVersionPath = "/v1.0"

	// ZoneInformationPath resolves an account's zone by user name.
	ZoneInformationPath = "/v1.0/zoneInformation"
)

// Paging defaults.
const (
	// DefaultPageSize is the page size used when the caller does not
	// set MaxRecords.
	DefaultPageSize = 50

	// MaxPageSize is the largest page the API accepts.
	MaxPageSize = 500
)

// CLI output formats.
const (
	// FormatTable renders results as an aligned table.
	FormatTable = "table"

	// FormatJSON renders results as indented JSON.
	FormatJSON = "json"

	// FormatYAML renders results as YAML.
	FormatYAML = "yaml"
)

// MaskedSecret replaces credentials in logs and CLI output.
const MaskedSecret = "***"
