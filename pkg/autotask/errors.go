package autotask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors returned by the client and its optimization layer.
var (
	// ErrConfigRequired is returned when a nil config is supplied.
	ErrConfigRequired = errors.New("config is required")

	// ErrCredentialsRequired is returned when the integration code,
	// username, or secret is missing.
	ErrCredentialsRequired = errors.New("API credentials are required")

	// ErrEndpointRequired is returned when no endpoint is configured and
	// zone discovery is disabled.
	ErrEndpointRequired = errors.New("API endpoint is required")

	// ErrZoneDiscoveryFailed is returned when the global zoneInformation
	// endpoint cannot resolve the account's zone.
	ErrZoneDiscoveryFailed = errors.New("zone discovery failed")

	// ErrBatcherStopped is returned by BatchProcessor.Process after Stop.
	ErrBatcherStopped = errors.New("batch processor is stopped")

	// ErrMissingFromBatch is returned for an id absent from a combined
	// batch query response.
	ErrMissingFromBatch = errors.New("record not found in batch response")

	// ErrUnsupportedCacheType is returned by the cache factory for an
	// unknown backend name.
	ErrUnsupportedCacheType = errors.New("unsupported cache type")

	// ErrNATSConfigRequired is returned when the NATS cache backend is
	// selected without connection details.
	ErrNATSConfigRequired = errors.New("NATS configuration is required")
)

// APIError is a non-2xx response from the API, carrying the parsed
// error messages from the body when present.
type APIError struct {
	StatusCode int      `json:"statusCode"`
	Method     string   `json:"method"`
	Endpoint   string   `json:"endpoint"`
	Errors     []string `json:"errors"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Endpoint, e.StatusCode, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Endpoint, e.StatusCode)
}

// NewAPIError parses an error response body into an APIError. The API
// reports failures as {"errors": ["..."]}; bodies that do not match are
// kept as a raw message so nothing is lost.
func NewAPIError(statusCode int, method, endpoint string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		Endpoint:   endpoint,
	}

	var parsed struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		apiErr.Errors = parsed.Errors
	} else if len(body) > 0 {
		apiErr.Errors = []string{string(body)}
	}
	return apiErr
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsRateLimited reports whether err is an API 429.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsRetryable classifies errors for the RetryExecutor's default
// predicate. API responses retry on 429 and 5xx; other API statuses are
// terminal. Context cancellation and deadline expiry are terminal.
// Everything else (transport failures, timeouts at the socket level) is
// assumed transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
