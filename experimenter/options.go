package experimenter

import (
	"net/http"
	"time"

	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithV1URL overrides the legacy experiments endpoint.
func WithV1URL(url string) Option {
	return func(c *Client) {
		c.v1URL = url
	}
}

// WithV6URL overrides the nimbus experiments endpoint.
func WithV6URL(url string) Option {
	return func(c *Client) {
		c.v6URL = url
	}
}

// WithHTTPClient sets the HTTP client used for requests, e.g. to share a connection pool or
// to bound the latency of each request with a custom timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(lggr logger.Logger) Option {
	return func(c *Client) {
		c.lggr = lggr
	}
}

// WithClock sets the function used to evaluate the status of nimbus experiments.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
