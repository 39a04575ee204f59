// Package experimenter fetches experiments from the legacy (v1) and nimbus (v6) Experimenter
// APIs and normalizes them into an experiment.Collection.
//
//	collection, err := experimenter.FromExperimenter(ctx)
//	if err != nil {
//		return err
//	}
//	recent := collection.OfType(experiment.TypeV6).StartedSince(since)
package experimenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

const (
	// DefaultV1URL is the legacy experiments endpoint.
	DefaultV1URL = "https://experimenter.services.mozilla.com/api/v1/experiments/"
	// DefaultV6URL is the nimbus experiments endpoint.
	DefaultV6URL = "https://experimenter.services.mozilla.com/api/v6/experiments/"

	// DefaultTimeout is the timeout of the HTTP client created when none is provided.
	DefaultTimeout = 30 * time.Second

	// maxErrorBodySize bounds how much of a failed response body is included in errors.
	maxErrorBodySize = 1024
)

// Client fetches experiments from the Experimenter APIs.
type Client struct {
	v1URL       string
	v6URL       string
	httpClient  *http.Client
	retryPolicy RetryPolicy
	now         func() time.Time
	lggr        logger.Logger
}

// NewClient creates a new Experimenter client. Without options it talks to the production
// endpoints with a 30 second timeout, retrying failed requests 3 times, 1 second apart.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		v1URL: DefaultV1URL,
		v6URL: DefaultV6URL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		retryPolicy: DefaultRetryPolicy(),
		now:         time.Now,
		lggr:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.v1URL == "" || c.v6URL == "" {
		return nil, errors.New("experimenter API URLs are required")
	}
	if c.httpClient == nil {
		return nil, errors.New("HTTP client is required")
	}
	if c.now == nil {
		return nil, errors.New("clock is required")
	}
	if c.lggr == nil {
		return nil, errors.New("logger is required")
	}
	if err := c.retryPolicy.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// url returns the endpoint serving the given schema version.
func (c *Client) url(version SchemaVersion) string {
	if version == SchemaV1 {
		return c.v1URL
	}

	return c.v6URL
}

// get performs a single GET request and returns the JSON body.
func (c *Client) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("experimenter API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse experimenter response: %w", err)
	}

	return payload, nil
}
