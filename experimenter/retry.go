package experimenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrTooManyRetries is returned when every attempt to fetch an endpoint failed.
var ErrTooManyRetries = errors.New("too many retries")

// RetryPolicy defines how failed requests are retried. Requests are retried after a fixed
// delay; there is no backoff or jitter.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts uint
	// Delay is the pause between two attempts.
	Delay time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured: 3 attempts, 1 second
// apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       time.Second,
	}
}

func (p RetryPolicy) validate() error {
	// retry-go treats 0 attempts as retrying forever
	if p.MaxAttempts == 0 {
		return errors.New("retry policy must allow at least one attempt")
	}
	if p.Delay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", p.Delay)
	}

	return nil
}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	return []retry.Option{
		retry.Attempts(p.MaxAttempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
}

// unrecoverable marks an error that must not be retried.
func unrecoverable(err error) error {
	return retry.Unrecoverable(err)
}

// retryGet fetches url, retrying according to the client's retry policy. It fails with an
// error wrapping ErrTooManyRetries once every attempt failed.
func (c *Client) retryGet(ctx context.Context, url string) (json.RawMessage, error) {
	retryOpts := c.retryPolicy.options()
	retryOpts = append(retryOpts,
		retry.Context(ctx),
		retry.OnRetry(func(attempt uint, err error) {
			c.lggr.Infow("Error fetching experiments. Retrying...",
				"url", url, "attempt", attempt+1, "error", err)
		}),
	)

	payload, err := retry.DoWithData(
		func() (json.RawMessage, error) {
			return c.get(ctx, url)
		},
		retryOpts...,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, ctxErr)
		}

		return nil, fmt.Errorf("%w for %s: %w", ErrTooManyRetries, url, err)
	}

	return payload, nil
}
