package experimenter

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/experimenter-go/experiment"
)

// FetchResult is the outcome of fetching both Experimenter APIs.
type FetchResult struct {
	// Collection holds the nimbus experiments followed by the legacy experiments.
	Collection *experiment.Collection
	// Skipped lists the records that could not be decoded and were left out of Collection.
	Skipped []*RecordError
}

// FromExperimenter fetches every experiment from the Experimenter APIs using a client
// configured with opts.
func FromExperimenter(ctx context.Context, opts ...Option) (*experiment.Collection, error) {
	client, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return client.FetchCollection(ctx)
}

// FetchCollection fetches every experiment from both APIs. Records which fail to decode are
// logged and skipped; use Fetch to inspect them.
func (c *Client) FetchCollection(ctx context.Context) (*experiment.Collection, error) {
	result, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return result.Collection, nil
}

// Fetch fetches the legacy API and then the nimbus API, and returns the normalized
// experiments with nimbus experiments first. If either endpoint cannot be fetched, Fetch
// fails and no partial result is returned.
func (c *Client) Fetch(ctx context.Context) (*FetchResult, error) {
	legacy, legacySkipped, err := c.fetchSource(ctx, SchemaV1)
	if err != nil {
		return nil, err
	}

	nimbus, nimbusSkipped, err := c.fetchSource(ctx, SchemaV6)
	if err != nil {
		return nil, err
	}

	experiments := make([]experiment.Experiment, 0, len(nimbus)+len(legacy))
	experiments = append(experiments, nimbus...)
	experiments = append(experiments, legacy...)

	c.lggr.Infow("Fetched experiments",
		"v1", len(legacy), "v6", len(nimbus), "skipped", len(legacySkipped)+len(nimbusSkipped))

	return &FetchResult{
		Collection: experiment.NewCollection(experiments...),
		Skipped:    append(legacySkipped, nimbusSkipped...),
	}, nil
}

// fetchSource fetches the endpoint serving version and converts each record. A record that
// fails to decode is reported and skipped without affecting the others.
func (c *Client) fetchSource(
	ctx context.Context, version SchemaVersion,
) ([]experiment.Experiment, []*RecordError, error) {
	url := c.url(version)

	body, err := c.retryGet(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	records, err := splitRecords(body)
	if err != nil {
		return nil, nil, fmt.Errorf("unexpected response from %s: %w", url, err)
	}

	now := c.now().UTC()
	experiments := make([]experiment.Experiment, 0, len(records))
	var skipped []*RecordError
	for i, record := range records {
		slug, typ := peekHeader(record)
		if version == SchemaV1 && typ == rapidType {
			c.lggr.Debugw("Skipping rapid experiment", "experiment", slug)
			continue
		}

		schema, derr := decodeSchema(version, record, now)
		if derr != nil {
			recErr := &RecordError{Source: version, Index: i, Slug: slug, Err: derr}
			c.lggr.Errorw("Failed to decode experiment",
				"source", version, "index", i, "experiment", slug, "error", derr)
			skipped = append(skipped, recErr)

			continue
		}

		experiments = append(experiments, schema.ToExperiment())
	}

	return experiments, skipped, nil
}
