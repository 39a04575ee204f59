package experimenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smartcontractkit/experimenter-go/experiment"
)

// SchemaVersion identifies the Experimenter API version a record was sourced from.
type SchemaVersion string

const (
	// SchemaV1 is the legacy experiment API, which describes treatment arms as variants.
	SchemaV1 SchemaVersion = "v1"
	// SchemaV6 is the nimbus experiment API, which describes treatment arms as branches.
	SchemaV6 SchemaVersion = "v6"
)

// rapidType is a legacy experiment type which is not modelled and is always skipped.
const rapidType = "rapid"

// Schema is an experiment decoded from one of the Experimenter APIs. The set of
// implementations is closed: *ExperimentV1 and *ExperimentV6.
type Schema interface {
	// Version returns the API version the record was decoded from.
	Version() SchemaVersion
	// ToExperiment converts the record to the canonical representation.
	ToExperiment() experiment.Experiment

	sealed()
}

var (
	_ Schema = (*ExperimentV1)(nil)
	_ Schema = (*ExperimentV6)(nil)
)

var errMissingField = errors.New("missing required field")

// RecordError describes an experiment record that could not be decoded. The record is
// dropped and the remaining records are processed.
type RecordError struct {
	Source SchemaVersion
	// Index is the position of the record in the API response.
	Index int
	// Slug is the slug of the record, empty when it could not be determined.
	Slug string
	Err  error
}

func (e *RecordError) Error() string {
	slug := e.Slug
	if slug == "" {
		slug = "<unknown>"
	}

	return fmt.Sprintf("failed to decode %s experiment %s (index %d): %v", e.Source, slug, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// recordHeader holds the fields inspected before a record is decoded. Values have loose types
// so that the header can be read from records that fail to decode.
type recordHeader struct {
	Slug any `json:"slug"`
	Type any `json:"type"`
}

func peekHeader(data []byte) (slug string, typ string) {
	var h recordHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return "", ""
	}
	slug, _ = h.Slug.(string)
	typ, _ = h.Type.(string)

	return slug, typ
}

// decodeSchema decodes a single record of the given version. now is the time V6 statuses are
// evaluated against.
func decodeSchema(version SchemaVersion, data []byte, now time.Time) (Schema, error) {
	switch version {
	case SchemaV1:
		ex, err := DecodeExperimentV1(data)
		if err != nil {
			return nil, err
		}

		return ex, nil
	case SchemaV6:
		ex, err := DecodeExperimentV6(data, now)
		if err != nil {
			return nil, err
		}

		return ex, nil
	default:
		return nil, fmt.Errorf("unsupported schema version %q", version)
	}
}

// splitRecords checks that an API response is an array of objects and returns its elements.
func splitRecords(body json.RawMessage) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("expected an array of experiments: %w", err)
	}

	return records, nil
}

func requireField[T any](name string, v *T) (T, error) {
	if v == nil {
		var zero T
		return zero, fmt.Errorf("%w %q", errMissingField, name)
	}

	return *v, nil
}
