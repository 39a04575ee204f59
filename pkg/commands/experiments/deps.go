// Package experiments provides CLI commands for querying Experimenter experiments.
package experiments

import (
	"context"
	"os"

	"github.com/smartcontractkit/experimenter-go/experimenter"
)

// FetcherFunc fetches the experiments of both Experimenter APIs.
type FetcherFunc func(ctx context.Context, opts ...experimenter.Option) (*experimenter.FetchResult, error)

// FileWriterFunc writes rendered output to a file.
type FileWriterFunc func(path string, data []byte) error

// defaultFetcher is the production implementation that queries the Experimenter APIs.
func defaultFetcher(ctx context.Context, opts ...experimenter.Option) (*experimenter.FetchResult, error) {
	client, err := experimenter.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return client.Fetch(ctx)
}

// defaultFileWriter writes the output to the path, replacing any existing file.
func defaultFileWriter(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}

// Deps holds the injectable dependencies for experiments commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// Fetcher retrieves the experiments.
	// Default: experimenter.NewClient followed by Client.Fetch
	Fetcher FetcherFunc

	// FileWriter writes the output when --out is set.
	// Default: os.WriteFile
	FileWriter FileWriterFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.Fetcher == nil {
		d.Fetcher = defaultFetcher
	}
	if d.FileWriter == nil {
		d.FileWriter = defaultFileWriter
	}
}
