package experiments

import (
	"errors"
	"slices"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/experimenter-go/experimenter"
	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

const experimentsShort = "Query experiments published by Experimenter"

const experimentsLong = `Fetch experiments from the legacy (v1) and nimbus (v6) Experimenter APIs, normalize
them into a single representation and print the ones matching the given filters.`

// Config holds the configuration for experiments commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// ClientOptions configure the experimenter client, e.g. endpoints and retry policy.
	ClientOptions []experimenter.Option

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Validate checks that the required fields are set.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}

	return nil
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// clientOptions returns the configured client options with the command logger appended.
func (c *Config) clientOptions() []experimenter.Option {
	return append(slices.Clone(c.ClientOptions), experimenter.WithLogger(c.Logger))
}

// NewCommand creates a new experiments command with all subcommands.
//
// Usage:
//
//	cmd, err := experiments.NewCommand(experiments.Config{
//	    Logger:        lggr,
//	    ClientOptions: cfg.ClientOptions(),
//	})
//	if err != nil {
//	    return err
//	}
//	rootCmd.AddCommand(cmd)
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply defaults for optional dependencies
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: experimentsShort,
		Long:  experimentsLong,
	}

	cmd.AddCommand(
		newListCmd(cfg),
		newShowCmd(cfg),
	)

	return cmd, nil
}
