// Package commands provides the CLI command groups of the experimenter CLI.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	cmd, err := cmds.Experiments(cfg.ClientOptions()...)
//	if err != nil {
//	    return err
//	}
//	app.AddCommand(cmd)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/experimenter-go/pkg/commands/experiments"
//
//	cmd, err := experiments.NewCommand(experiments.Config{
//	    Logger: lggr,
//	    Deps:   experiments.Deps{...},  // inject fakes for testing
//	})
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/experimenter-go/experimenter"
	"github.com/smartcontractkit/experimenter-go/pkg/commands/experiments"
	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Experiments creates the experiments command group for querying Experimenter.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	cmd, err := cmds.Experiments(experimenter.WithRetryPolicy(policy))
func (c *Commands) Experiments(opts ...experimenter.Option) (*cobra.Command, error) {
	return experiments.NewCommand(experiments.Config{
		Logger:        c.lggr,
		ClientOptions: opts,
	})
}
