// Package main provides the experimenter CLI for querying experiments published by the
// Experimenter V1 and V6 APIs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smartcontractkit/experimenter-go/pkg/commands"
	"github.com/smartcontractkit/experimenter-go/pkg/config"
)

// defaultConfigPath is read when --config is not set. It is optional.
const defaultConfigPath = "experimenter.yml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// The logger and the client are built from the config before cobra parses the flags,
	// so the config path is extracted first.
	cfgPath, err := configPath(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lggr, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()

	root, err := newRootCmd(commands.New(lggr), cfg)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func newRootCmd(cmds *commands.Commands, cfg *config.Config) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "experimenter",
		Short:         "Query experiment metadata from Experimenter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configFlag(root.PersistentFlags())

	experimentsCmd, err := cmds.Experiments(cfg.ClientOptions()...)
	if err != nil {
		return nil, err
	}
	root.AddCommand(experimentsCmd)

	return root, nil
}

// configFlag registers the --config/-c flag on fs.
func configFlag(fs *pflag.FlagSet) *string {
	return fs.StringP("config", "c", defaultConfigPath, "Path to a YAML, TOML or JSON config file")
}

// configPath returns the value of --config in args, ignoring every other flag.
func configPath(args []string) (string, error) {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := configFlag(fs)

	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return "", fmt.Errorf("parse flags: %w", err)
	}

	return *path, nil
}
