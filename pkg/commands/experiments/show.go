package experiments

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/experimenter-go/pkg/commands/flags"
)

// newShowCmd creates the "show" subcommand.
func newShowCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show the experiments with the given experimenter or normandy slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := flags.MustString(cmd.Flags().GetString("format"))

			return runShow(cmd, cfg, args[0], format)
		},
	}

	flags.Format(cmd, FormatYAML)

	return cmd
}

// runShow executes the show command logic.
func runShow(cmd *cobra.Command, cfg Config, slug, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	collection, err := fetch(cmd, cfg, false)
	if err != nil {
		return err
	}

	matches := collection.WithSlug(slug)
	if matches.Len() == 0 {
		return fmt.Errorf("no experiment found with slug %q", slug)
	}

	return write(cmd, cfg, format, "", matches.Experiments())
}
