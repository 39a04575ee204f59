package experiments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/experimenter-go/experiment"
	"github.com/smartcontractkit/experimenter-go/experimenter"
	"github.com/smartcontractkit/experimenter-go/pkg/commands/flags"
)

// fetchTimeout bounds a whole fetch, retries of both endpoints included.
const fetchTimeout = 5 * time.Minute

// listOptions holds the filters of the list command. Zero values disable a filter.
type listOptions struct {
	types         []string
	slug          string
	launched      bool
	startedSince  string
	endsOnOrAfter string
	where         string
	strict        bool
	format        string
	outputPath    string
}

// newListCmd creates the "list" subcommand.
func newListCmd(cfg Config) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments matching the filters",
		Example: `  experimenter experiments list --type v6 --launched
  experimenter experiments list --started-since 2021-03-01 --format json
  experimenter experiments list --where 'proposedEnrollment > 7 && "control" in branches'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.format = flags.MustString(cmd.Flags().GetString("format"))
			opts.outputPath = flags.MustString(cmd.Flags().GetString("out"))

			return runList(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "Keep experiments of the given types (repeatable)")
	cmd.Flags().StringVar(&opts.slug, "slug", "", "Keep experiments with the given experimenter or normandy slug")
	cmd.Flags().BoolVar(&opts.launched, "launched", false, "Keep experiments that were ever launched")
	cmd.Flags().StringVar(&opts.startedSince, "started-since", "", "Keep launched experiments that started on or after the time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.endsOnOrAfter, "ends-on-or-after", "", "Keep launched experiments that end on or after the time or have no end date")
	cmd.Flags().StringVar(&opts.where, "where", "", "Keep experiments matching the boolean expression")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail if any experiment record could not be decoded")
	flags.Format(cmd, FormatTable)
	flags.Output(cmd, "")

	return cmd
}

// runList executes the list command logic.
// This is separated from the RunE closure to improve testability.
func runList(cmd *cobra.Command, cfg Config, opts listOptions) error {
	// Parse every filter before hitting the network
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	filters, err := opts.filters()
	if err != nil {
		return err
	}
	var where *experiment.Expression
	if opts.where != "" {
		if where, err = experiment.CompileExpression(opts.where); err != nil {
			return err
		}
	}

	collection, err := fetch(cmd, cfg, opts.strict)
	if err != nil {
		return err
	}

	collection = collection.Filter(filters...)
	if where != nil {
		if collection, err = collection.Where(where); err != nil {
			return err
		}
	}

	return write(cmd, cfg, opts.format, opts.outputPath, collection.Experiments())
}

// filters converts the flag values to collection filters, in flag order.
func (o listOptions) filters() ([]experiment.FilterFunc, error) {
	var filters []experiment.FilterFunc
	if len(o.types) > 0 {
		filters = append(filters, experiment.ByType(o.types...))
	}
	if o.slug != "" {
		filters = append(filters, experiment.BySlug(o.slug))
	}
	if o.launched {
		filters = append(filters, experiment.ByEverLaunched())
	}
	if o.startedSince != "" {
		since, err := flags.ParseTime(o.startedSince)
		if err != nil {
			return nil, fmt.Errorf("invalid --started-since: %w", err)
		}
		filters = append(filters, experiment.ByStartedSince(since))
	}
	if o.endsOnOrAfter != "" {
		after, err := flags.ParseTime(o.endsOnOrAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid --ends-on-or-after: %w", err)
		}
		filters = append(filters, experiment.ByEndOnOrAfter(after))
	}

	return filters, nil
}

// fetch retrieves the experiments. Records that could not be decoded are reported as an
// error in strict mode and logged otherwise.
func fetch(cmd *cobra.Command, cfg Config, strict bool) (*experiment.Collection, error) {
	deps := cfg.deps()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()

	result, err := deps.Fetcher(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch experiments: %w", err)
	}

	if len(result.Skipped) > 0 {
		if strict {
			errs := lo.Map(result.Skipped, func(e *experimenter.RecordError, _ int) error { return e })

			return nil, fmt.Errorf("%d experiment records could not be decoded: %w",
				len(result.Skipped), errors.Join(errs...))
		}
		cfg.Logger.Warnw("Some experiment records could not be decoded and were skipped",
			"skipped", len(result.Skipped))
	}

	return result.Collection, nil
}

// write renders the experiments and prints them or saves them to outputPath.
func write(cmd *cobra.Command, cfg Config, format, outputPath string, experiments []experiment.Experiment) error {
	b, err := render(format, experiments)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(b)

		return err
	}

	if err := cfg.deps().FileWriter(outputPath, b); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	cmd.Printf("Wrote %d experiments to %s\n", len(experiments), outputPath)

	return nil
}
