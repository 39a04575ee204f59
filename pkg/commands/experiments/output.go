package experiments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/experimenter-go/experiment"
	"github.com/smartcontractkit/experimenter-go/pkg/commands/flags"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
)

var formats = []string{FormatTable, FormatJSON, FormatYAML, FormatTOML}

// tomlDocument is the top level TOML table. TOML documents cannot be arrays.
type tomlDocument struct {
	Experiments []experiment.Experiment `toml:"experiments"`
}

// validateFormat returns an error if the format is not supported.
func validateFormat(format string) error {
	if !lo.Contains(formats, format) {
		return fmt.Errorf("unsupported format %q, must be one of: %s", format, strings.Join(formats, ", "))
	}

	return nil
}

// render encodes the experiments in the given format.
func render(format string, experiments []experiment.Experiment) ([]byte, error) {
	switch format {
	case FormatTable:
		return renderTable(experiments)
	case FormatJSON:
		b, err := json.MarshalIndent(experiments, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experiments to json: %w", err)
		}

		return append(b, '\n'), nil
	case FormatYAML:
		b, err := yaml.Marshal(experiments)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experiments to yaml: %w", err)
		}

		return b, nil
	case FormatTOML:
		b, err := toml.Marshal(tomlDocument{Experiments: experiments})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experiments to toml: %w", err)
		}

		return b, nil
	default:
		return nil, validateFormat(format)
	}
}

func renderTable(experiments []experiment.Experiment) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "SLUG\tTYPE\tSTATUS\tSTART\tEND\tENROLLMENT\tREFERENCE\tBRANCHES")
	for _, ex := range experiments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			ex.Slug(),
			ex.Type,
			lo.FromPtrOr(ex.Status, "-"),
			formatDate(ex.StartDate),
			formatDate(ex.EndDate),
			lo.Ternary(ex.ProposedEnrollment == nil, "-", strconv.Itoa(lo.FromPtr(ex.ProposedEnrollment))),
			lo.FromPtrOr(ex.ReferenceBranch, "-"),
			len(ex.Branches),
		)
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}

	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(flags.DateLayout)
}
