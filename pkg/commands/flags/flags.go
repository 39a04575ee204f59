// Package flags provides reusable flag helpers for CLI commands.
//
// This package should only contain common flags that can be used by multiple commands
// to ensure unified naming and consistent behavior across the CLI.
// Command-specific flags should be defined locally in the command file.
package flags

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// DateLayout is the short date form accepted by ParseTime in addition to RFC3339.
const DateLayout = "2006-01-02"

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// Format adds the --format/-f flag selecting how experiments are rendered.
// Retrieve the value with cmd.Flags().GetString("format").
//
// Usage:
//
//	flags.Format(cmd, "table")
//	// later in RunE:
//	format, _ := cmd.Flags().GetString("format")
func Format(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("format", "f", defaultValue, "Output format: table, json, yaml or toml")
}

// Output adds the --out/-o flag for specifying output file path.
// Retrieve the value with cmd.Flags().GetString("out").
//
// Usage:
//
//	flags.Output(cmd, "")
//	// later in RunE:
//	outPath, _ := cmd.Flags().GetString("out")
func Output(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("out", "o", defaultValue, "Output file path. Prints to stdout when empty")
}

// ParseTime parses an RFC3339 timestamp or a YYYY-MM-DD date. Dates are midnight UTC and
// timestamps are converted to UTC.
func ParseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339 or %s", value, DateLayout)
	}

	return t, nil
}
