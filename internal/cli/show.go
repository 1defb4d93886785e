package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flatsync/flatsync/internal/manifest"
	"github.com/flatsync/flatsync/internal/record"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Target string
	All    bool
}

// ShownRecord is one record in show output.
type ShownRecord struct {
	Target string            `json:"target"`
	Name   string            `json:"name,omitempty"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <manifest>",
		Short: "List the records currently on disk",
		Long: `Read every target the manifest involves and print the parsed records,
without modifying anything. Comments and blank lines are skipped unless
--all is given.

Example:
  flatsync show hosts.yaml
  flatsync show --target /etc/hosts --all hosts.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "limit output to one target")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include comment and blank records")

	return cmd
}

func runShow(opts *ShowOptions, manifestPath string, out io.Writer) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	eng, err := newEngine(m)
	if err != nil {
		return err
	}
	if err := eng.PrefetchAll(m.Specs()); err != nil {
		return WrapExitError(ExitFailure, "failed to read targets", err)
	}

	var shown []ShownRecord
	for _, rec := range eng.Records() {
		if opts.Target != "" && rec.Target != opts.Target {
			continue
		}
		if !opts.All && rec.Kind != record.KindData {
			continue
		}
		shown = append(shown, ShownRecord{
			Target: rec.Target,
			Name:   rec.Name,
			Kind:   string(rec.Kind),
			Fields: rec.Fields,
		})
	}
	if shown == nil {
		shown = []ShownRecord{}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: out}
	return formatter.SuccessText(showLines(shown), shown)
}

func showLines(shown []ShownRecord) []string {
	if len(shown) == 0 {
		return []string{"no records"}
	}
	lines := make([]string, 0, len(shown))
	for _, rec := range shown {
		if rec.Kind != string(record.KindData) {
			lines = append(lines, fmt.Sprintf("%s  [%s]", rec.Target, rec.Kind))
			continue
		}
		var fields []string
		r := &record.Record{Fields: rec.Fields}
		for _, attr := range r.SortedFields() {
			fields = append(fields, fmt.Sprintf("%s=%s", attr, rec.Fields[attr]))
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s", rec.Target, rec.Name, strings.Join(fields, " ")))
	}
	return lines
}
