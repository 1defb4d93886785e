package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/flatsync/flatsync/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Target  string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the flush journal",
		Long: `List recorded target writes, newest first. Requires a journal that was
populated by earlier apply runs.

Example:
  flatsync history --journal ./flatsync.db
  flatsync history --journal ./flatsync.db --target /etc/hosts --limit 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite flush journal (required)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "limit output to one target")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show (0 = all)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runHistory(opts *HistoryOptions, out io.Writer) error {
	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	entries, err := j.History(opts.Target, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		backup := ""
		if e.BackedUp {
			backup = " (backed up)"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %d records, %d bytes%s  gen %s",
			e.WrittenAt.Local().Format(time.DateTime), e.Target, e.Records, e.Bytes, backup, e.Generation))
	}
	if len(lines) == 0 {
		lines = []string{"no flushes recorded"}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: out}
	return formatter.SuccessText(lines, entries)
}
