package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flatsync/flatsync/internal/manifest"
	"github.com/flatsync/flatsync/internal/watcher"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Journal string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: "Apply a manifest and re-apply whenever a target changes",
		Long: `Run one apply pass, then keep watching the involved targets and re-run
the pass when a target is edited externally. Stops on SIGINT/SIGTERM.

Each pass starts a fresh generation, so external edits are re-read in
full and merged with the manifest's desired state.

Example:
  flatsync watch hosts.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite flush journal (optional)")

	return cmd
}

func runWatch(opts *WatchOptions, manifestPath string, out io.Writer) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	applyOpts := &ApplyOptions{RootOptions: opts.RootOptions, Journal: opts.Journal}
	pass := func() {
		if err := runApply(applyOpts, manifestPath, out); err != nil {
			slog.Error("apply pass failed", "error", err)
			fmt.Fprintf(os.Stderr, "apply pass failed: %v\n", err)
		}
	}

	pass()

	targets := []string{m.DefaultTarget}
	for _, def := range m.Records {
		if t := def.Target(); t != "" {
			targets = append(targets, t)
		}
	}

	w, err := watcher.New(targets)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create watcher", err)
	}
	if err := w.Start(); err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	defer func() {
		if stopErr := w.Stop(); stopErr != nil {
			slog.Error("error stopping watcher", "error", stopErr)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	slog.Info("watching targets", "count", len(targets))
	for {
		select {
		case <-sig:
			slog.Info("watch stopping: signal received")
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			slog.Info("target changed, re-applying", "target", ev.Target)
			pass()

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}
