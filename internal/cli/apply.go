package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flatsync/flatsync/internal/accessor"
	"github.com/flatsync/flatsync/internal/engine"
	"github.com/flatsync/flatsync/internal/journal"
	"github.com/flatsync/flatsync/internal/manifest"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Journal string
	DryRun  bool
}

// ApplyResult summarizes one synchronization pass.
type ApplyResult struct {
	Generation string   `json:"generation"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Destroyed  int      `json:"destroyed"`
	Written    []string `json:"written"`
	DryRun     bool     `json:"dry_run,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Synchronize targets with a manifest",
		Long: `Load a manifest (YAML or CUE), read every involved target, and apply
the differences: create missing records, update drifted fields, remove
records marked absent. Only targets with pending changes are rewritten,
each backed up once first.

Example:
  flatsync apply hosts.yaml
  flatsync apply --journal ./flatsync.db --dry-run hosts.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite flush journal (optional)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report pending changes without writing")

	return cmd
}

func runApply(opts *ApplyOptions, manifestPath string, out io.Writer) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	var engOpts []engine.Option
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithJournal(j))
	}

	eng, err := newEngine(m, engOpts...)
	if err != nil {
		return err
	}

	result, err := converge(eng, m, opts.DryRun)
	if err != nil {
		return WrapExitError(ExitFailure, "synchronization failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: out}
	return formatter.SuccessText(applyLines(result), result)
}

// newEngine builds an engine over disk accessors for a manifest.
func newEngine(m *manifest.Manifest, opts ...engine.Option) (*engine.Engine, error) {
	p, err := m.Parser()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid manifest format", err)
	}
	opts = append(opts, engine.WithLogger(slog.Default()))
	return engine.New(p, accessor.NewDiskFactory(), m.DefaultTarget, opts...), nil
}

// converge runs one full pass: prefetch, bind, diff, flush.
func converge(eng *engine.Engine, m *manifest.Manifest, dryRun bool) (*ApplyResult, error) {
	if err := eng.PrefetchAll(m.Specs()); err != nil {
		return nil, err
	}

	result := &ApplyResult{Generation: eng.Generation(), DryRun: dryRun}
	handles := eng.Bind(m.Specs())

	for i, h := range handles {
		def := m.Records[i]
		switch {
		case def.Absent():
			if h.Exists() {
				if err := h.Destroy(); err != nil {
					return nil, err
				}
				result.Destroyed++
			}

		case !h.Exists():
			if err := h.Create(); err != nil {
				return nil, err
			}
			result.Created++

		default:
			updated := false
			for _, attr := range def.DeclaredFields() {
				want, _ := def.Declared(attr)
				cur, applicable := h.Get(attr)
				if !applicable || cur == want {
					continue
				}
				if err := h.Set(attr, want); err != nil {
					return nil, err
				}
				updated = true
			}
			if updated {
				result.Updated++
			}
		}
	}

	if dryRun {
		result.Written = eng.Dirty()
		return result, nil
	}

	dirtyAtEntry := eng.Dirty()
	for _, h := range handles {
		if err := h.Flush(); err != nil {
			return nil, err
		}
	}
	result.Written = dirtyAtEntry

	return result, nil
}

func applyLines(r *ApplyResult) []string {
	verb := "written"
	if r.DryRun {
		verb = "pending"
	}
	lines := []string{
		fmt.Sprintf("generation %s: %d created, %d updated, %d destroyed",
			r.Generation, r.Created, r.Updated, r.Destroyed),
	}
	if len(r.Written) == 0 {
		lines = append(lines, fmt.Sprintf("no targets %s", verb))
		return lines
	}
	for _, target := range r.Written {
		lines = append(lines, fmt.Sprintf("%s: %s", verb, target))
	}
	return lines
}
