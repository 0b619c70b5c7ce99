package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pinvec/conformance"
	"github.com/roach88/pinvec/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Name string      `json:"name,omitempty"`
	Runs []store.Run `json:"runs"`
}

// Recorded describes a run written to the history database.
type Recorded struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Previous string `json:"previous,omitempty"` // run ID of the previous run with the same name
	Changed  bool   `json:"changed"`            // findings differ from the previous run
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "List recorded verification runs",
		Long: `List runs recorded with check --db or scenarios --db, oldest first.

With a name, only runs of that container (or container/scenario) are shown.
With --verbose, the violations of each failing run are listed.

Examples:
  pinvet history --db ./pinvet.db
  pinvet history --db ./pinvet.db paged --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runHistory(opts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, name string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ReadRuns(ctx, name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   HistoryResult{Name: name, Runs: runs},
		})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		formatRun(w, run)
		if !opts.Verbose || run.Violations == 0 {
			continue
		}
		violations, err := st.ReadViolations(ctx, run.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read violations", err)
		}
		for _, v := range violations {
			fmt.Fprintf(w, "      %s %s(n=%d, m=%d, p=%d) [%s]: position %d (%d of %d moved)\n",
				v.Guarantee, v.Op, v.N, v.M, v.P, v.Scenario, v.Position, v.Moved, v.Protected)
		}
	}
	return nil
}

func formatRun(w io.Writer, run store.Run) {
	mark := "✓"
	switch {
	case !run.Passed:
		mark = "✗"
	case !run.Conformant:
		mark = "~"
	}
	fmt.Fprintf(w, "  [%d] %s %s %s (%s): %d violations, %d precondition issues, %d scenario errors  %s\n",
		run.Seq, mark, run.Name, truncateID(run.RunID), run.Kind,
		run.Violations, run.Preconditions, run.ScenarioErrors, truncateID(run.Fingerprint))
}

// recordRun writes report to the database at path and compares its
// findings with the previous run of the same name.
func recordRun(path, kind string, report *conformance.Report) (*Recorded, error) {
	ctx := context.Background()

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	return recordTo(ctx, st, kind, report)
}

func recordTo(ctx context.Context, st *store.Store, kind string, report *conformance.Report) (*Recorded, error) {
	previous, found, err := st.LatestRun(ctx, report.Name)
	if err != nil {
		return nil, err
	}

	run, err := st.WriteRun(ctx, kind, report)
	if err != nil {
		return nil, err
	}

	rec := &Recorded{RunID: run.RunID, Seq: run.Seq}
	if found && previous.RunID != run.RunID {
		rec.Previous = previous.RunID
		rec.Changed = previous.Fingerprint != run.Fingerprint
	}
	return rec, nil
}

// describeRecorded renders a one-line note about a recorded run.
func describeRecorded(rec *Recorded) string {
	switch {
	case rec.Previous == "":
		return fmt.Sprintf("recorded run %d (first run of this name)", rec.Seq)
	case rec.Changed:
		return fmt.Sprintf("recorded run %d (findings changed since %s)", rec.Seq, truncateID(rec.Previous))
	default:
		return fmt.Sprintf("recorded run %d (findings unchanged since %s)", rec.Seq, truncateID(rec.Previous))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
