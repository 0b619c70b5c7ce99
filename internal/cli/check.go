package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/conformance"
	"github.com/roach88/pinvec/internal/refvec"
	"github.com/roach88/pinvec/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Len        int
	Sweep      int
	Capacity   int
	Guarantees []string
	Strict     bool
	Database   string
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Container string              `json:"container"`
	Digest    string              `json:"digest"`
	Passed    bool                `json:"passed"`
	Report    *conformance.Report `json:"report"`
	Recorded  *Recorded           `json:"recorded,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <container>",
		Short: "Verify a bundled container against G1-G4",
		Long: `Run the guarantee verifier against a bundled reference container.

Containers: fixed, paged, naive and faulty-<sabotage> where sabotage is a
"|"-separated list of grow, shrink, insert, remove, swap.

Exit codes:
  0 - No guarantee violated
  1 - Guarantee violated (or, with --strict, any finding)
  2 - Command error (unknown container, invalid flags, etc.)

Examples:
  pinvet check paged --len 500
  pinvet check naive --format json
  pinvet check faulty-remove --guarantee G4 --verbose
  pinvet check paged --db ./pinvet.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Len, "len", 64, "target length")
	cmd.Flags().IntVar(&opts.Sweep, "sweep", conformance.DefaultSweepLimit, "m and p values tried per base length")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 0, "capacity of fixed and faulty containers (default 2*len+2)")
	cmd.Flags().StringSliceVar(&opts.Guarantees, "guarantee", nil, "restrict to guarantees (G1,G2,G3,G4)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "also fail on precondition issues and scenario errors")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runCheck(opts *CheckOptions, container string, cmd *cobra.Command) error {
	if opts.Len < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--len must be non-negative, got %d", opts.Len))
	}

	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 2*opts.Len + 2
	}
	factory, err := refvec.Lookup(container, capacity)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid container", err)
	}

	verifyOpts := []conformance.Option{
		conformance.WithName(container),
		conformance.WithSweepLimit(opts.Sweep),
		conformance.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
	}
	if len(opts.Guarantees) > 0 {
		gs, err := parseGuarantees(opts.Guarantees)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --guarantee", err)
		}
		verifyOpts = append(verifyOpts, conformance.WithGuarantees(gs...))
	}

	report := conformance.Verify(factory, opts.Len, verifyOpts...)
	digest, err := report.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash report", err)
	}

	passed := report.Passed()
	if opts.Strict {
		passed = report.Conformant()
	}

	var recorded *Recorded
	if opts.Database != "" {
		recorded, err = recordRun(opts.Database, store.KindVerify, report)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	if opts.Format == "json" {
		if err := outputCheckJSON(cmd.OutOrStdout(), CheckResult{
			Container: container,
			Digest:    digest,
			Passed:    passed,
			Report:    report,
			Recorded:  recorded,
		}); err != nil {
			return err
		}
	} else {
		outputReportText(cmd.OutOrStdout(), report, opts.Verbose)
		fmt.Fprintf(cmd.OutOrStdout(), "digest: %s\n", digest)
		if recorded != nil {
			fmt.Fprintln(cmd.OutOrStdout(), describeRecorded(recorded))
		}
	}

	if !passed {
		return NewExitError(ExitFailure, report.Summary())
	}
	return nil
}

func parseGuarantees(names []string) ([]pinvec.Guarantee, error) {
	gs := make([]pinvec.Guarantee, 0, len(names))
	for _, name := range names {
		g, err := pinvec.ParseGuarantee(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, nil
}

func outputCheckJSON(w io.Writer, result CheckResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.Passed {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_GUARANTEE_VIOLATED",
			Message: result.Report.Summary(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputReportText prints a report summary followed by its findings.
// Precondition issues, scenario errors and capability issues are listed
// separately from violations; when verbose is false at most ten of each are shown.
func outputReportText(w io.Writer, report *conformance.Report, verbose bool) {
	mark := "✓"
	if !report.Passed() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, report.Summary())
	fmt.Fprintf(w, "  lengths: %v\n", report.Lengths)

	printFindings(w, "violations", verbose, report.Violations)
	printFindings(w, "precondition issues", verbose, report.Preconditions)
	printFindings(w, "scenario errors", verbose, report.ScenarioErrors)
	printFindings(w, "capability issues", verbose, report.CapabilityIssues)
}

const textFindingLimit = 10

func printFindings[E error](w io.Writer, title string, verbose bool, findings []E) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for i, f := range findings {
		if !verbose && i == textFindingLimit {
			fmt.Fprintf(w, "    ... %d more (use --verbose)\n", len(findings)-i)
			return
		}
		fmt.Fprintf(w, "    %s\n", f.Error())
	}
}
