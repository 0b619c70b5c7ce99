package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/pinvec/conformance"
	"github.com/roach88/pinvec/internal/refvec"
	"github.com/roach88/pinvec/internal/store"
)

// ScenariosOptions holds flags for the scenarios command.
type ScenariosOptions struct {
	*RootOptions
	Container string
	Capacity  int
	Filter    string // scenario filter (glob pattern)
	Database  string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name     string    `json:"name"`
	RunID    string    `json:"run_id"`
	Pass     bool      `json:"pass"`
	Steps    int       `json:"steps"`
	Errors   []string  `json:"errors,omitempty"`
	Recorded *Recorded `json:"recorded,omitempty"`
}

// ScenariosResult holds the overall scenarios result.
type ScenariosResult struct {
	Container string           `json:"container"`
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenariosOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenarios <scenarios-dir>",
		Short: "Run scripted mutation scenarios",
		Long: `Run scripted mutation scenarios (YAML) against a bundled container.

Every step is checked against the guarantee of its operation using tokens
captured immediately before the step. A scenario passes when no guarantee
is violated, no precondition misbehaves and no step errors.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenario, etc.)

Examples:
  pinvet scenarios ./scenarios
  pinvet scenarios ./scenarios --container fixed --capacity 64
  pinvet scenarios ./scenarios --filter "grow-*" --format json
  pinvet scenarios ./scenarios --db ./pinvet.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Container, "container", "paged", "container to run against")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 1024, "capacity of fixed and faulty containers")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern on the scenario name")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record each scenario run in this SQLite database")

	return cmd
}

func runScenarios(opts *ScenariosOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	factory, err := refvec.Lookup(opts.Container, opts.Capacity)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid container", err)
	}

	scenarios, err := conformance.LoadScenarioDir(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	result := ScenariosResult{
		Container: opts.Container,
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	if len(scenarios) == 0 {
		if opts.Format == "json" {
			return outputScenariosJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	ctx := context.Background()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	// Runs of one invocation share a short batch prefix and are numbered in
	// file order.
	ids := conformance.SequentialRunIDs(uuid.NewString()[:7])
	w := cmd.OutOrStdout()
	for _, s := range scenarios {
		report := conformance.RunScenario(factory, s,
			conformance.WithName(opts.Container),
			conformance.WithLogger(logger),
			conformance.WithIDGenerator(ids),
		)

		sr := ScenarioResult{Name: s.Name, RunID: report.RunID, Pass: report.Conformant(), Steps: len(report.Steps)}
		if err := report.Err(); err != nil {
			sr.Errors = findingMessages(report)
		}
		if st != nil {
			sr.Recorded, err = recordTo(ctx, st, store.KindScenario, report)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to record run", err)
			}
		}
		result.Scenarios = append(result.Scenarios, sr)

		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if opts.Format != "json" {
			if sr.Pass {
				fmt.Fprintf(w, "✓ %s (%d steps)\n", s.Name, sr.Steps)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	if opts.Format == "json" {
		return outputScenariosJSON(cmd, result)
	}
	return outputScenariosText(cmd, result)
}

func findingMessages(report *conformance.Report) []string {
	var out []string
	for _, v := range report.Violations {
		out = append(out, v.Error())
	}
	for _, p := range report.Preconditions {
		out = append(out, p.Error())
	}
	for _, e := range report.ScenarioErrors {
		out = append(out, e.Error())
	}
	for _, c := range report.CapabilityIssues {
		out = append(out, c.Error())
	}
	return out
}

// outputScenariosJSON outputs the scenarios result as JSON.
func outputScenariosJSON(cmd *cobra.Command, result ScenariosResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputScenariosText outputs the scenarios summary as text.
func outputScenariosText(cmd *cobra.Command, result ScenariosResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scenario Summary (%s): %d passed, %d failed, %d total\n",
		result.Container, result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
