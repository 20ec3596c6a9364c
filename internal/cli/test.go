package cli

import (
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool
	Filter    string
	GoldenDir string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string   `json:"name"`
	Pass      bool     `json:"pass"`
	ErrorKind string   `json:"error_kind,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-glob>",
		Short: "Run translation scenarios",
		Long: `Run YAML translation scenarios through reader, translator and renderer.

Each scenario's assertions and expected error kind are checked; scenarios
marked golden are compared against <golden-dir>/<name>.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (bad glob, unreadable scenario, etc.)

Examples:
  luxql test 'scenarios/**/*.yaml'
  luxql test 'scenarios/**/*.yaml' --filter "item_*"
  luxql test 'scenarios/**/*.yaml' --update
  luxql test 'scenarios/**/*.yaml' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", harness.GoldenDir, "golden file directory")

	return cmd
}

func runTests(opts *TestOptions, pattern string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	if opts.Filter != "" && !doublestar.ValidatePattern(opts.Filter) {
		return e.formatter.Fail(ExitCommandError, ErrCodeInput, fmt.Errorf("invalid filter pattern: %s", opts.Filter))
	}

	scenarios, err := harness.LoadScenarios(pattern)
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("failed to load scenarios: %w", err))
	}

	var selected []*harness.Scenario
	for _, sc := range scenarios {
		if opts.Filter != "" {
			if ok, _ := doublestar.Match(opts.Filter, sc.Name); !ok {
				continue
			}
		}
		selected = append(selected, sc)
	}

	h := harness.New(e.schema, harness.WithConfig(e.cfg.Translate), harness.WithLogger(e.logger))
	results, err := h.RunAll(selected)
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("scenario execution failed: %w", err))
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(results)),
		Total:     len(results),
	}
	for i, r := range results {
		sc := selected[i]
		if opts.Update {
			if err := harness.UpdateGolden(opts.GoldenDir, sc, r); err != nil {
				r.AddError(fmt.Sprintf("golden update failed: %v", err))
			}
		} else {
			harness.CheckGolden(opts.GoldenDir, sc, r)
		}

		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:      r.Name,
			Pass:      r.Pass,
			ErrorKind: r.ErrorKind,
			Warnings:  r.Warnings,
			Errors:    r.Errors,
		})
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := outputTestJSON(cmd, e.formatter.TraceID, result); err != nil {
			return err
		}
	} else {
		outputTestText(cmd, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func outputTestJSON(cmd *cobra.Command, traceID string, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{
		Status:  status,
		Data:    result,
		TraceID: traceID,
	})
}

func outputTestText(cmd *cobra.Command, result TestResult) {
	w := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
