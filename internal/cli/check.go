package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	odbc "github.com/slingdata-io/odbcconv"
	"github.com/slingdata-io/odbcconv/internal/cases"
)

// CaseResult holds the result of a single case.
type CaseResult struct {
	Name       string   `json:"name"`
	Pass       bool     `json:"pass"`
	Status     string   `json:"status"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// CheckResult holds the overall result of a case file.
type CheckResult struct {
	Cases  []CaseResult `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <cases.yaml>",
		Short: "Run a conversion case file",
		Long: `Run every case in a YAML case file and compare each outcome with
its expectations.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (unreadable or invalid case file)`,
		Example:       `  odbcconv check internal/cases/testdata/conversions.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	f, err := cases.LoadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeCaseFile, err.Error(), map[string]string{"path": path})
		return WrapExitError(ExitCommandError, "load case file", err)
	}
	logger, err := newLogger(rootOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeLogger, err.Error(), nil)
		return WrapExitError(ExitCommandError, "configure logging", err)
	}
	defer func() { _ = logger.Sync() }()

	conv := odbc.NewConverter(odbc.WithLogger(logger))
	result := CheckResult{
		Cases: make([]CaseResult, 0, len(f.Cases)),
		Total: len(f.Cases),
	}
	for _, res := range cases.RunAll(conv, f) {
		cr := CaseResult{
			Name:       res.Case.Name,
			Pass:       res.Passed(),
			Status:     res.Outcome.Status.String(),
			Mismatches: res.Mismatches,
		}
		if cr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	if err := formatter.Success(result, formatCheck(result)); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d cases failed", result.Failed, result.Total))
	}
	return nil
}

func formatCheck(r CheckResult) string {
	var sb strings.Builder
	for _, c := range r.Cases {
		if c.Pass {
			fmt.Fprintf(&sb, "PASS  %s\n", c.Name)
			continue
		}
		fmt.Fprintf(&sb, "FAIL  %s\n", c.Name)
		for _, m := range c.Mismatches {
			fmt.Fprintf(&sb, "      %s\n", m)
		}
	}
	fmt.Fprintf(&sb, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	return sb.String()
}
