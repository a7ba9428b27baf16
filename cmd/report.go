package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinno0sec/copilot-instruction-eval/internal/eval"
)

var reportCmd = &cobra.Command{
	Use:   "report [results-file]",
	Short: "Summarize a persisted evaluation run",
	Long: `Read a previously persisted results file and print the
per-instruction table and run summary.

Example:
  copilot-instruction-eval report results/evaluation_results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	run, err := eval.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	reporter := eval.NewReporter(false)
	reporter.Report(run, nil)
	return nil
}
