package eval

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jinno0sec/copilot-instruction-eval/internal/metrics"
)

// Reporter prints evaluation results to stdout.
type Reporter struct {
	verbose bool
}

// NewReporter creates a reporter. Verbose mode adds per-instruction
// diffs of each response against the expected output when response text
// is available.
func NewReporter(verbose bool) *Reporter {
	return &Reporter{verbose: verbose}
}

// Report prints the per-instruction table and the run summary.
func (r *Reporter) Report(run *Run, instructions []*Instruction) {
	if len(run.Results) == 0 {
		fmt.Println("No results to report")
		return
	}

	fmt.Printf("\nEvaluation Results (run %s)\n", run.RunID)
	fmt.Println(strings.Repeat("=", 80))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tType\tDifficulty\tv1\tv2\tv1 Jaccard\tv2 Jaccard\tv1 BLEU\tv2 BLEU\tv1 ROUGE-L\tv2 ROUGE-L\tv1 Time\tv2 Time")
	for _, result := range run.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			result.InstructionID,
			result.InstructionType,
			result.Difficulty,
			statusMark(result.V1Success),
			statusMark(result.V2Success),
			scoreCell(result.V1Metrics, func(m *metrics.Metrics) float64 { return m.JaccardSimilarity }),
			scoreCell(result.V2Metrics, func(m *metrics.Metrics) float64 { return m.JaccardSimilarity }),
			scoreCell(result.V1Metrics, func(m *metrics.Metrics) float64 { return m.BLEUScore }),
			scoreCell(result.V2Metrics, func(m *metrics.Metrics) float64 { return m.BLEUScore }),
			scoreCell(result.V1Metrics, func(m *metrics.Metrics) float64 { return m.ROUGEL }),
			scoreCell(result.V2Metrics, func(m *metrics.Metrics) float64 { return m.ROUGEL }),
			scoreCell(result.V1Metrics, func(m *metrics.Metrics) float64 { return m.ResponseTime }),
			scoreCell(result.V2Metrics, func(m *metrics.Metrics) float64 { return m.ResponseTime }),
		)
	}
	w.Flush()

	r.reportSummary(run)

	if r.verbose {
		r.reportDiffs(run, instructions)
	}
}

func (r *Reporter) reportSummary(run *Run) {
	summary := Summarize(run.Results)

	fmt.Printf("\nSummary\n")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Total instructions: %d\n", summary.Total)
	fmt.Printf("Agent v1 success rate: %.1f%% (%d/%d)\n", summary.V1SuccessRate*100, summary.V1Succeeded, summary.Total)
	fmt.Printf("Agent v2 success rate: %.1f%% (%d/%d)\n", summary.V2SuccessRate*100, summary.V2Succeeded, summary.Total)
	fmt.Printf("Improvement: %+.1f points\n", (summary.V2SuccessRate-summary.V1SuccessRate)*100)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMetric\tAgent v1\tAgent v2\tDifference")
	for _, row := range summary.MetricAverages {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%+.3f\n", row.Name, row.V1, row.V2, row.V2-row.V1)
	}
	w.Flush()
}

// reportDiffs prints response/expected diffs for instructions whose
// responses were retained in memory. Persisted runs carry no response
// text, so loaded runs report tables only.
func (r *Reporter) reportDiffs(run *Run, instructions []*Instruction) {
	expected := make(map[string]string, len(instructions))
	for _, ins := range instructions {
		expected[ins.ID] = ins.ExpectedOutput
	}

	for _, result := range run.Results {
		want, ok := expected[result.InstructionID]
		if !ok {
			continue
		}
		if result.V1Response != "" {
			fmt.Printf("\n--- %s: agent v1 response vs expected ---\n", result.InstructionID)
			fmt.Print(responseDiff(want, result.V1Response))
		}
		if result.V2Response != "" {
			fmt.Printf("\n--- %s: agent v2 response vs expected ---\n", result.InstructionID)
			fmt.Print(responseDiff(want, result.V2Response))
		}
	}
}

func statusMark(success bool) string {
	if success {
		return "PASS"
	}
	return "FAIL"
}

func scoreCell(m *metrics.Metrics, pick func(*metrics.Metrics) float64) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", pick(m))
}

// Summary aggregates a run for reporting.
type Summary struct {
	Total          int
	V1Succeeded    int
	V2Succeeded    int
	V1SuccessRate  float64
	V2SuccessRate  float64
	MetricAverages []MetricAverage
}

// MetricAverage is the mean of one metric over the successful results of
// each agent.
type MetricAverage struct {
	Name string
	V1   float64
	V2   float64
}

var summaryMetrics = []struct {
	name string
	pick func(*metrics.Metrics) float64
}{
	{"jaccard_similarity", func(m *metrics.Metrics) float64 { return m.JaccardSimilarity }},
	{"bleu_score", func(m *metrics.Metrics) float64 { return m.BLEUScore }},
	{"rouge_1", func(m *metrics.Metrics) float64 { return m.ROUGE1 }},
	{"rouge_2", func(m *metrics.Metrics) float64 { return m.ROUGE2 }},
	{"rouge_l", func(m *metrics.Metrics) float64 { return m.ROUGEL }},
	{"response_time", func(m *metrics.Metrics) float64 { return m.ResponseTime }},
}

// Summarize computes success rates and per-metric averages.
func Summarize(results []*InstructionResult) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		if result.V1Success {
			summary.V1Succeeded++
		}
		if result.V2Success {
			summary.V2Succeeded++
		}
	}
	if summary.Total > 0 {
		summary.V1SuccessRate = float64(summary.V1Succeeded) / float64(summary.Total)
		summary.V2SuccessRate = float64(summary.V2Succeeded) / float64(summary.Total)
	}

	for _, sm := range summaryMetrics {
		summary.MetricAverages = append(summary.MetricAverages, MetricAverage{
			Name: sm.name,
			V1:   averageMetric(results, sm.pick, func(r *InstructionResult) *metrics.Metrics { return r.V1Metrics }),
			V2:   averageMetric(results, sm.pick, func(r *InstructionResult) *metrics.Metrics { return r.V2Metrics }),
		})
	}
	return summary
}

func averageMetric(results []*InstructionResult, pick func(*metrics.Metrics) float64, side func(*InstructionResult) *metrics.Metrics) float64 {
	total := 0.0
	count := 0
	for _, result := range results {
		if m := side(result); m != nil {
			total += pick(m)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
