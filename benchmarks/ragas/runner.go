// ABOUTME: Test runner for RAGAS benchmarks - asks each scenario and collects results
// ABOUTME: A failed ask scores zero instead of aborting the run

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harper/sqlrag/internal/models"
)

// Asker answers a natural-language question. core.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	asker   Asker
	metrics *MetricsCalculator
	verbose bool
	out     io.Writer
}

// NewBenchmarkRunner creates a new benchmark runner. Progress goes to out when verbose.
func NewBenchmarkRunner(asker Asker, verbose bool, out io.Writer) *BenchmarkRunner {
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		asker:   asker,
		metrics: NewMetricsCalculator(),
		verbose: verbose,
		out:     out,
	}
}

// RunTest executes a single benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) TestResult {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n", scenario.Description)
		fmt.Fprintf(r.out, "Question: %s\n\n", scenario.Question)
	}

	start := time.Now()
	answer, err := r.asker.Ask(ctx, scenario.Question)
	if err != nil {
		result := TestResult{
			TestID:       scenario.ID,
			TestName:     scenario.Name,
			Status:       "FAIL",
			ErrorMessage: err.Error(),
		}
		if answer != nil {
			result.Details = map[string]interface{}{"context": answer.Context, "sql": answer.SQL}
		}
		if r.verbose {
			fmt.Fprintf(r.out, "ERROR: %v\n", err)
		}
		return result
	}

	result := r.metrics.EvaluateTest(scenario, answer)
	result.Details["duration_ms"] = time.Since(start).Milliseconds()

	if r.verbose {
		fmt.Fprintf(r.out, "SQL: %s\n", answer.SQL)
		fmt.Fprintf(r.out, "Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Fprintf(r.out, "Overall Score: %.2f\n", result.OverallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result
}

// RunAllTests runs every scenario in order
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	return r.RunTests(ctx, GetAllTests())
}

// RunTests runs the given scenarios, stopping early only if ctx is cancelled
func (r *BenchmarkRunner) RunTests(ctx context.Context, scenarios []TestScenario) ([]TestResult, error) {
	results := make([]TestResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.RunTest(ctx, scenario))
	}
	return results, nil
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp string       `json:"timestamp"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Results   []TestResult `json:"results"`
}

// Summarize counts passes and failures
func Summarize(results []TestResult) Summary {
	s := Summary{
		Timestamp: time.Now().Format(time.RFC3339),
		Total:     len(results),
		Results:   results,
	}
	for _, result := range results {
		if result.Status == "PASS" {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// ExportResults writes the summary as JSON to outputPath
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}
