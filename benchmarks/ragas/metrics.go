// ABOUTME: RAGAS metrics implementation for faithfulness and context recall
// ABOUTME: Deterministic evaluation of retrieved context and result rows against ground truth

package ragas

import (
	"fmt"
	"strings"

	"github.com/harper/sqlrag/internal/models"
)

// PassThreshold is the minimum score on both metrics for a PASS
const PassThreshold = 0.9

// MetricsCalculator computes RAGAS scores for benchmark tests
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0)
// Faithfulness = do the executed rows contain what the question asked for, and nothing it excluded?
func (m *MetricsCalculator) CalculateFaithfulness(
	response string,
	expectedInResponse []string,
	forbiddenInResponse []string,
) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingItems := []string{}
	for _, expected := range expectedInResponse {
		if !strings.Contains(responseUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingItems) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Perfect faithfulness - result matches expected ground truth"
	case len(missingItems) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	case len(missingItems) > 0:
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	default:
		return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
	}
}

// CalculateContextRecall computes context recall score (0.0-1.0)
// Context Recall = was the right schema descriptor retrieved?
func (m *MetricsCalculator) CalculateContextRecall(
	retrievedContext []string,
	expectedContextItems []string,
) (float64, string) {
	if len(expectedContextItems) == 0 {
		return 1.0, "No context retrieval required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	foundCount := 0
	missingItems := []string{}
	for _, expectedItem := range expectedContextItems {
		if strings.Contains(allContext, strings.ToUpper(expectedItem)) {
			foundCount++
		} else {
			missingItems = append(missingItems, expectedItem)
		}
	}

	recall := float64(foundCount) / float64(len(expectedContextItems))
	if recall == 1.0 {
		return 1.0, "Perfect context recall - all expected items retrieved"
	}

	return recall, fmt.Sprintf(
		"Partial context recall (%.2f) - missing items: %v",
		recall, missingItems,
	)
}

// EvaluateTest scores one answered scenario
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, answer *models.Answer) TestResult {
	rendered := RenderRows(answer.Result)

	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		rendered,
		scenario.GroundTruth.ExpectedInResult,
		scenario.GroundTruth.ForbiddenInResult,
	)

	recall, recallDetail := m.CalculateContextRecall(
		[]string{answer.Context},
		scenario.GroundTruth.ExpectedContextItems,
	)

	status := "FAIL"
	if faithfulness >= PassThreshold && recall >= PassThreshold {
		status = "PASS"
	}

	return TestResult{
		TestID:             scenario.ID,
		TestName:           scenario.Name,
		FaithfulnessScore:  faithfulness,
		ContextRecallScore: recall,
		OverallScore:       (faithfulness + recall) / 2.0,
		Status:             status,
		Details: map[string]interface{}{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"context":             answer.Context,
			"sql":                 answer.SQL,
			"row_count":           answer.Result.RowCount(),
		},
	}
}

// RenderRows flattens result rows into one searchable string
func RenderRows(result *models.QueryResult) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, row := range result.Rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			_, _ = fmt.Fprintf(&b, "%v", cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}
