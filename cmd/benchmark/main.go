// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Seeds a scratch database, indexes it, asks every scenario and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/benchmarks/ragas"
	"github.com/harper/sqlrag/internal/config"
	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/database"
	"github.com/harper/sqlrag/internal/embedding"
	"github.com/harper/sqlrag/internal/llm"
	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/vectorstore"
)

func main() {
	testID := flag.String("test", "", "Run specific test (products, customers, large-orders, order-date). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	logger, err := newLogger(*verbose, os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loadDotEnv(logger, ".env")

	if err := run(logger, *testID, *outputPath, *verbose); err != nil {
		logger.Fatal("benchmark failed", zap.Error(err))
	}
	_ = logger.Sync()
}

// newLogger builds the benchmark logger; warnings only unless verbose
func newLogger(verbose bool, format string) (*zap.Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.New(level, format)
}

// loadDotEnv loads path into the environment, reporting whether it was found
func loadDotEnv(logger *zap.Logger, path string) bool {
	if err := godotenv.Load(path); err != nil {
		logger.Info("no .env file found, continuing with the process environment", zap.Error(err))
		return false
	}
	return true
}

func run(logger *zap.Logger, testID, outputPath string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireGeneration(); err != nil {
		return err
	}

	// Benchmarks run against scratch stores so they never touch real data.
	scratch, err := os.MkdirTemp("", "sqlrag-bench-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()
	cfg.DataDir = scratch
	cfg.DBPath = filepath.Join(scratch, "test.sqlite3")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	db.SetLogger(logger)

	if _, err := db.Seed(ctx, database.SeedOptions{}); err != nil {
		return err
	}

	embedder, err := embedding.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	store, err := vectorstore.OpenFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	generator, err := llm.NewClientWithConfig(llm.ConfigFrom(cfg), logger)
	if err != nil {
		return err
	}

	pipeline := core.NewPipeline(db, vectorstore.NewCollection(store, embedder, logger), generator, logger)
	if _, err := pipeline.IndexSchema(ctx, core.IndexOptions{}); err != nil {
		return err
	}

	fmt.Println("========================================")
	fmt.Println("sqlrag RAGAS Benchmarks")
	fmt.Println("========================================")
	logger.Info("benchmark stores ready", zap.String("dir", scratch), zap.String("model", generator.Model()))

	scenarios := ragas.GetAllTests()
	if testID != "" {
		scenario, ok := ragas.GetTest(testID)
		if !ok {
			return fmt.Errorf("unknown test ID: %s", testID)
		}
		scenarios = []ragas.TestScenario{scenario}
	}

	runner := ragas.NewBenchmarkRunner(pipeline, verbose, os.Stdout)
	results, err := runner.RunTests(ctx, scenarios)
	if err != nil {
		return err
	}

	summary := ragas.Summarize(results)

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
	}
	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.Total)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, outputPath); err != nil {
		return err
	}
	fmt.Printf("Results exported to: %s\n", outputPath)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d tests failed", summary.Failed, summary.Total)
	}
	return nil
}
