// ABOUTME: Pipeline wiring schema introspection, retrieval, generation and execution
// ABOUTME: Ask turns a natural-language question into executed SQL rows
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/llm"
	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/models"
	"github.com/harper/sqlrag/internal/vectorstore"
)

// DemoQuestion is the question asked by the demo command
const DemoQuestion = "give all product titles and their amount"

var (
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrNoGenerator   = errors.New("no language model configured")
	ErrEmptySQL      = errors.New("model returned no SQL")
)

// Database is the relational side of the pipeline
type Database interface {
	Schema(ctx context.Context) (models.SchemaDescriptor, error)
	Execute(ctx context.Context, sqlText string) (*models.QueryResult, error)
}

// HistoryRecorder persists the outcome of each ask
type HistoryRecorder interface {
	Record(ctx context.Context, entry *models.HistoryEntry) error
}

// IndexOptions controls IndexSchema
type IndexOptions struct {
	// Reset clears the collection before writing
	Reset bool
}

// Pipeline glues the database, vector collection and language model together
type Pipeline struct {
	db         Database
	collection *vectorstore.Collection
	generator  llm.Generator
	history    HistoryRecorder
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline. generator may be nil when only indexing.
func NewPipeline(db Database, collection *vectorstore.Collection, generator llm.Generator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		db:         db,
		collection: collection,
		generator:  generator,
		logger:     logging.OrNop(logger),
	}
}

// WithHistory attaches a history recorder
func (p *Pipeline) WithHistory(h HistoryRecorder) *Pipeline {
	p.history = h
	return p
}

// IndexSchema introspects the database and writes one descriptor per table
// into the vector collection
func (p *Pipeline) IndexSchema(ctx context.Context, opts IndexOptions) (models.SchemaDescriptor, error) {
	schema, err := p.db.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if opts.Reset {
		if err := p.collection.Store().Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset collection: %w", err)
		}
	}

	ids, texts := Describe(schema)
	if err := p.collection.Write(ctx, ids, texts); err != nil {
		return nil, fmt.Errorf("failed to index schema: %w", err)
	}

	p.logger.Info("indexed schema", zap.Strings("tables", schema.Names()))
	return schema, nil
}

// Retrieve returns the schema context most relevant to question
func (p *Pipeline) Retrieve(ctx context.Context, question string) (string, error) {
	docs, err := p.collection.Read(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve schema context: %w", err)
	}
	return strings.Join(docs, "\n"), nil
}

// GenerateSQL retrieves context for question and asks the model for SQL
func (p *Pipeline) GenerateSQL(ctx context.Context, question string) (schemaContext, sqlText string, err error) {
	if p.generator == nil {
		return "", "", ErrNoGenerator
	}

	schemaContext, err = p.Retrieve(ctx, question)
	if err != nil {
		return "", "", err
	}

	raw, err := p.generator.Generate(ctx, question, schemaContext)
	if err != nil {
		return schemaContext, "", fmt.Errorf("failed to generate SQL: %w", err)
	}

	sqlText = llm.StripMarkdownSQL(raw)
	if blankSQL(sqlText) {
		return schemaContext, sqlText, fmt.Errorf("%w: %q", ErrEmptySQL, raw)
	}
	p.logger.Debug("generated sql", zap.String("sql", sqlText))
	return schemaContext, sqlText, nil
}

// blankSQL reports whether sqlText holds nothing but whitespace and line comments
func blankSQL(sqlText string) bool {
	for _, line := range strings.Split(sqlText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// Ask runs the full pipeline for question. On failure the returned Answer
// carries whatever was produced before the failing step.
func (p *Pipeline) Ask(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	answer := &models.Answer{Question: question}
	var err error

	answer.Context, answer.SQL, err = p.GenerateSQL(ctx, question)
	if err == nil {
		answer.Result, err = p.db.Execute(ctx, answer.SQL)
		if err != nil {
			err = fmt.Errorf("failed to execute generated SQL: %w", err)
		}
	}

	p.record(ctx, answer, err)
	return answer, err
}

func (p *Pipeline) record(ctx context.Context, answer *models.Answer, askErr error) {
	if p.history == nil {
		return
	}

	entry := &models.HistoryEntry{
		Question: answer.Question,
		Context:  answer.Context,
		SQL:      answer.SQL,
		RowCount: answer.Result.RowCount(),
	}
	if askErr != nil {
		entry.Error = askErr.Error()
	}

	// History is best effort; a failed write never fails the ask.
	if err := p.history.Record(ctx, entry); err != nil {
		p.logger.Warn("failed to record history", zap.Error(err))
	}
}
