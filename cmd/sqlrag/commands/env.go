// ABOUTME: Shared setup for commands: .env loading, config, logger and stores
// ABOUTME: Each command opens what it needs once and closes it when it returns
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/config"
	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/database"
	"github.com/harper/sqlrag/internal/embedding"
	"github.com/harper/sqlrag/internal/history"
	"github.com/harper/sqlrag/internal/llm"
	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/vectorstore"
)

// environment carries the configuration and logger for one command run
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
}

// loadEnvironment reads .env, loads config and builds the logger
func loadEnvironment() (*environment, error) {
	// A missing .env is fine; the variables may come from the shell.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}

	logger, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return &environment{cfg: cfg, logger: logger}, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
}

func (e *environment) openDatabase() (*database.DB, error) {
	db, err := database.Open(e.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	db.SetLogger(e.logger)
	return db, nil
}

func (e *environment) openHistory() (*history.Store, error) {
	return history.Open(e.cfg.HistoryPath)
}

// openCollection opens the configured vector store and pairs it with the
// embedder. With optionalEmbedder, missing embedding credentials leave a
// collection whose embed calls fail with the credential error.
func (e *environment) openCollection(optionalEmbedder bool) (*vectorstore.Collection, error) {
	var embedder embedding.Embedder
	if err := e.cfg.RequireEmbedding(); err != nil && optionalEmbedder {
		e.logger.Warn("embedding credentials missing, retrieval will be unavailable", zap.Error(err))
		embedder = embedding.Func(func(ctx context.Context, text string) ([]float32, error) {
			return nil, err
		})
	} else {
		embedder, err = embedding.NewFromConfig(e.cfg, e.logger)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
	}

	store, err := vectorstore.OpenFromConfig(e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	return vectorstore.NewCollection(store, embedder, e.logger), nil
}

func (e *environment) newGenerator() (*llm.Client, error) {
	if err := e.cfg.RequireGeneration(); err != nil {
		return nil, err
	}
	return llm.NewClientWithConfig(llm.ConfigFrom(e.cfg), e.logger)
}

// session is everything needed to run the pipeline for one command
type session struct {
	env        *environment
	db         *database.DB
	collection *vectorstore.Collection
	history    *history.Store
	pipeline   *core.Pipeline
}

// sessionOptions selects the optional parts of a session
type sessionOptions struct {
	generator bool
	history   bool
	// optionalEmbedder lets the session open without embedding credentials
	optionalEmbedder bool
}

func (e *environment) openSession(opts sessionOptions) (*session, error) {
	s := &session{env: e}

	var err error
	if s.db, err = e.openDatabase(); err != nil {
		return nil, err
	}

	if s.collection, err = e.openCollection(opts.optionalEmbedder); err != nil {
		s.close()
		return nil, err
	}

	var generator llm.Generator
	if opts.generator {
		client, err := e.newGenerator()
		if err != nil {
			s.close()
			return nil, err
		}
		generator = client
	}

	s.pipeline = core.NewPipeline(s.db, s.collection, generator, e.logger)

	if opts.history {
		if s.history, err = e.openHistory(); err != nil {
			s.close()
			return nil, err
		}
		s.pipeline.WithHistory(s.history)
	}

	return s, nil
}

func (s *session) close() {
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.env.logger.Warn("closing history", zap.Error(err))
		}
	}
	if s.collection != nil {
		if err := s.collection.Store().Close(); err != nil {
			s.env.logger.Warn("closing vector store", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.env.logger.Warn("closing database", zap.Error(err))
		}
	}
}
