// Package main provides the entry point for the literature search service server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scholia/literature-search-service/internal/config"
	"github.com/scholia/literature-search-service/internal/database"
	"github.com/scholia/literature-search-service/internal/llm"
	"github.com/scholia/literature-search-service/internal/observability"
	"github.com/scholia/literature-search-service/internal/providers/ragserver"
	"github.com/scholia/literature-search-service/internal/providers/semanticscholar"
	"github.com/scholia/literature-search-service/internal/recommend"
	"github.com/scholia/literature-search-service/internal/repository"
	"github.com/scholia/literature-search-service/internal/search"
	httpserver "github.com/scholia/literature-search-service/internal/server/http"
	"github.com/scholia/literature-search-service/internal/similarity"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("literature-search-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Create repositories over the citation-graph store.
	citationRepo := repository.NewPgCitationRepository(db)
	collectionRepo := repository.NewPgCollectionRepository(db)

	metrics := observability.NewMetrics("litsearch")

	// Create provider clients.
	ragClient := ragserver.NewClient(ragserver.Config{
		BaseURL:   cfg.Providers.RAGBackend.BaseURL,
		Timeout:   cfg.Providers.RAGBackend.Timeout,
		RateLimit: cfg.Providers.RAGBackend.RateLimit,
		BurstSize: cfg.Providers.RAGBackend.BurstSize,
	}, nil, metrics)

	scholarClient := semanticscholar.NewClient(semanticscholar.Config{
		BaseURL:    cfg.Providers.SemanticScholar.BaseURL,
		APIKey:     cfg.Providers.SemanticScholar.APIKey,
		Timeout:    cfg.Providers.SemanticScholar.Timeout,
		RateLimit:  cfg.Providers.SemanticScholar.RateLimit,
		BurstSize:  cfg.Providers.SemanticScholar.BurstSize,
		MaxResults: cfg.Providers.SemanticScholar.MaxResults,
	}, nil, metrics)

	// Create the LLM synthesizer.
	synthesizer, err := llm.NewAnswerSynthesizer(llm.FactoryConfig{
		Provider:    cfg.LLM.Provider,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			Model:   cfg.LLM.Anthropic.Model,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
		},
	}, metrics)
	if err != nil {
		return fmt.Errorf("create answer synthesizer: %w", err)
	}
	logger.Info().
		Str("provider", synthesizer.Provider()).
		Str("model", synthesizer.Model()).
		Msg("LLM synthesizer initialized")

	// Assemble the search pipeline and recommendation engine.
	grouper := search.NewGrouper(logger)
	graphBuilder := similarity.NewGraphBuilder(cfg.Similarity.Threshold, logger)
	orchestrator := search.NewOrchestrator(ragClient, scholarClient, synthesizer, grouper, graphBuilder, logger)
	engine := recommend.NewEngine(citationRepo, logger)

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	httpSrv := httpserver.NewServer(
		httpCfg,
		orchestrator,
		engine,
		citationRepo,
		collectionRepo,
		db,
		metrics,
		logger,
	)

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", httpCfg.Address).
		Msg("literature-search-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down literature-search-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("literature-search-service shutdown complete")
	return nil
}
