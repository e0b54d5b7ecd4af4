// Package main provides the MCP server entry point for paper search.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/config"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	mcpserver "github.com/txltxl22/ai-paper-digest-sub001/internal/mcp"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/search"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/storage"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// stdout is the MCP stdio stream, so logs go to stderr.
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store := records.NewStore(cfg.PapersDir,
		records.WithLogger(logger),
		records.WithReadRetry(cfg.RecordReadRetry),
	)
	if err := store.Health(); err != nil {
		logger.Warn("Records directory not available yet, searches return nothing until it exists", "dir", cfg.PapersDir, "error", err)
	}

	builder := index.NewBuilder(store, logger)
	service := search.NewService(builder, logger)

	if cfg.Watch {
		invalidator := watch.New(cfg.PapersDir, service, watch.WithLogger(logger))
		if err := invalidator.Start(ctx); err != nil {
			logger.Warn("Record watcher disabled", "error", err)
		} else {
			defer invalidator.Close()
		}
	}

	serverCfg := &mcpserver.Config{
		Search:     service,
		RecordsDir: cfg.PapersDir,
		Logger:     logger,
	}

	// Vector search is optional; keyword search never depends on it.
	var vectors mcpserver.HealthChecker
	if cfg.VectorSearch {
		qdrant, err := storage.NewQdrantStorage(cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			logger.Warn("Vector search disabled", "error", err)
		} else {
			defer qdrant.Close()
			if err := qdrant.EnsureCollection(ctx); err != nil {
				return err
			}
			serverCfg.Related = qdrant
			vectors = qdrant
		}
	}

	server := mcpserver.NewServer(serverCfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store, vectors))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, &mcpserver.HTTPHandlerOptions{
		SessionTimeout: 30 * time.Minute,
		Logger:         logger,
	}))

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if cfg.ServerMode {
		logger.Info("Starting HTTP server", "addr", httpServer.Addr, "records", cfg.PapersDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	// Stdio mode still serves /health for local checks.
	go func() {
		logger.Info("Starting health server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Health server error", "error", err)
		}
	}()

	logger.Info("Starting paper digest MCP server (stdio mode)", "records", cfg.PapersDir)
	return server.Run(ctx)
}
