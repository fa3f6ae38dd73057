package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/sheet-to-bq/internal/api/handlers"
	"github.com/dvloznov/sheet-to-bq/internal/api/middleware"
	"github.com/dvloznov/sheet-to-bq/internal/config"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
)

func main() {
	bootLog := logger.New()
	if err := config.LoadDotEnv(); err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat)

	ingestHandler := handlers.NewIngestHandler(handlers.RunWithConfig(cfg), log)

	// Create router
	mux := http.NewServeMux()
	mux.Handle("/", ingestHandler)
	mux.Handle("/ingest", ingestHandler)
	mux.HandleFunc("/health", handlers.Health)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Chain(mux, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("table", cfg.TableRef()).
			Str("spreadsheet_id", cfg.SpreadsheetID).
			Msg("Starting ingest server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
