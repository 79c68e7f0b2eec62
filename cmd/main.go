package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Paddy1981/larun-space/internal/config"
	"github.com/Paddy1981/larun-space/internal/logging"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logger.Info("Starting LaRun analysis service",
		zap.String("port", cfg.Port),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("completion_configured", cfg.CompletionAPIKey != ""),
	)

	conversationStore, err := cfg.NewConversationStore(logger)
	if err != nil {
		logger.Fatal("Failed to open conversation store", zap.Error(err))
	}
	defer conversationStore.Close()

	cacheStore := cfg.NewCache(logger)
	defer cacheStore.Close()

	recorder := cfg.NewUsageRecorder(logger)
	defer recorder.Close()

	gateway := cfg.NewGateway(logger)
	catalogClient := cfg.NewCatalogClient(cacheStore, logger)
	tierReader := cfg.NewTierReader()
	sess := cfg.NewSession(conversationStore, gateway, recorder, tierReader, logger)

	handler := cfg.NewHandler(sess, conversationStore, catalogClient, recorder, tierReader, logger)

	router := cfg.NewRouter(handler, logger)

	srv := cfg.NewHTTPServer(router)

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
