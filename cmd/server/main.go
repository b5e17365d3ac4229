package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourusername/yt-fetch-go/api"
	"github.com/yourusername/yt-fetch-go/api/handlers"
	"github.com/yourusername/yt-fetch-go/internal/app"
	"github.com/yourusername/yt-fetch-go/internal/domain"
	"github.com/yourusername/yt-fetch-go/internal/infrastructure"
	"github.com/yourusername/yt-fetch-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: ./configs/config.yaml, ~/.yt-fetch/config.yaml)")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, log); err != nil {
		log.Error("Server failed", zap.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts the listener down and lets
// in-flight requests finish within the configured timeout
func run(ctx context.Context, config *domain.Config, log *zap.Logger) error {
	log.Info("Starting yt-fetch server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.Bool("auth_enabled", config.Auth.Enabled()),
		zap.String("extractor", config.Extractor.Binary))

	if err := os.MkdirAll(config.Download.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory %s: %w", config.Download.WorkDir, err)
	}

	extractor := infrastructure.NewYTDLPExtractor(&config.Extractor, config.Download.LogsDir, log)
	if !extractor.Available() {
		log.Warn("Extractor binary not found on PATH", zap.String("binary", config.Extractor.Binary))
	}

	service := app.NewDownloadService(extractor, infrastructure.NewOutputLocator(), &config.Download, log)
	router := api.SetupRouter(config.Auth, service, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
