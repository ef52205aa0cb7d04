// Package main is the entry point for the relaykit server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relaykit/relaykit/internal/config"
	"github.com/relaykit/relaykit/internal/handler"
	"github.com/relaykit/relaykit/internal/security"
	"github.com/relaykit/relaykit/internal/ui"
)

func main() {
	logger := setupLogger()
	logger.Info("starting relaykit")

	cfg, err := config.Load(os.Getenv("RELAY_PROXY_CONFIG_FILE"))
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.Int("providers", len(cfg.Providers)),
	)

	store := config.NewStore(cfg)
	clients := handler.NewClientCache(&http.Client{Timeout: 60 * time.Second})

	if err := config.Watch(os.Getenv("RELAY_PROXY_CONFIG_FILE"), func(newCfg *config.Configuration) {
		store.Reload(newCfg)
		clients.Clear()
		logger.Info("configuration reloaded", slog.Int("providers", len(newCfg.Providers)))
	}); err != nil {
		logger.Warn("config hot-reload watcher not started", slog.String("error", err.Error()))
	}

	dispatcher := handler.NewDispatcher(store, clients, logger)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(handler.RecoveryMiddleware(logger))
	engine.Use(handler.CORSMiddleware())
	engine.Use(handler.LoggingMiddleware(logger))

	engine.GET("/admin/providers/:name/stats", handler.AdminStatsHandler(store, clients))
	engine.NoRoute(dispatcher.Handle)

	ui.PrintBanner()

	var providerNames []string
	totalKeys := 0
	for _, p := range cfg.Providers {
		providerNames = append(providerNames, p.Name)
		totalKeys += len(p.Keys)
	}
	ui.PrintStartupInfo(cfg.Server.Host, cfg.Server.Port, providerNames, totalKeys)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}

// setupLogger creates a structured JSON logger wrapped with redaction,
// defaulting to info level and honoring RELAY_PROXY_LOGGING_LEVEL.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("RELAY_PROXY_LOGGING_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	base := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(security.NewRedactedHandler(base))
	slog.SetDefault(logger)
	return logger
}
