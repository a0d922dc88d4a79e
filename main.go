package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WiggidyW2/weve-market/internal/config"
	"github.com/WiggidyW2/weve-market/internal/dispatcher"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/logger"
	"github.com/WiggidyW2/weve-market/internal/transport"
)

var version = "dev"

func main() {
	logger.Banner(version)

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		logger.Error("Config", "failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Success("Config", "loaded")
	logger.Stats("station markets", len(cfg.Markets.Stations()))
	logger.Stats("refresh tokens", len(cfg.Markets.RefreshTokens()))

	client := esi.NewClient(esi.Config{
		UserAgent:      cfg.UserAgent,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		RequestTimeout: cfg.ClientTimeout,
	}, logger.Base())

	d := dispatcher.New(client, cfg.Markets, cfg.MinCache, logger.Base())
	logger.Success("Dispatcher", "caches preallocated")

	srv := transport.New(d, logger.Base())

	httpServer := &http.Server{Addr: cfg.ServiceAddress, Handler: srv}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Server", "shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server", "shutdown error: %v", err)
		}
	}()

	logger.Section("Listening")
	logger.Stats("address", cfg.ServiceAddress)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server", "failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Server", "stopped")
}
