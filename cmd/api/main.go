package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/librarease/assetcatalog/internal/server"
)

func main() {
	app, err := server.NewApp()
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	logger := app.Logger()

	// Server startup
	go func() {
		logger.Info("API server starting", "addr", app.Addr())
		if err := app.ListenAndServe(); err != nil {
			logger.Error("server error", "err", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
		os.Exit(1)
	}

	logger.Info("API server exited properly")
}
