package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rrhh/internal/app/server"
	"rrhh/internal/platform/config"
	"rrhh/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	logger := middleware.NewLogger(os.Stdout, cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
