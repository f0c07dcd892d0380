package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moneyfer/moneyfer/internal/app"
	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/infra"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppName, cfg.LogLevel)

	ctx := context.Background()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	res, err := infra.Open(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		logger.Error("open store backend", "error", err)
		os.Exit(1)
	}
	defer res.Close()

	application := app.New(res.Backend, app.Options{
		Name:         cfg.AppName,
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		LatencyScale: cfg.LatencyScale,
	}, logger)
	go application.Start(ctx)
	defer application.Close()

	srv, err := server.New(cfg, application, res, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
