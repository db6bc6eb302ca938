package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"data-jobs/internal/app"
	"data-jobs/internal/config"
	"data-jobs/internal/pkg/apperr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperr.ExitCode(apperr.InvalidInput("load config", err)))
	}
	log := app.NewLogger(cfg.Log)

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Error("invalid HTTP port", "err", err)
		os.Exit(apperr.ExitCode(apperr.InvalidInput("listen address", err)))
	}

	bootstrap, cleanup, err := app.Bootstrap(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to bootstrap app", "err", err)
		os.Exit(apperr.ExitCode(err))
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("cleanup error", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "err", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Warn("shutdown error", "err", err)
		}
	}
}
