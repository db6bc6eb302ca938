package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"data-jobs/internal/pkg/apperr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "etl: %v\n", err)
	}
	stop()
	os.Exit(apperr.ExitCode(err))
}
