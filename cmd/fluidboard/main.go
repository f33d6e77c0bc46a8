package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/fluidboard/internal/command"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := command.Execute(ctx)
	cancel()
	os.Exit(code)
}
