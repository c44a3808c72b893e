// Package main is the entry point for the tasktree CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasktree/internal/cli"
	"tasktree/internal/commands"
)

func main() {
	// Cancel on interrupt. Sessions still write what is queued.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.GoogleTasks)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
