package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/cli"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	code := cli.Main(ctx)
	stop()
	os.Exit(code)
}
