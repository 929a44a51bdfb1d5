package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/app"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/server"
)

func main() {
	configPath := flag.String("config", "", "config file (YAML); CLAIMASSIST_* env vars override it")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "claimsd: %v\n", err)
		os.Exit(2)
	}

	logger := common.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build analysis stack", "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	loader := ingest.NewFSIngestor(cfg.Document.MaxBytes, false, logger)
	svc := server.NewClaimsService(a.Processor, loader, cfg.Document.MaxBytes, logger,
		server.WithFileRoot(cfg.Server.FileRoot))
	grpcServer, healthServer := server.NewGRPCServer(svc, cfg.Document.MaxBytes, logger)

	logger.Info("claimsd listening", "addr", lis.Addr().String(), "engine", a.Engine.Name(), "file_root", cfg.Server.FileRoot)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(30 * time.Second):
		logger.Warn("graceful stop timed out, forcing")
		grpcServer.Stop()
	}
}
