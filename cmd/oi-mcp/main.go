package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hiturf/ow-oi-assistant/internal/mcp"
	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

const defaultConfigPath = "configs/mcp.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	toolRunner, err := runner.New(appCfg.Sandbox)
	if err != nil {
		logger.Error(context.Background(), "init sandbox failed", zap.Error(err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "stdio server started")
	srv := mcp.NewServer(toolRunner)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil &&
		!errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "stdio server stopped", zap.Error(err))
	}
	logger.Info(context.Background(), "stdio server exiting")
}
