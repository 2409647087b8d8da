package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/runner"
	"github.com/hiturf/ow-oi-assistant/pkg/utils/logger"
)

// AppConfig holds the stdio server configuration. Stdout belongs to the
// protocol, so the logger must point at stderr or a file.
type AppConfig struct {
	Logger  logger.Config `yaml:"logger"`
	Sandbox runner.Config `yaml:"sandbox"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}

	if cfg.Sandbox.WorkspaceRoot == "" {
		return nil, fmt.Errorf("sandbox.workspaceRoot is required")
	}
	if cfg.Sandbox.Compiler.CompilerPath == "" {
		return nil, fmt.Errorf("sandbox.compiler.path is required")
	}
	if cfg.Logger.OutputPath == "" || cfg.Logger.OutputPath == "stdout" {
		cfg.Logger.OutputPath = "stderr"
	}
	if cfg.Logger.ErrorPath == "" || cfg.Logger.ErrorPath == "stdout" {
		cfg.Logger.ErrorPath = "stderr"
	}

	return &cfg, nil
}
