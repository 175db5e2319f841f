// Copyright 2024 Workflow Generator Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/config"
	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/logging"
	"github.com/your-org/workflow-generator/internal/mcpserver"
	"github.com/your-org/workflow-generator/internal/metrics"
)

const (
	serviceName    = "workflow-mcp"
	serviceVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	cfg.Logging.Output = "stderr"
	logger, err := logging.New(cfg.Logging, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := generator.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(svc, serviceVersion, metrics.NewCollector(logger, nil), logger)
	logger.Info("Serving MCP over stdio",
		zap.String("model", cfg.Provider.Model),
		zap.Bool("provider_configured", svc.Configured()))

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", zap.Error(err))
		os.Exit(1)
	}
}
