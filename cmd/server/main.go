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
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/api"
	"github.com/your-org/workflow-generator/internal/config"
	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/health"
	"github.com/your-org/workflow-generator/internal/logging"
	"github.com/your-org/workflow-generator/internal/metrics"
)

const (
	serviceName       = "workflow-generator"
	serviceVersion    = "1.0.0"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration first to get logging settings
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, serviceName)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	masked := cfg.MaskSensitiveValues()
	logger.Info("Configuration loaded successfully",
		zap.String("backend", masked.Provider.Backend),
		zap.String("model", masked.Provider.Model),
		zap.String("endpoint", masked.Provider.Endpoint),
		zap.String("api_key", masked.Provider.APIKey),
		zap.Duration("timeout", masked.Generation.Timeout),
		zap.Int("max_retries", masked.Generation.MaxRetries),
	)

	svc, err := generator.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}

	var current atomic.Pointer[generator.Service]
	current.Store(svc)
	watchConfig(*configPath, &current, logger)

	collector := metrics.NewCollector(logger, func(alertType, message string, metadata map[string]interface{}) {
		logger.Warn("Generation alert",
			zap.String("alert_type", alertType),
			zap.String("message", message),
			zap.Any("metadata", metadata))
	})

	healthManager := health.NewManager(serviceName, serviceVersion, logger)
	healthManager.AddChecker("provider", health.ProviderChecker(
		func() bool { return current.Load().Configured() },
		cfg.Provider.Backend,
		cfg.Provider.Model,
	))
	healthManager.AddChecker("generator", health.ReadinessChecker(func(_ context.Context) error {
		if current.Load() == nil {
			return errors.New("generator is not initialized")
		}
		return nil
	}))
	healthManager.AddChecker("fallback_rate", health.CheckerFunc(func(ctx context.Context) health.CheckResult {
		healthy, message, details := collector.HealthCheck(ctx)
		result := health.CheckResult{Status: health.StatusHealthy, Metadata: details}
		if !healthy {
			result.Status = health.StatusDegraded
			result.Error = message
		}
		return result
	}))

	// Set Gin mode based on log level
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(func() api.Generator { return current.Load() }, collector, healthManager, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting workflow generator service",
			zap.String("port", cfg.Server.Port),
			zap.Bool("provider_configured", svc.Configured()))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Workflow generator service stopped")
}

// watchConfig swaps in a new generator whenever the config file changes.
// Requests in flight keep the generator they started with.
func watchConfig(configPath string, current *atomic.Pointer[generator.Service], logger *zap.Logger) {
	err := config.WatchConfig(configPath, func(cfg *config.Config) {
		svc, err := generator.NewFromConfig(cfg, logger)
		if err != nil {
			logger.Error("Failed to rebuild generator after config change", zap.Error(err))
			return
		}
		current.Store(svc)
		logger.Info("Configuration reloaded",
			zap.String("backend", cfg.Provider.Backend),
			zap.String("model", cfg.Provider.Model),
			zap.Bool("provider_configured", svc.Configured()))
	}, func(err error) {
		logger.Warn("Ignoring invalid configuration change", zap.Error(err))
	})
	if err != nil {
		logger.Info("Configuration hot reload disabled", zap.String("reason", err.Error()))
	}
}
